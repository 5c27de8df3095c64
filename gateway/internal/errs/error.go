package errs

import (
	"errors"
	"net/http"

	"github.com/ai-library/ai-library/client/auth"
	clienterrs "github.com/ai-library/ai-library/client/errs"
	"github.com/ai-library/ai-library/client/httpx"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNoSession = errors.New("no session cookie")
)

type ErrorResponse struct {
	Message string `json:"message"`
}

// Status maps an upstream failure to the status the gateway replays.
// Client-side validation reads as 400, a transport-level failure as
// 503, the backend being unreachable.
func Status(err error) int {
	if code := httpx.StatusOf(err); code != 0 {
		return code
	}
	var ae *auth.Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	if clienterrs.IsValidation(err) {
		return http.StatusBadRequest
	}
	return http.StatusServiceUnavailable
}
