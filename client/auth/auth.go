package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
)

const (
	signinPath  = "/auth/signin"
	signupPath  = "/auth/signup"
	signoutPath = "/auth/signout"
	mePath      = "/auth/me"
)

type Kind uint8

const (
	KindInvalidCredentials Kind = iota + 1
	KindValidationFailed
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredentials:
		return "invalid credentials"
	case KindValidationFailed:
		return "validation failed"
	default:
		return "network failure"
	}
}

// Error classifies sign-in/sign-up failures.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("auth: %s: %s", e.Kind, e.Message)
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return 0
}

func classify(err error) error {
	status := httpx.StatusOf(err)
	kind := KindNetwork
	switch status {
	case http.StatusUnauthorized:
		kind = KindInvalidCredentials
	case http.StatusUnprocessableEntity:
		kind = KindValidationFailed
	}
	return &Error{Kind: kind, Status: status, Message: err.Error()}
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required"`
}

type TokenBundle struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenType    string `json:"tokenType,omitempty"`
}

// SignInResponse is the documented sign-in envelope. The member field is
// mandatory; a response without it is rejected rather than probed for
// alternate shapes.
type SignInResponse struct {
	TokenBundle
	Member *model.Member `json:"member"`
}

type Service struct {
	client *httpx.Client
	log    *zap.Logger
}

func NewService(client *httpx.Client, log *zap.Logger) *Service {
	return &Service{
		client: client,
		log:    log.Named("auth"),
	}
}

// SignIn exchanges credentials for a token bundle and the member record.
// A 401 here is an answer about the credentials, not a dead session, so
// the unauthorized signal is suppressed.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (SignInResponse, error) {
	var resp SignInResponse
	if err := s.client.Post(ctx, signinPath, creds, &resp, httpx.SuppressUnauthorized()); err != nil {
		return SignInResponse{}, classify(err)
	}
	if resp.Member == nil || resp.AccessToken == "" {
		return SignInResponse{}, errors.New("malformed sign-in response: missing member or accessToken")
	}
	return resp, nil
}

func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (model.Member, error) {
	var member model.Member
	if err := s.client.Post(ctx, signupPath, req, &member, httpx.SuppressUnauthorized()); err != nil {
		return model.Member{}, classify(err)
	}
	return member, nil
}

func (s *Service) SignOut(ctx context.Context) error {
	return s.client.Post(ctx, signoutPath, nil, nil, httpx.SuppressUnauthorized())
}

// CurrentMember reads the authenticated identity. Callers own the 401
// interpretation, so no signal is broadcast from here.
func (s *Service) CurrentMember(ctx context.Context) (model.Member, error) {
	var member model.Member
	if err := s.client.Get(ctx, mePath, &member, httpx.SuppressUnauthorized()); err != nil {
		return model.Member{}, err
	}
	return member, nil
}
