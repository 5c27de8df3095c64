package model

import (
	"time"

	"github.com/ai-library/ai-library/client/checkouts"
	"github.com/ai-library/ai-library/client/model"
)

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignUpRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required"`
}

type SessionResponse struct {
	Member model.Member `json:"member"`
}

type CreateCheckoutRequest struct {
	BookID   string    `json:"bookId" validate:"required"`
	MemberID string    `json:"memberId"`
	DueAt    time.Time `json:"dueAt" validate:"required"`
	Notes    string    `json:"notes"`
}

// UpdateCheckoutRequest is the single transition payload; days and
// newDueAt only apply to the extend action.
type UpdateCheckoutRequest struct {
	Action   string     `json:"action" validate:"required,oneof=return extend cancel mark_lost"`
	Days     int        `json:"days,omitempty" validate:"omitempty,gt=0"`
	NewDueAt *time.Time `json:"newDueAt,omitempty"`
}

// BatchCheckoutRequest selects checkouts for one bulk action.
type BatchCheckoutRequest struct {
	IDs    []string `json:"ids" validate:"required,min=1,dive,required"`
	Action string   `json:"action" validate:"required,oneof=return extend"`
	Days   int      `json:"days,omitempty" validate:"omitempty,gt=0"`
}

type BatchItemResponse struct {
	ID       string          `json:"id"`
	OK       bool            `json:"ok"`
	Checkout *model.Checkout `json:"checkout,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type BatchResponse struct {
	Results []BatchItemResponse `json:"results"`
	Failed  int                 `json:"failed"`
}

func NewBatchResponse(results []checkouts.BatchResult) BatchResponse {
	resp := BatchResponse{Results: make([]BatchItemResponse, 0, len(results))}
	for _, res := range results {
		item := BatchItemResponse{ID: res.ID, OK: res.Err == nil}
		if res.Err != nil {
			item.Error = res.Err.Error()
			resp.Failed++
		} else {
			co := res.Checkout
			item.Checkout = &co
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}
