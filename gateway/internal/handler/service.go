package handler

import (
	"context"
	"time"

	"github.com/ai-library/ai-library/client/aisearch"
	"github.com/ai-library/ai-library/client/auth"
	"github.com/ai-library/ai-library/client/books"
	"github.com/ai-library/ai-library/client/checkouts"
	"github.com/ai-library/ai-library/client/members"
	"github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/client/profile"
	"github.com/ai-library/ai-library/gateway/internal/service/activity"
	"github.com/ai-library/ai-library/gateway/internal/service/catalog"
	"github.com/ai-library/ai-library/gateway/internal/service/identity"
	"github.com/ai-library/ai-library/gateway/internal/service/loans"
	"github.com/ai-library/ai-library/gateway/internal/service/search"
	"github.com/ai-library/ai-library/pkg/circuit_breaker"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ IdentityService = (*identity.Service)(nil)
	_ CatalogService  = (*catalog.Service)(nil)
	_ LoanService     = (*loans.Service)(nil)
	_ SearchService   = (*search.Service)(nil)
	_ ActivityService = (*activity.Service)(nil)
)

type IdentityService interface {
	CB() circuit_breaker.CircuitBreaker
	SignIn(ctx context.Context, creds auth.Credentials) (auth.SignInResponse, int, error)
	SignUp(ctx context.Context, req auth.SignUpRequest) (model.Member, int, error)
	SignOut(ctx context.Context) (int, error)
	CurrentMember(ctx context.Context) (model.Member, int, error)
	GetProfile(ctx context.Context) (model.Member, int, error)
	UpdateProfile(ctx context.Context, upd profile.Update) (model.Member, int, error)
	DeleteProfile(ctx context.Context) (int, error)
}

type CatalogService interface {
	CB() circuit_breaker.CircuitBreaker
	ListBooks(ctx context.Context, p books.ListParams) (books.List, int, error)
	GetBook(ctx context.Context, id string) (model.Book, int, error)
	CreateBook(ctx context.Context, b model.Book) (model.Book, int, error)
	UpdateBook(ctx context.Context, id string, upd books.Update) (model.Book, int, error)
	DeleteBook(ctx context.Context, id string) (int, error)
	ListMembers(ctx context.Context, p members.ListParams) (members.List, int, error)
	GetMember(ctx context.Context, id string) (model.Member, int, error)
	CreateMember(ctx context.Context, in members.Create) (model.Member, int, error)
	UpdateMember(ctx context.Context, id string, upd members.Update) (model.Member, int, error)
	DeleteMember(ctx context.Context, id string) (int, error)
}

type LoanService interface {
	CB() circuit_breaker.CircuitBreaker
	ListCheckouts(ctx context.Context, admin bool, p checkouts.ListParams) (checkouts.List, int, error)
	GetCheckout(ctx context.Context, admin bool, id string) (model.Checkout, int, error)
	RequestCheckout(ctx context.Context, admin bool, bookID, memberID string, dueAt time.Time, notes string) (model.Checkout, int, error)
	ReturnCheckout(ctx context.Context, admin bool, co model.Checkout) (model.Checkout, int, error)
	CancelCheckout(ctx context.Context, admin bool, co model.Checkout) (model.Checkout, int, error)
	MarkLost(ctx context.Context, admin bool, co model.Checkout) (model.Checkout, int, error)
	ExtendCheckout(ctx context.Context, admin bool, co model.Checkout, ext checkouts.Extension) (model.Checkout, int, error)
	DeleteCheckout(ctx context.Context, admin bool, id string) (int, error)
	BatchReturn(ctx context.Context, admin bool, items []model.Checkout) []checkouts.BatchResult
	BatchExtend(ctx context.Context, admin bool, items []model.Checkout, days int) []checkouts.BatchResult
}

type SearchService interface {
	CB() circuit_breaker.CircuitBreaker
	Search(ctx context.Context, q aisearch.Query) (aisearch.Response, int, error)
	ListRecords(ctx context.Context, skip, limit int) ([]aisearch.SavedSearch, int, error)
	GetRecord(ctx context.Context, id string) (aisearch.Response, int, error)
	DeleteRecord(ctx context.Context, id string) (int, error)
}

type ActivityService interface {
	CB() circuit_breaker.CircuitBreaker
	Heartbeat(ctx context.Context) (int, error)
}
