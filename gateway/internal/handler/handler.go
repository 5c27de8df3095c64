package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ai-library/ai-library/client/aisearch"
	"github.com/ai-library/ai-library/client/auth"
	"github.com/ai-library/ai-library/client/books"
	"github.com/ai-library/ai-library/client/checkouts"
	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/members"
	clientmodel "github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/client/profile"
	"github.com/ai-library/ai-library/gateway/config"
	"github.com/ai-library/ai-library/gateway/internal/model"
	"github.com/ai-library/ai-library/gateway/internal/service/activity"
	"github.com/ai-library/ai-library/gateway/internal/service/catalog"
	"github.com/ai-library/ai-library/gateway/internal/service/identity"
	"github.com/ai-library/ai-library/gateway/internal/service/loans"
	"github.com/ai-library/ai-library/gateway/internal/service/search"
	"github.com/ai-library/ai-library/pkg/circuit_breaker"
	"github.com/ai-library/ai-library/pkg/kafka"
	"github.com/ai-library/ai-library/pkg/validate"
)

const (
	statusSessionExpired = 419
	totalCountHeader     = "X-Total-Count"
)

type Handler struct {
	identitySvc  IdentityService
	catalogSvc   CatalogService
	loanSvc      LoanService
	searchSvc    SearchService
	activitySvc  ActivityService
	enqueuer     Enqueuer
	interactions *httpx.Interactions
	cookieName   string
	cookieSecure bool
	log          *zap.Logger
}

// Services bundles the downstream clients the handler fans out to.
type Services struct {
	Identity IdentityService
	Catalog  CatalogService
	Loans    LoanService
	Search   SearchService
	Activity ActivityService
}

func New(log *zap.Logger, cfg config.Config, producer sarama.SyncProducer) (*Handler, error) {
	interactions := &httpx.Interactions{}
	client, err := httpx.NewClient(cfg.Backend, httpx.ContextTokens{}, httpx.NewHub(), interactions, log)
	if err != nil {
		return nil, errors.Wrap(err, "backend client")
	}

	svcs := Services{
		Identity: identity.NewService(log, client),
		Catalog:  catalog.NewService(log, client),
		Loans:    loans.NewService(log, client),
		Search:   search.NewService(log, client),
		Activity: activity.NewService(log, client),
	}
	h := NewWithServices(log, cfg, svcs, NewEnqueuer(producer))
	h.interactions = interactions
	return h, nil
}

func NewWithServices(log *zap.Logger, cfg config.Config, svcs Services, enqueuer Enqueuer) *Handler {
	return &Handler{
		identitySvc:  svcs.Identity,
		catalogSvc:   svcs.Catalog,
		loanSvc:      svcs.Loans,
		searchSvc:    svcs.Search,
		activitySvc:  svcs.Activity,
		enqueuer:     enqueuer,
		interactions: &httpx.Interactions{},
		cookieName:   cfg.Session.CookieName,
		cookieSecure: cfg.Session.CookieSecure,
		log:          log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.HTTPErrorHandler = h.errorHandler
	e.Validator = validate.NewCustomValidator()

	base := e.Group("", newRateLimiterMW(baseRPS))
	base.GET("/manage/health", h.Health)

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(requestLoggerConfig()),
		middleware.RequestID(),
		newRateLimiterMW(apiRPS),
		h.sessionMW,
	)

	api.POST("/auth/signin", h.SignIn)
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/signout", h.SignOut)
	api.GET("/auth/me", h.CurrentMember)

	api.GET("/profile/me", h.GetProfile)
	api.PATCH("/profile/me", h.UpdateProfile)
	api.DELETE("/profile/me", h.DeleteProfile)

	api.GET("/books", h.ListBooks)
	api.GET("/books/:id", h.GetBook)
	api.POST("/books", h.CreateBook)
	api.PATCH("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.GET("/checkouts", h.ListCheckouts(false))
	api.GET("/checkouts/:id", h.GetCheckout(false))
	api.POST("/checkouts", h.CreateCheckout(false))
	api.PATCH("/checkouts/:id", h.UpdateCheckout(false))
	api.DELETE("/checkouts/:id", h.DeleteCheckout(false))
	api.POST("/checkouts/batch", h.BatchCheckouts(false))

	api.POST("/ai-search/query", h.Search)
	api.GET("/ai-search/records", h.ListSearchRecords)
	api.GET("/ai-search/records/:id", h.GetSearchRecord)
	api.DELETE("/ai-search/records/:id", h.DeleteSearchRecord)

	api.POST("/activity/heartbeat", h.Heartbeat)

	admin := api.Group("/admin", adminMW)
	admin.GET("/members", h.ListMembers)
	admin.GET("/members/:id", h.GetMember)
	admin.POST("/members", h.CreateMember)
	admin.PATCH("/members/:id", h.UpdateMember)
	admin.DELETE("/members/:id", h.DeleteMember)

	admin.GET("/loans", h.ListCheckouts(true))
	admin.GET("/loans/:id", h.GetCheckout(true))
	admin.POST("/loans", h.CreateCheckout(true))
	admin.PATCH("/loans/:id", h.UpdateCheckout(true))
	admin.DELETE("/loans/:id", h.DeleteCheckout(true))
	admin.POST("/loans/batch", h.BatchCheckouts(true))

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// call routes a downstream request through the service's breaker; an
// open breaker reads as the backend being unavailable.
func call(cb circuit_breaker.CircuitBreaker, fn func() error) error {
	if err := cb.Call(fn); err != nil {
		if errors.Is(err, circuit_breaker.ErrOpenCB) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return err
	}
	return nil
}

func (h *Handler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) SignIn(c echo.Context) error {
	var req model.SignInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var resp auth.SignInResponse
	if err := call(h.identitySvc.CB(), func() error {
		r, code, err := h.identitySvc.SignIn(ctx, auth.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		resp = r
		return nil
	}); err != nil {
		return err
	}

	h.setSessionCookie(c, resp.AccessToken)
	return c.JSON(http.StatusOK, model.SessionResponse{Member: *resp.Member})
}

func (h *Handler) SignUp(c echo.Context) error {
	var req model.SignUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	if err := call(h.identitySvc.CB(), func() error {
		_, code, err := h.identitySvc.SignUp(ctx, auth.SignUpRequest{
			Email:       req.Email,
			Password:    req.Password,
			DisplayName: req.DisplayName,
		})
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		return nil
	}); err != nil {
		return err
	}

	// a fresh account signs straight in, same as the web flow
	var resp auth.SignInResponse
	if err := call(h.identitySvc.CB(), func() error {
		r, code, err := h.identitySvc.SignIn(ctx, auth.Credentials{Email: req.Email, Password: req.Password})
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		resp = r
		return nil
	}); err != nil {
		return err
	}

	h.setSessionCookie(c, resp.AccessToken)
	return c.JSON(http.StatusCreated, model.SessionResponse{Member: *resp.Member})
}

// SignOut is best-effort against the backend; the cookie is cleared
// either way.
func (h *Handler) SignOut(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.identitySvc.SignOut(ctx); err != nil {
		h.log.Warn("backend signout", zap.Error(err))
	}
	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CurrentMember(c echo.Context) error {
	ctx := c.Request().Context()
	var member clientmodel.Member
	if err := call(h.identitySvc.CB(), func() error {
		m, code, err := h.identitySvc.CurrentMember(ctx)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		member = m
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	var member clientmodel.Member
	if err := call(h.identitySvc.CB(), func() error {
		m, code, err := h.identitySvc.GetProfile(ctx)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		member = m
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var upd profile.Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var member clientmodel.Member
	if err := call(h.identitySvc.CB(), func() error {
		m, code, err := h.identitySvc.UpdateProfile(ctx, upd)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		member = m
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	if code, err := h.identitySvc.DeleteProfile(ctx); err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListBooks(c echo.Context) error {
	p := books.ListParams{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Skip:     intQuery(c, "skip"),
		Limit:    intQuery(c, "limit"),
	}
	ctx := c.Request().Context()

	var list books.List
	if err := call(h.catalogSvc.CB(), func() error {
		l, code, err := h.catalogSvc.ListBooks(ctx, p)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		list = l
		return nil
	}); err != nil {
		return err
	}
	if list.Total != nil {
		c.Response().Header().Set(totalCountHeader, strconv.Itoa(*list.Total))
	}
	return c.JSON(http.StatusOK, list.Items)
}

func (h *Handler) GetBook(c echo.Context) error {
	ctx := c.Request().Context()
	var book clientmodel.Book
	if err := call(h.catalogSvc.CB(), func() error {
		b, code, err := h.catalogSvc.GetBook(ctx, c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		book = b
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var book clientmodel.Book
	if err := c.Bind(&book); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var created clientmodel.Book
	if err := call(h.catalogSvc.CB(), func() error {
		b, code, err := h.catalogSvc.CreateBook(ctx, book)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		created = b
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	var upd books.Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var book clientmodel.Book
	if err := call(h.catalogSvc.CB(), func() error {
		b, code, err := h.catalogSvc.UpdateBook(ctx, c.Param("id"), upd)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		book = b
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	if code, err := h.catalogSvc.DeleteBook(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMembers(c echo.Context) error {
	p := members.ListParams{
		Search: c.QueryParam("search"),
		Role:   clientmodel.Role(c.QueryParam("role")),
		Skip:   intQuery(c, "skip"),
		Limit:  intQuery(c, "limit"),
	}
	ctx := c.Request().Context()

	var list members.List
	if err := call(h.catalogSvc.CB(), func() error {
		l, code, err := h.catalogSvc.ListMembers(ctx, p)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		list = l
		return nil
	}); err != nil {
		return err
	}
	if list.Total != nil {
		c.Response().Header().Set(totalCountHeader, strconv.Itoa(*list.Total))
	}
	return c.JSON(http.StatusOK, list.Items)
}

func (h *Handler) GetMember(c echo.Context) error {
	ctx := c.Request().Context()
	var member clientmodel.Member
	if err := call(h.catalogSvc.CB(), func() error {
		m, code, err := h.catalogSvc.GetMember(ctx, c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		member = m
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) CreateMember(c echo.Context) error {
	var in members.Create
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(in); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var member clientmodel.Member
	if err := call(h.catalogSvc.CB(), func() error {
		m, code, err := h.catalogSvc.CreateMember(ctx, in)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		member = m
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *Handler) UpdateMember(c echo.Context) error {
	var upd members.Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var member clientmodel.Member
	if err := call(h.catalogSvc.CB(), func() error {
		m, code, err := h.catalogSvc.UpdateMember(ctx, c.Param("id"), upd)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		member = m
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) DeleteMember(c echo.Context) error {
	ctx := c.Request().Context()
	if code, err := h.catalogSvc.DeleteMember(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListCheckouts(admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := checkouts.ListParams{
			Search:   c.QueryParam("search"),
			Status:   clientmodel.CheckoutStatus(c.QueryParam("status")),
			MemberID: c.QueryParam("memberId"),
			BookID:   c.QueryParam("bookId"),
			From:     timeQuery(c, "from"),
			To:       timeQuery(c, "to"),
			Skip:     intQuery(c, "skip"),
			Limit:    intQuery(c, "limit"),
		}
		ctx := c.Request().Context()

		var list checkouts.List
		if err := call(h.loanSvc.CB(), func() error {
			l, code, err := h.loanSvc.ListCheckouts(ctx, admin, p)
			if err != nil {
				return echo.NewHTTPError(code, err.Error())
			}
			list = l
			return nil
		}); err != nil {
			return err
		}
		if list.Total != nil {
			c.Response().Header().Set(totalCountHeader, strconv.Itoa(*list.Total))
		}
		return c.JSON(http.StatusOK, list.Items)
	}
}

func (h *Handler) GetCheckout(admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var co clientmodel.Checkout
		if err := call(h.loanSvc.CB(), func() error {
			got, code, err := h.loanSvc.GetCheckout(ctx, admin, c.Param("id"))
			if err != nil {
				return echo.NewHTTPError(code, err.Error())
			}
			co = got
			return nil
		}); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, co)
	}
}

func (h *Handler) CreateCheckout(admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req model.CreateCheckoutRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := c.Validate(req); err != nil {
			return err
		}
		ctx := c.Request().Context()

		var co clientmodel.Checkout
		if err := call(h.loanSvc.CB(), func() error {
			got, code, err := h.loanSvc.RequestCheckout(ctx, admin, req.BookID, req.MemberID, req.DueAt, req.Notes)
			if err != nil {
				return echo.NewHTTPError(code, err.Error())
			}
			co = got
			return nil
		}); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, co)
	}
}

// UpdateCheckout reads the current state first so the transition guards
// run against fresh data, then issues the requested action.
func (h *Handler) UpdateCheckout(admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req model.UpdateCheckoutRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := c.Validate(req); err != nil {
			return err
		}
		ctx := c.Request().Context()

		var current clientmodel.Checkout
		if err := call(h.loanSvc.CB(), func() error {
			got, code, err := h.loanSvc.GetCheckout(ctx, admin, c.Param("id"))
			if err != nil {
				return echo.NewHTTPError(code, err.Error())
			}
			current = got
			return nil
		}); err != nil {
			return err
		}

		var updated clientmodel.Checkout
		if err := call(h.loanSvc.CB(), func() error {
			var (
				code int
				err  error
			)
			switch req.Action {
			case checkouts.ActionReturn:
				updated, code, err = h.loanSvc.ReturnCheckout(ctx, admin, current)
			case checkouts.ActionCancel:
				updated, code, err = h.loanSvc.CancelCheckout(ctx, admin, current)
			case checkouts.ActionMarkLost:
				updated, code, err = h.loanSvc.MarkLost(ctx, admin, current)
			case checkouts.ActionExtend:
				ext := checkouts.Extension{Days: req.Days}
				if req.NewDueAt != nil {
					ext.NewDueAt = *req.NewDueAt
				}
				updated, code, err = h.loanSvc.ExtendCheckout(ctx, admin, current, ext)
			}
			if err != nil {
				return echo.NewHTTPError(code, err.Error())
			}
			return nil
		}); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func (h *Handler) DeleteCheckout(admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if code, err := h.loanSvc.DeleteCheckout(ctx, admin, c.Param("id")); err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// BatchCheckouts runs one bulk action over the selected loans with a
// per-item verdict; a failing item never aborts the rest.
func (h *Handler) BatchCheckouts(admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req model.BatchCheckoutRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if err := c.Validate(req); err != nil {
			return err
		}
		if req.Action == checkouts.ActionExtend && req.Days <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "days is required for extend")
		}
		ctx := c.Request().Context()

		items := make([]clientmodel.Checkout, 0, len(req.IDs))
		for _, id := range req.IDs {
			var co clientmodel.Checkout
			if err := call(h.loanSvc.CB(), func() error {
				got, code, err := h.loanSvc.GetCheckout(ctx, admin, id)
				if err != nil {
					return echo.NewHTTPError(code, err.Error())
				}
				co = got
				return nil
			}); err != nil {
				return err
			}
			items = append(items, co)
		}

		var results []checkouts.BatchResult
		switch req.Action {
		case checkouts.ActionReturn:
			results = h.loanSvc.BatchReturn(ctx, admin, items)
		case checkouts.ActionExtend:
			results = h.loanSvc.BatchExtend(ctx, admin, items, req.Days)
		}
		return c.JSON(http.StatusOK, model.NewBatchResponse(results))
	}
}

func (h *Handler) Search(c echo.Context) error {
	var q aisearch.Query
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(q); err != nil {
		return err
	}
	ctx := c.Request().Context()

	var resp aisearch.Response
	if err := call(h.searchSvc.CB(), func() error {
		r, code, err := h.searchSvc.Search(ctx, q)
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		resp = r
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListSearchRecords(c echo.Context) error {
	ctx := c.Request().Context()
	var records []aisearch.SavedSearch
	if err := call(h.searchSvc.CB(), func() error {
		r, code, err := h.searchSvc.ListRecords(ctx, intQuery(c, "skip"), intQuery(c, "limit"))
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		records = r
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) GetSearchRecord(c echo.Context) error {
	ctx := c.Request().Context()
	var resp aisearch.Response
	if err := call(h.searchSvc.CB(), func() error {
		r, code, err := h.searchSvc.GetRecord(ctx, c.Param("id"))
		if err != nil {
			return echo.NewHTTPError(code, err.Error())
		}
		resp = r
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteSearchRecord(c echo.Context) error {
	ctx := c.Request().Context()
	if code, err := h.searchSvc.DeleteRecord(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(code, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Heartbeat forwards the activity ping. When the backend is down the
// ping is parked in Kafka instead of being dropped.
func (h *Handler) Heartbeat(c echo.Context) error {
	ctx := c.Request().Context()
	if code, err := h.activitySvc.Heartbeat(ctx); err != nil {
		if code == http.StatusServiceUnavailable {
			if qerr := h.enqueuer.Enqueue(kafka.ActivityTopic, map[string]any{
				"at": time.Now().UTC(),
			}); qerr != nil {
				h.log.Warn("heartbeat enqueue", zap.Error(qerr))
				return echo.NewHTTPError(code, err.Error())
			}
			return c.NoContent(http.StatusAccepted)
		}
		return echo.NewHTTPError(code, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func intQuery(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return v
}

func timeQuery(c echo.Context, name string) *time.Time {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}
