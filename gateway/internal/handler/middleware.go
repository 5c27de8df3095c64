package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/ai-library/ai-library/client/httpx"
	"github.com/ai-library/ai-library/client/model"
	"github.com/ai-library/ai-library/pkg/logger"
)

const loginPath = "/login"

// sessionMW lifts the bearer token out of the session cookie into the
// request context, where the backend client picks it up. Mutating
// requests count as user interaction for the session-expiry toast
// heuristic.
func (h *Handler) sessionMW(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if cookie, err := c.Cookie(h.cookieName); err == nil && cookie.Value != "" {
			ctx := httpx.WithToken(c.Request().Context(), cookie.Value)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		switch c.Request().Method {
		case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
			h.interactions.Record()
		}
		return next(c)
	}
}

// adminMW gates the /admin group on the role claim. The claim is read
// without signature verification; the backend verifies the token on
// every call anyway, this only keeps obvious non-admins out early.
func adminMW(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := httpx.TokenFromContext(c.Request().Context())
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "no session")
		}
		if roleClaim(token) != model.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

func roleClaim(token string) model.Role {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	role, _ := claims["role"].(string)
	return model.Role(role)
}

// errorHandler keeps API clients on JSON while browser navigation gets
// the login redirect with the interrupted route preserved in next.
func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		msg = he.Error()
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}

	if (code == http.StatusUnauthorized || code == statusSessionExpired) && wantsHTML(c) && c.Path() != loginPath {
		next := c.Request().URL.RequestURI()
		_ = c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(next))
		return
	}

	if err := c.JSON(code, map[string]string{"message": msg}); err != nil {
		h.log.Error("error response", zap.Error(err))
	}
}

func wantsHTML(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMETextHTML)
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	cfg := logger.Log{LogLevel: zapcore.DebugLevel, Sink: ""}
	log := logger.NewLogger(cfg, "echo")
	c := middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
	return c
}

func newRateLimiterMW(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}
