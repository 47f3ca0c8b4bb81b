package claims

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel"

	servermiddleware "github.com/claimreview/claimintake/cmd/server/internal/middleware"
	"github.com/claimreview/claimintake/cmd/server/internal/ratelimit"
	"github.com/claimreview/claimintake/internal/config"
	"github.com/claimreview/claimintake/internal/intake"
	"github.com/claimreview/claimintake/internal/logger"
)

const name = "github.com/claimreview/claimintake/server/routes/claims"

var tracer = otel.Tracer(name)

type Handler struct {
	submitter *intake.Submitter
	config    *config.Config
}

func NewHandler(submitter *intake.Submitter, cfg *config.Config) Handler {
	return Handler{
		submitter: submitter,
		config:    cfg,
	}
}

func (h *Handler) AddRoutes(e *echo.Echo) {
	l := logger.Logger

	submitGroup := e.Group("/submit-claim")

	if h.config.RateLimit != nil && h.config.RateLimit.SubmitPerMinute > 0 {
		submitGroup.Use(
			middleware.RateLimiterWithConfig(
				ratelimit.NewRedisLimiter(
					h.config.RateLimit.RedisHost,
					"submit",
					h.config.RateLimit.SubmitPerMinute,
					h.config.RateLimit.FailOpen,
				),
			),
		)
	} else {
		l.Warn("not configured to have a submit rate limit")
	}

	notAllowed := servermiddleware.MethodNotAllowed(http.MethodPost)
	otherMethods := servermiddleware.Disallowed(http.MethodPost)

	submitGroup.POST("/", h.SubmitGeneric, middleware.BodyLimit(h.config.Limits.GenericBody))
	submitGroup.Match(otherMethods, "/", notAllowed)

	submitGroup.POST(
		"/:claim_number/",
		h.SubmitEngineerReview,
		middleware.BodyLimit(h.config.Limits.ClaimBody),
	)
	submitGroup.Match(otherMethods, "/:claim_number/", notAllowed)
}
