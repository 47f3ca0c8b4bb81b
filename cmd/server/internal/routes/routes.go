package routes

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	servermiddleware "github.com/claimreview/claimintake/cmd/server/internal/middleware"
	"github.com/claimreview/claimintake/cmd/server/internal/response"
	"github.com/claimreview/claimintake/internal/validator"
)

func BuildEcho(logger *slog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true

	validate := validator.Create()
	e.Validator = &validate
	e.HTTPErrorHandler = response.ErrorHandler(e)

	e.Pre(servermiddleware.AddTrailingSlash())

	e.Use(
		otelecho.Middleware("claimintake"),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		slogecho.NewWithConfig(logger, slogecho.Config{WithRequestID: true}),
	)

	e.GET("/health/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	return e, nil
}
