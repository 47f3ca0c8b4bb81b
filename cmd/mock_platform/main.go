package main

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/claimreview/claimintake/cmd/mock_platform/routes"
	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/validator"
)

const defaultAPIKey = "sandbox_key" // #nosec

func bearerValidator(apiKey string) middleware.KeyAuthValidator {
	return func(key string, _ echo.Context) (bool, error) {
		return subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1, nil
	}
}

// Stand in for the insurance platform claims API
func newApp(apiKey string, store *routes.Store) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	validate := validator.Create()
	e.Validator = &validate

	e.Pre(middleware.AddTrailingSlash())

	e.Use(slogecho.New(logger.Logger))

	insuranceGroup := e.Group("/v1/insurance", middleware.KeyAuth(bearerValidator(apiKey)))

	routes.NewHandler(store).AddRoutes(insuranceGroup)

	return e
}

func main() {
	logger.InitSlog()

	apiKey := os.Getenv("ROOT_API_KEY")
	if apiKey == "" {
		apiKey = defaultAPIKey
	}

	listen := os.Getenv("MOCK_PLATFORM_LISTEN")
	if listen == "" {
		listen = ":1323"
	}

	e := newApp(apiKey, routes.NewStore())
	e.Logger.Fatal(e.Start(listen))
}
