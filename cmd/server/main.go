package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	otellib "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/claimreview/claimintake/cmd/server/internal/routes"
	"github.com/claimreview/claimintake/cmd/server/internal/routes/claims"
	"github.com/claimreview/claimintake/internal/config"
	"github.com/claimreview/claimintake/internal/intake"
	"github.com/claimreview/claimintake/internal/logger"
	"github.com/claimreview/claimintake/internal/otel"
	"github.com/claimreview/claimintake/internal/platform"
)

const name string = "github.com/claimreview/claimintake/server"

var tracer = otellib.Tracer(name)

type server struct {
	router       *echo.Echo
	config       *config.Config
	otelShutdown func(context.Context) error
}

// Builds the router around an already loaded config. A nil httpClient uses the default
// single attempt platform client.
func newRouter(cfg *config.Config, httpClient *http.Client) (*echo.Echo, error) {
	platformClient, err := platform.NewClient(cfg.Platform, httpClient)
	if err != nil {
		return nil, err
	}

	submitter := intake.NewSubmitter(platformClient, intake.AuditObserver)

	e, err := routes.BuildEcho(logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("error building router: %w", err)
	}

	claimsHandler := claims.NewHandler(submitter, cfg)
	claimsHandler.AddRoutes(e)

	return e, nil
}

func initServer(ctx context.Context) (*server, error) {
	server := new(server)

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server config: %w", err)
	}
	server.config = cfg

	shutdownOTel, err := otel.SetupOTelSDK(ctx, "claimintake", cfg.Logging.UseOTLP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTEL SDK: %w", err)
	}
	defer func() {
		// Something failed to initialize, make sure everything gets flushed to the server
		if server.otelShutdown == nil {
			otelShutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				time.Second*time.Duration(cfg.GracefulShutdownSecs),
			)
			defer cancel()

			if err = shutdownOTel(otelShutdownCtx); err != nil {
				logger.Logger.Error("failed to flush otel data", "error", err)
			}
		}
	}()

	_, span := tracer.Start(ctx, "initServer")
	defer span.End()

	logger.LogLevel.Set(slog.Level(cfg.Logging.App.Level))

	e, err := newRouter(cfg, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error building router")
		return nil, err
	}

	span.AddEvent("created echo router")

	server.otelShutdown = shutdownOTel
	server.router = e

	return server, nil
}

func (s *server) Start() error {
	logger.Logger.Info("Starting services...", "listen", s.config.ListenAddress)

	err := s.router.Start(s.config.ListenAddress)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *server) Shutdown() error {
	var errs error

	ctx, cancelTimeout := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(s.config.GracefulShutdownSecs),
	)
	defer cancelTimeout()

	if err := s.router.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}

	if s.otelShutdown != nil {
		errs = errors.Join(errs, s.otelShutdown(ctx))
	}

	return errs
}

func main() {
	ctx, cancelSignal := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	logger.InitSlog()

	server, err := initServer(ctx)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Logger.Error("refusing to start without a usable platform configuration", "key", cfgErr.Key, "error", cfgErr)
		} else {
			logger.Logger.Error(err.Error())
		}
		cancelSignal()
		os.Exit(1)
	}

	errch := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Got shutdown signal!")
		errch <- server.Shutdown()
		close(errch)
	}()

	if err := server.Start(); err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	if err := <-errch; err != nil {
		logger.Logger.Error("Error shutting down server", "error", err)
	}

	cancelSignal()
}
