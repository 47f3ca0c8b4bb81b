package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"

	"github.com/claimreview/claimintake/cmd/submitter/cmds"
	"github.com/claimreview/claimintake/internal/clierrors"
	"github.com/claimreview/claimintake/internal/logger"
	otelclaimintake "github.com/claimreview/claimintake/internal/otel"
)

var tracer = otel.Tracer("github.com/claimreview/claimintake/submitter")

func runApp(ctx context.Context) int {
	// traces only leave the process when an OTLP collector is configured
	useOTLP, err := strconv.ParseBool(os.Getenv("USE_OTLP"))
	if err == nil && useOTLP {
		shutdown, err := otelclaimintake.SetupOTelSDK(ctx, "claimintake-submitter", true)
		if err != nil {
			logger.Logger.Warn("failed to setup otel sdk", "error", err)
		} else {
			defer func() {
				if fail := shutdown(ctx); fail != nil {
					logger.Logger.Warn("no clean shutdown for otel", "error", fail)
				}
			}()
		}
	}

	ctx, span := tracer.Start(ctx, "Submitter")
	defer span.End()

	err = cmds.Execute(ctx)
	if err != nil {
		var ee clierrors.ExitError
		if errors.As(err, &ee) {
			if ee.Err != nil {
				fmt.Fprintln(os.Stderr, "Error: "+ee.Err.Error())
			}
			return ee.Code
		}

		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		return clierrors.ExitErrored
	}

	return clierrors.ExitOK
}

func main() {
	logger.InitSlog()
	logger.LogLevel.Set(slog.LevelWarn)

	os.Exit(runApp(context.Background()))
}
