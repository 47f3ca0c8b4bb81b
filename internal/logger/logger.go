package logger

import (
	"log/slog"
	"os"

	slogotel "github.com/remychantenay/slog-otel"
)

var LogLevel = new(slog.LevelVar)

var jsonHandler = slog.NewJSONHandler(
	os.Stderr,
	&slog.HandlerOptions{AddSource: true, Level: LogLevel},
)
var sloghandler = slogotel.NewOtelHandler(slogotel.WithNoTraceEvents(true))
var Handler = sloghandler(jsonHandler)
var Logger = slog.New(Handler)

// Installs Logger as the process default at debug level until config says otherwise
func InitSlog() {
	slog.SetDefault(Logger)
	LogLevel.Set(slog.LevelDebug)
}

// Component scoped logger, all records carry a "component" attribute
func For(component string) *slog.Logger {
	return Logger.With("component", component)
}
