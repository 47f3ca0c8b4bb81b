package middleware

import (
	"go.opentelemetry.io/otel"
)

const name string = "github.com/claimreview/claimintake/server/middleware"

var tracer = otel.Tracer(name)
