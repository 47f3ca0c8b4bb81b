package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/claimreview/claimintake/internal/types"
)

// Every method a route answers with 405 when it is not in the allowed list
var AllMethods = []string{
	http.MethodConnect,
	http.MethodDelete,
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPatch,
	http.MethodPost,
	http.MethodPut,
	http.MethodTrace,
}

// Methods from AllMethods that are not allowed
func Disallowed(allowed ...string) []string {
	methods := make([]string, 0, len(AllMethods))
	for _, method := range AllMethods {
		ok := false
		for _, a := range allowed {
			if method == a {
				ok = true
				break
			}
		}
		if !ok {
			methods = append(methods, method)
		}
	}
	return methods
}

// Handler answering 405 with an Allow header listing the allowed methods
func MethodNotAllowed(allowed ...string) echo.HandlerFunc {
	allow := strings.Join(allowed, ", ")

	return func(c echo.Context) error {
		_, span := tracer.Start(c.Request().Context(), "MethodNotAllowed", trace.WithAttributes(
			attribute.String("method", c.Request().Method),
			attribute.String("allow", allow),
		))
		defer span.End()

		c.Response().Header().Set(echo.HeaderAllow, allow)

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "rejected method")
		return echo.NewHTTPError(
			http.StatusMethodNotAllowed,
			types.KindError(types.ErrorKindMethodNotAllowed, "Method not allowed"),
		)
	}
}
