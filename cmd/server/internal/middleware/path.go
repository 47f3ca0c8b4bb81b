package middleware

import (
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// AddTrailingSlash that also appends the slash to URL.RawPath. echo routes on
// RawPath when the request path holds escapes such as %2F, and the stock
// middleware only rewrites URL.Path.
func AddTrailingSlash() echo.MiddlewareFunc {
	addSlash := middleware.AddTrailingSlash()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return addSlash(func(c echo.Context) error {
			u := c.Request().URL
			if u.RawPath != "" && !strings.HasSuffix(u.RawPath, "/") {
				u.RawPath += "/"
			}
			return next(c)
		})
	}
}

// Path parameter as the client meant it. Params matched against RawPath
// arrive still escaped.
func PathParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}
