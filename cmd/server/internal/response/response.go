package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/claimreview/claimintake/internal/types"
)

var (
	InternalServerError = echo.NewHTTPError(
		http.StatusInternalServerError,
		types.KindError(types.ErrorKindUnexpected, "something went wrong"),
	)
	// Anything the submit handlers did not anticipate
	UnexpectedSubmitError = echo.NewHTTPError(
		http.StatusInternalServerError,
		types.KindError(types.ErrorKindUnexpected, "Unexpected server error in submit-claim API."),
	)
)

func kindForStatus(code int) types.ErrorKind {
	switch {
	case code == http.StatusMethodNotAllowed:
		return types.ErrorKindMethodNotAllowed
	case code == http.StatusBadRequest, code == http.StatusRequestEntityTooLarge:
		return types.ErrorKindMalformed
	case code >= http.StatusInternalServerError:
		return types.ErrorKindUnexpected
	default:
		return ""
	}
}

// Wraps echo's default handler so every error body carries an "error" string, including the
// errors echo raises itself (body limit, unknown route, unmatched method).
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			e.DefaultHTTPErrorHandler(InternalServerError.WithInternal(err), c)
			return
		}

		if _, ok := he.Message.(types.ErrorResponse); ok {
			e.DefaultHTTPErrorHandler(he, c)
			return
		}

		msg := http.StatusText(he.Code)
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
		default:
			msg = fmt.Sprint(m)
		}

		e.DefaultHTTPErrorHandler(&echo.HTTPError{
			Code:     he.Code,
			Message:  types.KindError(kindForStatus(he.Code), msg),
			Internal: he.Internal,
		}, c)
	}
}
