package apperr

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Response is the error envelope returned by every endpoint.
type Response struct {
	Message   string       `json:"message"`
	ErrorCode int          `json:"errorCode"`
	Errors    []FieldError `json:"errors,omitempty"`
}

// ToResponse converts the error into the client envelope.
func (e *Error) ToResponse() Response {
	return Response{
		Message:   e.Message,
		ErrorCode: e.Status(),
		Errors:    e.Fields,
	}
}

// FromError maps any error to an *Error. Echo's own HTTP errors (unknown
// route, bad bind, wrong method) are folded into the four public statuses;
// anything unrecognised becomes Internal.
func FromError(err error) *Error {
	if appErr, ok := As(err); ok {
		return appErr
	}
	if he, ok := err.(*echo.HTTPError); ok {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		switch {
		case he.Code == http.StatusNotFound || he.Code == http.StatusMethodNotAllowed:
			return &Error{Kind: KindNotFound, Message: http.StatusText(http.StatusNotFound), Cause: err}
		case he.Code == http.StatusUnauthorized:
			return &Error{Kind: KindUnauthorized, Message: MsgUnauthorized, Cause: err}
		case he.Code >= 400 && he.Code < 500:
			return &Error{Kind: KindBadRequest, Message: msg, Cause: err}
		}
	}
	return Internal(err)
}

// HTTPErrorHandler returns the echo error handler that renders the
// envelope. Internal errors are logged with the request id so the log
// entry can be correlated with the client's failed call.
func HTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		appErr := FromError(err)
		if appErr.Kind == KindInternal {
			log.Error().
				Err(err).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("internal error")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(appErr.Status())
		} else {
			werr = c.JSON(appErr.Status(), appErr.ToResponse())
		}
		if werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}
