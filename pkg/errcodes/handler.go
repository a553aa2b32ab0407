package errcodes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/errutils"
)

// Payload is the body of every error response.
type Payload struct {
	Error PayloadError `json:"error"`
}

type PayloadError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle writes err as a Payload. Errors that are neither *Error nor
// *echo.HTTPError become a 500 and are logged.
func (h *Handler) Handle(err error, c echo.Context) {
	log := echologger.FromEchoContext(c)

	// The client hung up, so there is nobody to answer.
	if errutils.IsIgnorableErr(err) || errors.Is(err, context.Canceled) {
		log.Err(err).Warn("client went away")
		return
	}

	payload := newPayload(err)
	switch payload.Error.StatusCode {
	case http.StatusInternalServerError:
		log.Err(err).Error("server error")
	case http.StatusConflict:
		// A lost accept or retry race.
		log.Info("request conflicted with a concurrent change", logger.Data{
			"method":  c.Request().Method,
			"path":    c.Path(),
			"message": payload.Error.Message,
		})
	}

	if err := c.JSON(payload.Error.StatusCode, payload); err != nil {
		log.Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func newPayload(err error) Payload {
	pe := PayloadError{StatusCode: http.StatusInternalServerError}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		pe.StatusCode = he.Code
		pe.Message = fmt.Sprint(he.Message)
		pe.Code = strcase.ToSnake(pe.Message)
	}

	var e *Error
	if errors.As(err, &e) {
		pe.StatusCode = e.HTTPCode
		pe.Code = e.Code
		pe.Message = e.Message
	}

	if pe.StatusCode == http.StatusInternalServerError && pe.Message == "" {
		pe.Code = "internal_server_error"
		pe.Message = "Internal Server Error"
	}

	return Payload{Error: pe}
}
