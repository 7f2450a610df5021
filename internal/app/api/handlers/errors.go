package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/pulseboard/internal/app/service/billing"
	"github.com/fatflowers/pulseboard/internal/app/service/connection"
	"github.com/fatflowers/pulseboard/internal/app/service/report"
	"github.com/fatflowers/pulseboard/pkg/logctx"
	"github.com/fatflowers/pulseboard/pkg/response"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrMissingParameter),
		errors.Is(err, report.ErrUnknownReport),
		errors.Is(err, report.ErrInvalidRange),
		errors.Is(err, billing.ErrUnknownReport):
		return http.StatusBadRequest
	case errors.Is(err, connection.ErrNoConnection):
		return http.StatusNotFound
	case errors.Is(err, connection.ErrDecryptCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// abortWithError writes the error envelope. Internal failures are logged and
// their detail is not returned to the caller.
func abortWithError(c *gin.Context, base *zap.SugaredLogger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logctx.FromGin(c, base).Errorw("request failed", "path", c.FullPath(), "err", err)
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, response.ErrorT(msg))
}
