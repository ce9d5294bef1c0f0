package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"drivenpass/internal/apperr"
)

func statusFor(err error) int {
	kind, ok := apperr.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindDuplicateEmail, apperr.KindDuplicateTitle:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"name","message"}. Internal failures hide
// their cause from the client.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
		c.JSON(status, gin.H{"name": "InternalServerError", "message": "internal server error"})
		return
	}
	kind, _ := apperr.KindOf(err)
	c.JSON(status, gin.H{"name": string(kind), "message": apperr.MessageOf(err)})
}

func writeInvalidBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"name": string(apperr.KindValidation), "message": "invalid request body"})
}
