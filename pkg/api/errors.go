package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ovokpus/PostAssist/pkg/apperr"
)

// statusForKind maps the error taxonomy to HTTP status codes. Kinds with no
// client-facing meaning collapse to 500.
func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAlreadyExists:
		return http.StatusConflict
	case apperr.KindTimeout:
		return http.StatusRequestTimeout
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	body := gin.H{
		"kind":    string(kind),
		"message": err.Error(),
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) && len(appErr.Details) > 0 {
		body["details"] = appErr.Details
	}
	c.JSON(statusForKind(kind), gin.H{"error": body})
}
