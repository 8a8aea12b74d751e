package product

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
)

var badRequestErrors = []error{
	domainproduct.ErrInvalidArgument,
	domainproduct.ErrInvalidName,
	domainproduct.ErrInvalidPrice,
	domainproduct.ErrInvalidQuantity,
	domainproduct.ErrInsufficientQuantity,
	domainproduct.ErrUpdateFailed,
	domainproduct.ErrDeleteFailed,
}

// StatusFor maps a use-case error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domainproduct.ErrDuplicateName), errors.Is(err, domainproduct.ErrDuplicateSKU):
		return http.StatusConflict
	case errors.Is(err, domainproduct.ErrNotFound):
		return http.StatusNotFound
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "product request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
