package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/viaticos/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects bodies over maxBytes. A declared Content-Length is
// refused up front; chunked bodies are cut by http.MaxBytesReader and fail
// at binding time.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
