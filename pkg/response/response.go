package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func SendAPIResponse(c *gin.Context, code int, success bool, message string, data any) {
	resp := APIResponse{
		Success:   success,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}

	c.JSON(code, resp)
}

// SendValidationError answers 400 with the per-field messages as data.
func SendValidationError(c *gin.Context, fields map[string]string) {
	SendAPIResponse(c, http.StatusBadRequest, false, "validation failed", fields)
}

// SendInternalError hides err from the client; the request logger records it.
func SendInternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	SendAPIResponse(c, http.StatusInternalServerError, false, "internal server error", nil)
}

// Page and Limit read pagination query parameters, clamping limit to 100.
func Page(c *gin.Context) (int, int) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", 10)
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
