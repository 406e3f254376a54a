package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response body. Message carries the payload on
// success and the error text on failure.
type Envelope struct {
	Success bool `json:"success"`
	Message any  `json:"message"`
}

// OK writes a 200 success envelope.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: payload})
}

// Fail writes a failure envelope with the given status.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}

// AbortFail writes a failure envelope and aborts the handler chain.
func AbortFail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}
