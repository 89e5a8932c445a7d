package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the error payload every endpoint emits. Status rides
// along for the deferred error handler and is never serialized.
type Response struct {
	Status int    `json:"-"`
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

// Abort writes the flat error payload and stops the chain. A non-nil
// err is recorded on the context so the access log keeps the cause.
func Abort(c *gin.Context, status int, err error, msg string, detail any) {
	resp := Response{Status: status, Error: msg, Detail: detail}

	if err != nil {
		_ = c.Error(&gin.Error{
			Err:  err,
			Type: gin.ErrorTypePublic,
			Meta: resp,
		})
	}
	c.AbortWithStatusJSON(status, resp)
}
