package response

import (
	"github.com/gin-gonic/gin"
)

// Response is the envelope for every API payload.
// Error.Code carries the stable reason code the presentation layer maps
// to localized messages; Message is a developer-facing hint only.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Data:    data,
	})
}

// ContextErrorCode is the gin context key where error envelopes leave
// their reason code for the access log.
const ContextErrorCode = "error_code"

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, code, message string) {
	c.Set(ContextErrorCode, code)
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.Set(ContextErrorCode, code)
	c.JSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Common error responses
func BadRequest(c *gin.Context, code, message string) {
	ErrorResponse(c, 400, code, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, 401, "unauthorized", message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, 404, "not_found", message)
}

// InternalServerError collapses unexpected failures to a generic code;
// internal detail never reaches the client.
func InternalServerError(c *gin.Context) {
	ErrorResponse(c, 500, "internal_error", "Something went wrong, please try again later")
}
