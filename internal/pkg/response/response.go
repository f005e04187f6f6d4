package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/voyago/travel-planner-backend/internal/pkg/errors"
)

// Response is the uniform envelope returned by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
}

// Success writes a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Message: "ok",
	})
}

// SuccessWithMessage writes a successful response with a custom message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// Error writes an error response with an explicit HTTP status
func Error(c *gin.Context, httpStatus int, errName, message string) {
	c.JSON(httpStatus, Response{
		Success: false,
		Message: message,
		Error:   errName,
	})
}

// BadRequest writes a 400 validation failure
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, "ValidationError", message)
}

// HandleError maps an AppError to the envelope and HTTP status
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	Error(c,
		apperrors.GetHTTPStatus(code),
		apperrors.GetMessage(code),
		apperrors.FormatError(code, apperrors.GetDetails(err)),
	)
}
