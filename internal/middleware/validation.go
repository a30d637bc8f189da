package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yigit/campusdesk/internal/app/models/dto"
)

// BindJSON binds and validates the JSON body into obj. On failure it writes a
// 400 listing the failed fields and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	return bind(c, obj, binding.JSON)
}

// BindQuery binds and validates query parameters into obj
func BindQuery(c *gin.Context, obj interface{}) bool {
	return bind(c, obj, binding.Query)
}

// BindForm binds and validates multipart form fields into obj
func BindForm(c *gin.Context, obj interface{}) bool {
	return bind(c, obj, binding.FormMultipart)
}

func bind(c *gin.Context, obj interface{}, b binding.Binding) bool {
	if err := c.ShouldBindWith(obj, b); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}
	return true
}
