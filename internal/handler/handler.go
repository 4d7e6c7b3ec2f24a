package handler

import (
	"strconv"

	"civichub/internal/apperr"
	"civichub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// writeErr 错误类别到状态码的统一出口
func writeErr(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"msg": err.Error()})
}

func currentUserID(c *gin.Context) uint64 {
	userIDAny, _ := c.Get(middleware.ContextUserIDKey)
	userID, _ := userIDAny.(uint64)
	return userID
}

func paramUint64(c *gin.Context, name string) (uint64, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(400, gin.H{"msg": "invalid " + name})
		return 0, false
	}
	return v, true
}
