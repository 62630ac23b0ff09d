package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
)

// respondError 把服务层错误翻译成 HTTP 响应
// 业务码的前三位就是对应的 HTTP 状态码
func respondError(c *gin.Context, err error) {
	code := xerr.CodeOf(err)
	httpStatus := code / 100
	if httpStatus < 400 || httpStatus > 599 {
		httpStatus = http.StatusInternalServerError
	}
	xerr.Error(c, httpStatus, code, err.Error())
}
