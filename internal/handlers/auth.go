package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/utils"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
)

// LoginRequest 登录请求结构体
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler 处理认证相关的请求
type AuthHandler struct {
	users models.Users
	cfg   *config.Config
}

func NewAuthHandler(users models.Users, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

// Login 校验配置文件中的用户并签发 JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
		return
	}

	user := h.users.Get(req.Username)
	if user == nil || !user.VerifyPassword(req.Password) {
		// 不区分用户不存在和密码错误
		xerr.Error(c, http.StatusUnauthorized, xerr.CodeInvalidCredentials, xerr.ErrInvalidCredentials.Error())
		return
	}

	token, err := utils.GenerateToken(user.Username, h.cfg.JWT.SecretKey, h.cfg.JWT.Issuer, h.cfg.JWT.ExpiresIn)
	if err != nil {
		xerr.Error(c, http.StatusInternalServerError, xerr.CodeInternalServerError, "签发 Token 失败")
		return
	}

	xerr.Success(c, http.StatusOK, "登录成功", gin.H{"token": token})
}
