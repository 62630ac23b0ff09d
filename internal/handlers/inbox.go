package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lbestle/go-shareable/internal/middlewares"
	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
	"github.com/lbestle/go-shareable/internal/services"
)

// PublishRequest 发布请求结构体
type PublishRequest struct {
	ID                 string `json:"id"`
	Created            string `json:"created"`
	Expires            string `json:"expires"`
	Timeout            string `json:"timeout"`
	TimeoutImmediately bool   `json:"timeout_immediately"`
}

// InboxHandler 处理收件箱相关的请求
type InboxHandler struct {
	inbox services.InboxService
}

func NewInboxHandler(inbox services.InboxService) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

// List 返回收件箱中的待发布文件
func (h *InboxHandler) List(c *gin.Context) {
	files, err := h.inbox.List()
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "收件箱文件列表", files)
}

// Upload 接收 multipart 表单上传，把文件存入收件箱
func (h *InboxHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, "解析上传表单失败: "+err.Error())
		return
	}

	stored, err := h.inbox.Upload(form.File["files"])
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "上传成功", gin.H{"files": stored})
}

// Publish 把一个收件箱文件发布为可下载条目
func (h *InboxHandler) Publish(c *gin.Context) {
	// 所有参数都是可选的，空请求体按默认值发布
	var req PublishRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			xerr.Error(c, http.StatusBadRequest, xerr.CodeInvalidParams, err.Error())
			return
		}
	}

	username := models.AnonymousUsername
	if user := middlewares.CurrentUser(c); user != nil {
		username = user.Username
	}

	item, err := h.inbox.Publish(c.Param("name"), username, &services.PublishParams{
		ID:                 req.ID,
		Created:            req.Created,
		Expires:            req.Expires,
		Timeout:            req.Timeout,
		TimeoutImmediately: req.TimeoutImmediately,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "发布成功", itemResponse{ID: item.ID, Item: item})
}

// Delete 删除一个收件箱文件
func (h *InboxHandler) Delete(c *gin.Context) {
	if err := h.inbox.Delete(c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "文件已删除", nil)
}
