package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
	"github.com/lbestle/go-shareable/internal/services"
)

// itemResponse 在持久化记录之外补上条目 ID
// 记录本身的 JSON 形状不包含 ID（ID 即文件名）
type itemResponse struct {
	ID string `json:"id"`
	*models.Item
}

// ItemHandler 处理条目相关的请求
type ItemHandler struct {
	items services.ItemService
	cfg   *config.Config
}

func NewItemHandler(items services.ItemService, cfg *config.Config) *ItemHandler {
	return &ItemHandler{items: items, cfg: cfg}
}

// Download 是对外的下载入口：有效条目 302 跳转到文件 URL
// 无效和不存在的条目默认返回同样的 404 文本，避免泄露条目是否存在；
// debug 模式下区分两种情况，便于排查
func (h *ItemHandler) Download(c *gin.Context) {
	id := c.Param("id")

	url, err := h.items.Redirect(id)
	if err != nil {
		message := "Not found"
		if h.cfg.Debug && errors.Is(err, xerr.ErrItemInvalid) {
			message = "Item is invalid"
		}
		c.String(http.StatusNotFound, message)
		return
	}

	c.Redirect(http.StatusFound, url)
}

// List 返回全部条目及其有效性
func (h *ItemHandler) List(c *gin.Context) {
	items, err := h.items.Collection()
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]itemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, itemResponse{ID: item.ID, Item: item})
	}
	xerr.Success(c, http.StatusOK, "条目列表", resp)
}

// Get 返回单个条目的元数据
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.items.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if item == nil {
		xerr.Error(c, http.StatusNotFound, xerr.CodeItemNotFound, xerr.ErrItemNotFound.Error())
		return
	}
	xerr.Success(c, http.StatusOK, "条目详情", itemResponse{ID: item.ID, Item: item})
}

// Delete 删除条目及其引用的文件
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.items.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "条目已删除", nil)
}

// CleanUp 触发一次对账，返回产生的警告
func (h *ItemHandler) CleanUp(c *gin.Context) {
	warnings, err := h.items.CleanUp()
	if err != nil {
		respondError(c, err)
		return
	}
	xerr.Success(c, http.StatusOK, "清理完成", gin.H{"warnings": warnings})
}
