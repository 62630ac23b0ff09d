package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/logger"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
	"github.com/lbestle/go-shareable/internal/repositories"
	"go.uber.org/zap"
)

// ItemService 定义了条目管理需要实现的接口
type ItemService interface {
	// Exists 检查条目是否存在
	Exists(id string) bool
	// Get 按 ID 获取条目，不存在时返回 (nil, nil)
	Get(id string) (*models.Item, error)
	// Collection 返回按 ID 升序的全量条目快照，结果会被缓存
	Collection() ([]*models.Item, error)
	// Create 新建条目并立即持久化
	Create(props *repositories.ItemProps) (*models.Item, error)
	// Redirect 处理一次下载跳转：校验有效性、刷新活跃时间并返回下载 URL
	Redirect(id string) (string, error)
	// Delete 删除条目及其引用的文件
	Delete(id string) error
	// CleanUp 执行对账：删除过期条目，报告丢失文件和孤儿文件
	CleanUp() (string, error)
}

type itemService struct {
	repo repositories.ItemRepository
	cfg  *config.Config
	now  func() time.Time

	// 全量快照缓存，只是性能优化，写操作后失效
	collection []*models.Item
}

// NewItemService 创建一个新的 ItemService 实例
func NewItemService(repo repositories.ItemRepository, cfg *config.Config) ItemService {
	return &itemService{
		repo: repo,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *itemService) Exists(id string) bool {
	return s.repo.Exists(id)
}

func (s *itemService) Get(id string) (*models.Item, error) {
	return s.repo.Get(id)
}

func (s *itemService) Collection() ([]*models.Item, error) {
	if s.collection != nil {
		return s.collection, nil
	}
	items, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	s.collection = items
	return items, nil
}

func (s *itemService) Create(props *repositories.ItemProps) (*models.Item, error) {
	item, err := s.repo.Create(props)
	if err != nil {
		return nil, err
	}
	s.collection = nil
	return item, nil
}

func (s *itemService) Redirect(id string) (string, error) {
	item, err := s.repo.Get(id)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", xerr.NewCodeError(xerr.CodeItemNotFound, xerr.ErrItemNotFound)
	}

	now := s.now().Unix()
	if !item.IsValid(now) {
		return "", xerr.NewCodeError(xerr.CodeItemNotFound, xerr.ErrItemInvalid)
	}

	// 先落盘再跳转，保证活跃时间和计数不丢
	item.RecordDownload(now)
	if err := s.repo.Save(item); err != nil {
		return "", err
	}

	return s.cfg.DownloadURL(item.Filename), nil
}

func (s *itemService) Delete(id string) error {
	item, err := s.repo.Get(id)
	if err != nil {
		return err
	}
	if item == nil {
		return xerr.NewCodeError(xerr.CodeItemNotFound, xerr.ErrItemNotFound)
	}

	if err := s.repo.Delete(item); err != nil {
		return err
	}
	s.collection = nil

	logger.Info("条目已删除", zap.String("id", id), zap.String("filename", item.Filename))
	return nil
}

// CleanUp 校验条目与文件仓库的一致性并清理过期条目
// 删除失败只记入警告，整个扫描继续；孤儿文件只报告，从不删除
// 没有中间写入时连续执行两次的结果相同
func (s *itemService) CleanUp() (string, error) {
	// 对账基于新鲜快照，避免把缓存里已删除的条目再处理一遍
	s.collection = nil
	items, err := s.Collection()
	if err != nil {
		return "", err
	}

	var warnings strings.Builder
	var surviving []string
	now := s.now().Unix()

	for _, item := range items {
		if item.IsExpired(now) {
			if err := s.repo.Delete(item); err != nil {
				warnings.WriteString(fmt.Sprintf("Could not delete item \"%s\": %v\n", item.ID, err))
				continue
			}
			logger.Info("清理过期条目", zap.String("id", item.ID), zap.String("filename", item.Filename))
			continue
		}

		// 未过期的条目必须还能找到它引用的文件
		path := s.repo.FilePath(item.Filename)
		if fileExists(path) {
			surviving = append(surviving, item.Filename)
		} else {
			// 警告格式是对外契约的一部分，路径按原样输出，不做转义
			warnings.WriteString(fmt.Sprintf("File \"%s\" for item \"%s\" does not exist\n", path, item.ID))
		}
	}
	s.collection = nil

	// 找出没有任何条目引用的孤儿文件
	entries, err := os.ReadDir(s.cfg.Paths.Files)
	if err != nil {
		return "", xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("扫描文件仓库 %q 失败: %w", s.cfg.Paths.Files, err))
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !referenced(surviving, name) {
			warnings.WriteString(fmt.Sprintf("File \"%s\" is orphaned\n", filepath.Join(s.cfg.Paths.Files, name)))
		}
	}

	return warnings.String(), nil
}

// referenced 检查目录项是否被任何幸存条目引用
// 子目录模式下条目的 filename 形如 "x1/a.txt"，按第一级路径段匹配
func referenced(filenames []string, entry string) bool {
	for _, f := range filenames {
		if f == entry || strings.HasPrefix(f, entry+"/") {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
