package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lbestle/go-shareable/internal/config"
	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/logger"
	"github.com/lbestle/go-shareable/internal/pkg/timeparse"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
	"github.com/lbestle/go-shareable/internal/repositories"
	"go.uber.org/zap"
)

// InboxFile 是收件箱里一个待发布的文件
type InboxFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// PublishParams 是发布请求携带的参数
// 时间字段既可以是整数时间戳，也可以是自然语言表达式（"+1 day"、"2018-01-01"）
type PublishParams struct {
	Created            string // 生效时间，默认为当前时间
	Expires            string // 过期时间，相对表达式以 created 为基准
	Timeout            string // 不活跃超时：数字按秒数，自然语言按目标时刻减去当前时间折算
	ID                 string // 自定义条目 ID
	TimeoutImmediately bool   // 发布时立即启动超时，要求已设置超时
}

// InboxService 定义了收件箱需要实现的接口
type InboxService interface {
	// List 返回收件箱中的文件快照，点文件除外
	List() ([]InboxFile, error)
	// Delete 删除一个收件箱文件，不存在时返回 ErrFileNotFound
	Delete(name string) error
	// Upload 把一批上传的文件移入收件箱，返回落盘后的文件名
	// 任何一个文件失败都会中止整个调用，已移入的文件不回滚
	Upload(files []*multipart.FileHeader) ([]string, error)
	// Publish 发布一个收件箱文件：解析参数、计算无冲突目标名、
	// 创建条目记录，最后把文件移入文件仓库
	Publish(name string, user string, params *PublishParams) (*models.Item, error)
}

type inboxService struct {
	items ItemService
	cfg   *config.Config
	now   func() time.Time
}

// NewInboxService 创建一个新的 InboxService 实例
func NewInboxService(items ItemService, cfg *config.Config) InboxService {
	return &inboxService{
		items: items,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *inboxService) List() ([]InboxFile, error) {
	entries, err := os.ReadDir(s.cfg.Paths.Inbox)
	if err != nil {
		return nil, xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("扫描收件箱 %q 失败: %w", s.cfg.Paths.Inbox, err))
	}

	files := make([]InboxFile, 0, len(entries))
	for _, entry := range entries {
		// 跳过 .gitignore 之类的点文件
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, InboxFile{Name: entry.Name(), Size: info.Size()})
	}
	return files, nil
}

// stagedPath 解析一个收件箱文件名并返回其完整路径
// 带路径分隔符的名字一律按不存在处理，防止目录穿越
func (s *inboxService) stagedPath(name string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", xerr.NewCodeError(xerr.CodeFileNotFound, xerr.ErrFileNotFound)
	}
	path := filepath.Join(s.cfg.Paths.Inbox, name)
	if !fileExists(path) {
		return "", xerr.NewCodeError(xerr.CodeFileNotFound, xerr.ErrFileNotFound)
	}
	return path, nil
}

func (s *inboxService) Delete(name string) error {
	path, err := s.stagedPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("删除收件箱文件 %q 失败: %w", path, err))
	}
	return nil
}

func (s *inboxService) Upload(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, xerr.NewCodeError(xerr.CodeNoFileUploaded, xerr.ErrNoFileUploaded)
	}

	stored := make([]string, 0, len(files))
	for _, fh := range files {
		// 安全检查：丢弃客户端给的路径部分，拒绝空名和点文件
		name := filepath.Base(fh.Filename)
		if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
			return stored, xerr.NewCodeError(xerr.CodeUploadRejected,
				fmt.Errorf("文件 %q 未通过上传安全检查", fh.Filename))
		}

		src, err := fh.Open()
		if err != nil {
			return stored, xerr.NewCodeError(xerr.CodeUploadRejected,
				fmt.Errorf("上传的文件 %q 无法读取: %w", name, err))
		}

		filename, err := s.findFilePath(s.cfg.Paths.Inbox, "", name)
		if err != nil {
			src.Close()
			return stored, err
		}

		if err := writeStream(filepath.Join(s.cfg.Paths.Inbox, filename), src); err != nil {
			src.Close()
			return stored, xerr.NewCodeError(xerr.CodeStorageError,
				fmt.Errorf("移动上传文件 %q 失败: %w", name, err))
		}
		src.Close()

		logger.Info("文件已入收件箱", zap.String("filename", filename))
		stored = append(stored, filename)
	}
	return stored, nil
}

func (s *inboxService) Publish(name string, user string, params *PublishParams) (*models.Item, error) {
	stagedPath, err := s.stagedPath(name)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &PublishParams{}
	}

	now := s.now()
	props := &repositories.ItemProps{User: user}

	// 解析顺序是固定的：先 created（基准为当前时间），
	// 再 expires（基准为已解析的 created），相对表达式依赖这个顺序
	if params.Created != "" {
		ts, err := timeparse.ParseTimestamp("Created", params.Created, now)
		if err != nil {
			return nil, xerr.NewCodeError(xerr.CodeInvalidTime, err)
		}
		props.Created = &ts
	}

	if params.Expires != "" {
		base := now
		if props.Created != nil {
			base = time.Unix(*props.Created, 0).UTC()
		}
		ts, err := timeparse.ParseTimestamp("Expires", params.Expires, base)
		if err != nil {
			return nil, xerr.NewCodeError(xerr.CodeInvalidTime, err)
		}
		props.Expires = &ts
	}

	if params.ID != "" {
		props.ID = params.ID
	}

	if params.Timeout != "" {
		d, err := timeparse.ParseDuration("Timeout", params.Timeout, now)
		if err != nil {
			return nil, xerr.NewCodeError(xerr.CodeInvalidTime, err)
		}
		props.Timeout = &d
	}

	// 立即启动超时：activity 从 created（或当前时间）开始计
	if params.TimeoutImmediately {
		if props.Timeout == nil {
			return nil, xerr.NewCodeError(xerr.CodeTimeoutNotSet, xerr.ErrTimeoutNotSet)
		}
		activity := now.Unix()
		if props.Created != nil {
			activity = *props.Created
		}
		props.Activity = &activity
	}

	// 子目录模式下按条目 ID 建目录，没有显式 ID 时退回随机目录名
	subdir := ""
	if s.cfg.Subdirs {
		subdir = props.ID
		if subdir == "" {
			subdir = uuid.NewString()
		}
	}
	filename, err := s.findFilePath(s.cfg.Paths.Files, subdir, name)
	if err != nil {
		return nil, err
	}
	props.Filename = filename

	// 先提交元数据再移动文件：中途崩溃最多留下一条指向未移动文件的记录，
	// 对账时可以发现并报告，而不会留下无记录的孤儿文件
	item, err := s.items.Create(props)
	if err != nil {
		return nil, err
	}

	if err := os.Rename(stagedPath, filepath.Join(s.cfg.Paths.Files, filename)); err != nil {
		return nil, xerr.NewCodeError(xerr.CodeStorageError,
			fmt.Errorf("移动文件 %q 到文件仓库失败: %w", name, err))
	}

	logger.Info("文件已发布",
		zap.String("id", item.ID),
		zap.String("filename", filename),
		zap.String("user", user))
	return item, nil
}

// findFilePath 在目标目录内找一个不会覆盖现有文件的相对路径
// 子目录模式下给子目录名追加 -1、-2 等后缀直到目录不存在，文件名保持不变；
// 否则给文件基础名（扩展名之前）追加后缀
// 检查和创建不是原子的，并发调用方需要自行加锁
func (s *inboxService) findFilePath(directory, subdir, filename string) (string, error) {
	if subdir != "" {
		original := subdir
		for suffix := 1; pathExists(filepath.Join(directory, subdir)); suffix++ {
			subdir = fmt.Sprintf("%s-%d", original, suffix)
		}
		if err := os.Mkdir(filepath.Join(directory, subdir), 0o755); err != nil {
			return "", xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("创建子目录 %q 失败: %w", subdir, err))
		}
		return subdir + "/" + filename, nil
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	candidate := filename
	for suffix := 1; pathExists(filepath.Join(directory, candidate)); suffix++ {
		candidate = fmt.Sprintf("%s-%d%s", base, suffix, ext)
	}
	return candidate, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// writeStream 把上传内容写到目标路径
func writeStream(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	return dst.Close()
}
