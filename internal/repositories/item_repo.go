package repositories

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/encoder"
	"github.com/lbestle/go-shareable/internal/pkg/logger"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
	"go.uber.org/zap"
)

// ItemProps 是创建条目时的属性集
// 除 Filename 外均可缺省：Created 默认为当前时间，ID 默认随机生成
type ItemProps struct {
	ID       string
	Created  *int64
	Expires  *int64
	Timeout  *int64
	Activity *int64
	Filename string
	User     string
}

// ItemRepository 负责条目记录的文件系统持久化
// 记录以 <id>.json 的形式平铺在条目目录下
type ItemRepository interface {
	// Exists 检查记录文件是否存在，不加载内容
	Exists(id string) bool
	// Get 按 ID 加载条目；不存在时返回 (nil, nil)，记录损坏时返回错误
	Get(id string) (*models.Item, error)
	// Save 把条目写入磁盘；已删除的条目拒绝写入
	Save(item *models.Item) error
	// Delete 删除条目引用的文件和记录本身，之后把条目标记为已删除
	// 文件或记录已不存在时不算错误；存在却删不掉时返回错误
	Delete(item *models.Item) error
	// List 扫描条目目录，按 ID 升序返回全部条目
	// 任何一条记录损坏都会使整个扫描失败
	List() ([]*models.Item, error)
	// Create 根据属性集新建条目并立即持久化
	Create(props *ItemProps) (*models.Item, error)
	// FilePath 返回条目引用文件在文件仓库内的绝对路径
	FilePath(filename string) string
}

type itemRepository struct {
	itemsDir string
	filesDir string
	enc      *encoder.Encoder
	now      func() time.Time
}

// NewItemRepository 创建基于文件系统的条目仓库
func NewItemRepository(itemsDir, filesDir string) ItemRepository {
	return &itemRepository{
		itemsDir: itemsDir,
		filesDir: filesDir,
		enc:      encoder.Default(),
		now:      time.Now,
	}
}

func (r *itemRepository) recordPath(id string) string {
	return filepath.Join(r.itemsDir, id+models.ItemExt)
}

func (r *itemRepository) FilePath(filename string) string {
	return filepath.Join(r.filesDir, filename)
}

func (r *itemRepository) Exists(id string) bool {
	info, err := os.Stat(r.recordPath(id))
	return err == nil && !info.IsDir()
}

func (r *itemRepository) Get(id string) (*models.Item, error) {
	if !models.IsValidID(id) {
		return nil, xerr.NewCodeError(xerr.CodeInvalidID, fmt.Errorf("%w: %q", xerr.ErrInvalidID, id))
	}
	if !r.Exists(id) {
		return nil, nil
	}
	return r.load(id)
}

// load 读取并反序列化一条记录，由调用方保证文件存在
func (r *itemRepository) load(id string) (*models.Item, error) {
	data, err := os.ReadFile(r.recordPath(id))
	if err != nil {
		return nil, xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("读取条目 %q 失败: %w", id, err))
	}

	// 记录必须是 JSON 对象；null 或标量都视作损坏
	if !strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		return nil, xerr.NewCodeError(xerr.CodeRecordCorrupted, fmt.Errorf("%w: %q", xerr.ErrRecordCorrupted, id))
	}

	item := &models.Item{}
	if err := json.Unmarshal(data, item); err != nil {
		return nil, xerr.NewCodeError(xerr.CodeRecordCorrupted, fmt.Errorf("%w: %q: %v", xerr.ErrRecordCorrupted, id, err))
	}
	item.ID = id
	return item, nil
}

func (r *itemRepository) Save(item *models.Item) error {
	if item.IsDeleted() {
		return xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("%w: %q", xerr.ErrItemDeleted, item.ID))
	}

	data, err := json.Marshal(item)
	if err != nil {
		return xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("序列化条目 %q 失败: %w", item.ID, err))
	}

	// 先写临时文件再原地 rename，避免读到写了一半的记录
	path := r.recordPath(item.ID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("写入条目文件 %q 失败: %w", path, err))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("写入条目文件 %q 失败: %w", path, err))
	}
	return nil
}

func (r *itemRepository) Delete(item *models.Item) error {
	// 先删文件后删记录：文件删不掉时必须中止，保证不会留下无记录的孤儿文件
	filePath := r.FilePath(item.Filename)
	if err := removeIfExists(filePath); err != nil {
		return xerr.NewCodeError(xerr.CodeStorageError,
			fmt.Errorf("删除条目 %q 引用的文件 %q 失败: %w", item.ID, filePath, err))
	}

	recordPath := r.recordPath(item.ID)
	if err := removeIfExists(recordPath); err != nil {
		return xerr.NewCodeError(xerr.CodeStorageError,
			fmt.Errorf("删除条目记录 %q 失败: %w", recordPath, err))
	}

	item.MarkDeleted()
	return nil
}

// removeIfExists 删除文件；文件本就不存在时不算错误
func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *itemRepository) List() ([]*models.Item, error) {
	entries, err := os.ReadDir(r.itemsDir)
	if err != nil {
		return nil, xerr.NewCodeError(xerr.CodeStorageError, fmt.Errorf("扫描条目目录 %q 失败: %w", r.itemsDir, err))
	}

	items := make([]*models.Item, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// 只接受 <id>.json 且 ID 合法的记录，其余文件静默跳过
		name := entry.Name()
		if !strings.HasSuffix(name, models.ItemExt) {
			continue
		}
		id := strings.TrimSuffix(name, models.ItemExt)
		if !models.IsValidID(id) {
			continue
		}

		item, err := r.load(id)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].ID < items[b].ID
	})
	return items, nil
}

func (r *itemRepository) Create(props *ItemProps) (*models.Item, error) {
	if props == nil || props.Filename == "" {
		return nil, xerr.NewCodeError(xerr.CodeMissingFilename, xerr.ErrMissingFilename)
	}

	created := r.now().Unix()
	if props.Created != nil {
		created = *props.Created
	}

	// 过期时间必须不早于生效时间，只在创建时检查一次
	if props.Expires != nil && *props.Expires < created {
		return nil, xerr.NewCodeError(xerr.CodeExpiresBeforeStart,
			fmt.Errorf("%w: 过期时间 %d 早于生效时间 %d", xerr.ErrExpiresBeforeStart, *props.Expires, created))
	}

	id := props.ID
	if id != "" {
		if !models.IsValidID(id) {
			return nil, xerr.NewCodeError(xerr.CodeInvalidID, fmt.Errorf("%w: %q", xerr.ErrInvalidID, id))
		}
	} else {
		var err error
		id, err = r.generateID(created)
		if err != nil {
			return nil, err
		}
	}

	if r.Exists(id) {
		return nil, xerr.NewCodeError(xerr.CodeItemAlreadyExists, fmt.Errorf("%w: %q", xerr.ErrItemAlreadyExists, id))
	}

	item := &models.Item{
		ID:       id,
		Activity: props.Activity,
		Created:  created,
		Expires:  props.Expires,
		Filename: props.Filename,
		Timeout:  props.Timeout,
		User:     props.User,
	}
	if err := r.Save(item); err != nil {
		return nil, err
	}

	logger.Info("条目已创建",
		zap.String("id", item.ID),
		zap.String("filename", item.Filename),
		zap.String("user", item.User))
	return item, nil
}

// generateID 生成随机条目 ID
// 前缀由创建日期 (yymmdd) 编码而来，后接两个随机字符，碰撞时重试
func (r *itemRepository) generateID(created int64) (string, error) {
	t := time.Unix(created, 0).UTC()
	dateNum := int64(t.Year()%100*10000 + int(t.Month())*100 + t.Day())
	datePart, err := r.enc.Encode(dateNum)
	if err != nil {
		return "", xerr.NewCodeError(xerr.CodeInternalServerError, fmt.Errorf("编码日期部分失败: %w", err))
	}

	for {
		random, err := r.enc.RandomString(2)
		if err != nil {
			return "", xerr.NewCodeError(xerr.CodeInternalServerError, fmt.Errorf("生成随机 ID 失败: %w", err))
		}
		id := datePart + random
		if !r.Exists(id) {
			return id, nil
		}
	}
}
