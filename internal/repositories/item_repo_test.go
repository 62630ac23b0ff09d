package repositories

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/lbestle/go-shareable/internal/models"
	"github.com/lbestle/go-shareable/internal/pkg/encoder"
	"github.com/lbestle/go-shareable/internal/pkg/xerr"
)

func int64p(v int64) *int64 {
	return &v
}

// newTestRepo 创建使用临时目录和固定时钟的仓库
func newTestRepo(t *testing.T) (*itemRepository, string, string) {
	t.Helper()
	itemsDir := t.TempDir()
	filesDir := t.TempDir()
	repo := &itemRepository{
		itemsDir: itemsDir,
		filesDir: filesDir,
		enc:      encoder.Default(),
		now:      func() time.Time { return time.Unix(1514851200, 0) }, // 2018-01-02 00:00:00 UTC
	}
	return repo, itemsDir, filesDir
}

func TestCreateAndGet(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	item, err := repo.Create(&ItemProps{
		ID:       "x1",
		Filename: "a.txt",
		User:     "alice",
		Expires:  int64p(1514851200 + 86400),
	})
	if err != nil {
		t.Fatalf("Create 返回错误: %v", err)
	}
	if item.Created != 1514851200 {
		t.Errorf("Created 应默认为当前时间, 得到 %d", item.Created)
	}

	if !repo.Exists("x1") {
		t.Error("创建后 Exists 应为 true")
	}

	loaded, err := repo.Get("x1")
	if err != nil {
		t.Fatalf("Get 返回错误: %v", err)
	}
	if loaded == nil {
		t.Fatal("Get 返回 nil")
	}
	if loaded.Filename != "a.txt" || loaded.User != "alice" {
		t.Errorf("加载的条目字段不符: %+v", loaded)
	}
	if loaded.Expires == nil || *loaded.Expires != 1514851200+86400 {
		t.Errorf("Expires 丢失: %v", loaded.Expires)
	}
	if loaded.Activity != nil {
		t.Errorf("新条目的 Activity 应为 null, 得到 %v", loaded.Activity)
	}
}

func TestGetMissingItem(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	item, err := repo.Get("nope")
	if err != nil {
		t.Fatalf("不存在的条目不应报错, 得到 %v", err)
	}
	if item != nil {
		t.Error("不存在的条目应返回 nil")
	}
}

func TestGetInvalidID(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	if _, err := repo.Get("../escape"); err == nil {
		t.Error("非法 ID 应当报错")
	}
}

func TestCreateMissingFilename(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	_, err := repo.Create(&ItemProps{User: "alice"})
	if !errors.Is(err, xerr.ErrMissingFilename) {
		t.Errorf("缺少文件名应返回 ErrMissingFilename, 得到 %v", err)
	}
}

func TestCreateExpiresBeforeCreated(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	_, err := repo.Create(&ItemProps{
		Filename: "a.txt",
		User:     "alice",
		Created:  int64p(2000),
		Expires:  int64p(1000),
	})
	if !errors.Is(err, xerr.ErrExpiresBeforeStart) {
		t.Errorf("过期早于生效应返回 ErrExpiresBeforeStart, 得到 %v", err)
	}

	// 非严格不等式：相等是允许的
	if _, err := repo.Create(&ItemProps{
		Filename: "a.txt",
		User:     "alice",
		Created:  int64p(2000),
		Expires:  int64p(2000),
	}); err != nil {
		t.Errorf("expires == created 应当允许, 得到 %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	if _, err := repo.Create(&ItemProps{ID: "x1", Filename: "a.txt", User: "alice"}); err != nil {
		t.Fatalf("Create 返回错误: %v", err)
	}
	_, err := repo.Create(&ItemProps{ID: "x1", Filename: "b.txt", User: "alice"})
	if !errors.Is(err, xerr.ErrItemAlreadyExists) {
		t.Errorf("重复创建应返回 ErrItemAlreadyExists, 得到 %v", err)
	}
}

func TestCreateGeneratedID(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	item, err := repo.Create(&ItemProps{Filename: "a.txt", User: "alice"})
	if err != nil {
		t.Fatalf("Create 返回错误: %v", err)
	}

	// 2018-01-02 → 180102 编码后为日期前缀，后接两个随机字符
	enc := encoder.Default()
	prefix, _ := enc.Encode(180102)
	if len(item.ID) != len(prefix)+2 {
		t.Errorf("生成的 ID %q 长度不符, 期望前缀 %q 加两个随机字符", item.ID, prefix)
	}
	if item.ID[:len(prefix)] != prefix {
		t.Errorf("生成的 ID %q 前缀不符, 期望 %q", item.ID, prefix)
	}
	if !models.IsValidID(item.ID) {
		t.Errorf("生成的 ID %q 不符合 ID 规则", item.ID)
	}
}

func TestSaveDeletedItem(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	item, err := repo.Create(&ItemProps{ID: "x1", Filename: "a.txt", User: "alice"})
	if err != nil {
		t.Fatalf("Create 返回错误: %v", err)
	}
	item.MarkDeleted()
	if err := repo.Save(item); err == nil {
		t.Error("已删除的条目不能再持久化")
	}
}

func TestDeleteRemovesRecordAndBlob(t *testing.T) {
	repo, itemsDir, filesDir := newTestRepo(t)
	if err := os.WriteFile(filepath.Join(filesDir, "a.txt"), []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	item, err := repo.Create(&ItemProps{ID: "x1", Filename: "a.txt", User: "alice"})
	if err != nil {
		t.Fatalf("Create 返回错误: %v", err)
	}

	if err := repo.Delete(item); err != nil {
		t.Fatalf("Delete 返回错误: %v", err)
	}
	if _, err := os.Stat(filepath.Join(itemsDir, "x1.json")); !os.IsNotExist(err) {
		t.Error("记录文件应已删除")
	}
	if _, err := os.Stat(filepath.Join(filesDir, "a.txt")); !os.IsNotExist(err) {
		t.Error("引用的文件应已删除")
	}
	if !item.IsDeleted() {
		t.Error("删除后条目应带删除标志")
	}
	if item.IsValid(time.Now().Unix()) {
		t.Error("删除后条目应不可用")
	}

	// 幂等：文件已不存在时第二次删除不报错
	if err := repo.Delete(item); err != nil {
		t.Errorf("重复删除不应报错, 得到 %v", err)
	}
}

func TestListSortedAndFiltered(t *testing.T) {
	repo, itemsDir, _ := newTestRepo(t)
	for _, id := range []string{"zz", "aa", "mm"} {
		if _, err := repo.Create(&ItemProps{ID: id, Filename: id + ".txt", User: "alice"}); err != nil {
			t.Fatalf("Create(%s) 返回错误: %v", id, err)
		}
	}

	// 扩展名不符或 ID 非法的文件应被静默跳过
	if err := os.WriteFile(filepath.Join(itemsDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(itemsDir, "bad name.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := repo.List()
	if err != nil {
		t.Fatalf("List 返回错误: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("期望 3 个条目, 得到 %d", len(items))
	}
	if !sort.SliceIsSorted(items, func(a, b int) bool { return items[a].ID < items[b].ID }) {
		t.Error("List 结果应按 ID 升序")
	}
}

func TestListCorruptRecordAborts(t *testing.T) {
	repo, itemsDir, _ := newTestRepo(t)
	if _, err := repo.Create(&ItemProps{ID: "ok", Filename: "a.txt", User: "alice"}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(itemsDir, "bad.json"), []byte("null"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := repo.List()
	if !errors.Is(err, xerr.ErrRecordCorrupted) {
		t.Errorf("损坏的记录应使整个扫描失败, 得到 %v", err)
	}
}

func TestRecordJSONShape(t *testing.T) {
	repo, itemsDir, _ := newTestRepo(t)
	if _, err := repo.Create(&ItemProps{ID: "x1", Filename: "a.txt", User: "alice", Timeout: int64p(60)}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(itemsDir, "x1.json"))
	if err != nil {
		t.Fatal(err)
	}
	var record map[string]json.RawMessage
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("记录不是合法 JSON: %v", err)
	}

	for _, field := range []string{"activity", "created", "downloads", "expires", "filename", "timeout", "user"} {
		if _, ok := record[field]; !ok {
			t.Errorf("记录缺少字段 %q", field)
		}
	}
	if string(record["activity"]) != "null" {
		t.Errorf("未启动超时的条目 activity 应序列化为 null, 得到 %s", record["activity"])
	}
	if _, ok := record["id"]; ok {
		t.Error("ID 由文件名承载，不应写入记录内容")
	}
}
