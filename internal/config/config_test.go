package config

import (
	"testing"

	"github.com/lbestle/go-shareable/internal/models"
)

func TestDownloadURL(t *testing.T) {
	cfg := &Config{FileURL: "https://example.com/files/"}
	if got := cfg.DownloadURL("a.txt"); got != "https://example.com/files/a.txt" {
		t.Errorf("下载 URL 错误: %q", got)
	}

	// 末尾没有斜杠的配置也要拼出同样的结果
	cfg.FileURL = "https://example.com/files"
	if got := cfg.DownloadURL("x1/a.txt"); got != "https://example.com/files/x1/a.txt" {
		t.Errorf("下载 URL 错误: %q", got)
	}
}

func TestValidateRequiresDirectories(t *testing.T) {
	cfg := &Config{}
	cfg.Paths.Files = t.TempDir()
	cfg.Paths.Inbox = t.TempDir()
	cfg.Paths.Items = t.TempDir()

	if err := cfg.Validate(); err != nil {
		t.Errorf("目录齐全时校验不应失败: %v", err)
	}

	cfg.Paths.Items = "/nonexistent/items"
	if err := cfg.Validate(); err == nil {
		t.Error("目录不存在时校验应失败")
	}

	cfg.Paths.Items = ""
	if err := cfg.Validate(); err == nil {
		t.Error("目录未配置时校验应失败")
	}
}

func TestBuildUsers(t *testing.T) {
	cfg := &Config{
		Users: map[string]UserConfig{
			"admin": {Password: "hash", Permissions: []string{"*"}},
			"alice": {Password: "hash", Permissions: []string{"upload", "publish"}},
		},
	}

	users, err := cfg.BuildUsers()
	if err != nil {
		t.Fatalf("构建用户表失败: %v", err)
	}
	if users.Get("alice").Username != "alice" {
		t.Error("alice 应在用户表中")
	}
	// 未配置时自动补一个无权限的 anonymous
	anon := users.Anonymous()
	if anon.Username != models.AnonymousUsername {
		t.Errorf("anonymous 用户缺失: %q", anon.Username)
	}
	if anon.HasPermission(models.PermAny) {
		t.Error("默认 anonymous 不应持有任何权限")
	}
}

func TestBuildUsersRejectsUnknownPermission(t *testing.T) {
	cfg := &Config{
		Users: map[string]UserConfig{
			"bob": {Permissions: []string{"fly"}},
		},
	}

	if _, err := cfg.BuildUsers(); err == nil {
		t.Error("非法权限名应使构建失败")
	}
}

func TestBuildUsersScalarPermissions(t *testing.T) {
	// YAML 里 permissions 可以写成 true/false，列表由 viper 解码为 []any
	cfg := &Config{
		Users: map[string]UserConfig{
			"admin":  {Permissions: true},
			"nobody": {Permissions: false},
			"lurker": {},
			"alice":  {Permissions: []any{"upload", "publish"}},
		},
	}

	users, err := cfg.BuildUsers()
	if err != nil {
		t.Fatalf("构建用户表失败: %v", err)
	}
	if !users.Get("admin").HasPermission(models.PermDelete) {
		t.Error("permissions: true 应等同于全部权限")
	}
	if users.Get("nobody").HasPermission(models.PermAny) {
		t.Error("permissions: false 不应持有任何权限")
	}
	if users.Get("lurker").HasPermission(models.PermAny) {
		t.Error("缺省 permissions 不应持有任何权限")
	}
	if !users.Get("alice").HasPermission(models.PermUpload) || users.Get("alice").HasPermission(models.PermDelete) {
		t.Error("列表形式的权限解析错误")
	}
}

func TestBuildUsersRejectsMalformedPermissions(t *testing.T) {
	for _, value := range []any{"upload", 7, []any{1}} {
		cfg := &Config{
			Users: map[string]UserConfig{
				"bob": {Permissions: value},
			},
		}
		if _, err := cfg.BuildUsers(); err == nil {
			t.Errorf("权限配置 %v 应使构建失败", value)
		}
	}
}
