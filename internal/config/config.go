package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lbestle/go-shareable/internal/models"
	"github.com/spf13/viper"
)

// Config 包含所有应用配置
type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Paths   PathsConfig           `mapstructure:"paths"`
	FileURL string                `mapstructure:"file_url"` // 文件下载的基础 URL，指向 files 目录
	Subdirs bool                  `mapstructure:"subdirs"`  // 发布时是否为每个条目建立子目录
	Debug   bool                  `mapstructure:"debug"`    // 调试模式下向客户端输出更详细的错误
	JWT     JWTConfig             `mapstructure:"jwt"`
	Log     LogConfig             `mapstructure:"log"`
	Users   map[string]UserConfig `mapstructure:"users"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// PathsConfig 三个数据目录
type PathsConfig struct {
	Files string `mapstructure:"files"` // 已发布文件
	Inbox string `mapstructure:"inbox"` // 待发布文件（收件箱）
	Items string `mapstructure:"items"` // 条目元数据记录
}

// JWTConfig 管理接口 Token 配置
type JWTConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

// zap 日志配置
type LogConfig struct {
	OutputPath string `mapstructure:"output_path"`
	Level      string `mapstructure:"level"`
}

// UserConfig 配置文件中的一个用户
// permissions 支持三种写法：权限名列表（"*" 表示全部）、
// true（等同于全部权限）、false 或缺省（无权限）
type UserConfig struct {
	Password    string `mapstructure:"password"` // bcrypt 哈希，留空表示无法登录
	Permissions any    `mapstructure:"permissions"`
}

// LoadConfig 通过 Viper 加载配置
// 查找顺序：当前目录、./configs、/etc/go-shareable；环境变量前缀 GO_SHAREABLE
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/go-shareable/")

	viper.SetEnvPrefix("GO_SHAREABLE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查三个数据目录是否存在
func (c *Config) Validate() error {
	for name, dir := range map[string]string{
		"paths.files": c.Paths.Files,
		"paths.inbox": c.Paths.Inbox,
		"paths.items": c.Paths.Items,
	} {
		if dir == "" {
			return fmt.Errorf("配置项 %q 是必填的", name)
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("配置项 %q 指向的目录 %q 不存在", name, dir)
		}
	}
	return nil
}

// normalizePermissions 把配置里的权限值规范化为权限名列表
// 布尔值 true 等同于全部权限，false 和缺省等同于空列表；
// 列表元素必须都是字符串，YAML 解码出来的列表是 []any
func normalizePermissions(username string, value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case bool:
		if v {
			return []string{models.PermAny}, nil
		}
		return nil, nil
	case []string:
		return v, nil
	case []any:
		perms := make([]string, 0, len(v))
		for _, p := range v {
			s, ok := p.(string)
			if !ok {
				return nil, fmt.Errorf("用户 %q 的权限值 %v 不是字符串", username, p)
			}
			perms = append(perms, s)
		}
		return perms, nil
	default:
		return nil, fmt.Errorf("用户 %q 的权限配置 %v 无法解析", username, value)
	}
}

// DownloadURL 返回指定文件的下载 URL
func (c *Config) DownloadURL(filename string) string {
	return strings.TrimRight(c.FileURL, "/") + "/" + filename
}

// BuildUsers 把配置中的用户表转换为领域用户集合
// 始终保证存在一个无权限兜底的 anonymous 用户
func (c *Config) BuildUsers() (models.Users, error) {
	users := make(models.Users, len(c.Users)+1)
	for username, uc := range c.Users {
		perms, err := normalizePermissions(username, uc.Permissions)
		if err != nil {
			return nil, err
		}
		u, err := models.NewUser(username, uc.Password, perms)
		if err != nil {
			return nil, err
		}
		users[username] = u
	}

	if _, ok := users[models.AnonymousUsername]; !ok {
		anon, err := models.NewUser(models.AnonymousUsername, "", nil)
		if err != nil {
			return nil, err
		}
		users[models.AnonymousUsername] = anon
	}
	return users, nil
}
