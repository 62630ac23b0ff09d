package models

import (
	"fmt"

	"github.com/lbestle/go-shareable/internal/pkg/utils"
)

// 管理接口已知的权限名
const (
	PermUpload  = "upload"  // 上传文件到收件箱
	PermPublish = "publish" // 发布/删除收件箱文件
	PermDelete  = "delete"  // 删除条目、执行清理
	PermMeta    = "meta"    // 查看条目元数据
)

// PermAny 表示"拥有任意一个权限即可"
const PermAny = "*"

var knownPermissions = map[string]bool{
	PermUpload:  true,
	PermPublish: true,
	PermDelete:  true,
	PermMeta:    true,
}

// AnonymousUsername 是未通过认证的请求归属的用户名
const AnonymousUsername = "anonymous"

// User 是管理接口的一个用户
// 密码以 bcrypt 哈希存放在配置文件中；没有哈希的用户无法登录
type User struct {
	Username     string
	PasswordHash string
	permissions  map[string]bool
}

// NewUser 构造用户并校验权限名
// permissions 中允许出现 "*"，表示拥有全部权限
func NewUser(username, passwordHash string, permissions []string) (*User, error) {
	perms := make(map[string]bool, len(permissions))
	for _, p := range permissions {
		if p != PermAny && !knownPermissions[p] {
			return nil, fmt.Errorf("用户 %q 的权限值 %q 无效", username, p)
		}
		perms[p] = true
	}

	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		permissions:  perms,
	}, nil
}

// VerifyPassword 校验明文密码
// 配置中没有密码哈希的用户（例如 anonymous）永远校验失败
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return utils.CheckPasswordHash(password, u.PasswordHash)
}

// HasPermission 检查用户是否拥有列出的权限中的任意一个
// 传入 "*" 表示只要求用户拥有至少一个权限
func (u *User) HasPermission(permissions ...string) bool {
	if u.permissions[PermAny] {
		return len(permissions) > 0
	}
	for _, p := range permissions {
		if p == PermAny {
			if len(u.permissions) > 0 {
				return true
			}
			continue
		}
		if u.permissions[p] {
			return true
		}
	}
	return false
}

// Users 是用户名到用户的映射
type Users map[string]*User

// Get 按用户名查找，不存在时返回 anonymous 用户
func (us Users) Get(username string) *User {
	if u, ok := us[username]; ok {
		return u
	}
	return us.Anonymous()
}

// Anonymous 返回 anonymous 用户，配置中未定义时返回一个无权限的默认值
func (us Users) Anonymous() *User {
	if u, ok := us[AnonymousUsername]; ok {
		return u
	}
	return &User{Username: AnonymousUsername, permissions: map[string]bool{}}
}
