package models

import (
	"regexp"
)

// ItemExt 是条目记录文件的扩展名
const ItemExt = ".json"

// 条目 ID 的合法字符集，同时用作记录文件名，因此必须是路径安全的
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-=]+$`)

// IsValidID 检查字符串是否是合法的条目 ID
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Item 是一个已发布文件的元数据记录
// 记录以 JSON 形式持久化为 <id>.json，字段名即 json 标签
// 所有时间戳都是整秒 Unix 时间
type Item struct {
	ID string `json:"-"`

	Activity  *int64 `json:"activity"`  // 最后一次下载时间，null 表示超时尚未启动
	Created   int64  `json:"created"`   // 生效时间，早于该时刻条目不可用
	Downloads int64  `json:"downloads"` // 成功跳转次数
	Expires   *int64 `json:"expires"`   // 绝对过期时间，null 表示永不过期
	Filename  string `json:"filename"`  // 指向文件仓库内的相对路径
	Timeout   *int64 `json:"timeout"`   // 允许的不活跃秒数，null 表示无超时
	User      string `json:"user"`      // 发布者用户名

	// 删除后条目不可再持久化；该标志只存在于内存中
	deleted bool
}

// TimeoutDeadline 返回超时截止时间
// 只有 timeout 和 activity 都已设置时超时才参与失效计算
func (i *Item) TimeoutDeadline() (int64, bool) {
	if i.Timeout == nil || i.Activity == nil {
		return 0, false
	}
	return *i.Activity + *i.Timeout, true
}

// InvalidityDate 返回条目失效的最早时间点
// 取绝对过期时间和超时截止时间中较早的一个；两者都未配置时返回 false
func (i *Item) InvalidityDate() (int64, bool) {
	deadline, hasDeadline := i.TimeoutDeadline()

	switch {
	case i.Expires != nil && hasDeadline:
		if *i.Expires < deadline {
			return *i.Expires, true
		}
		return deadline, true
	case i.Expires != nil:
		return *i.Expires, true
	case hasDeadline:
		return deadline, true
	default:
		return 0, false
	}
}

// IsExpired 检查条目在 now 时刻是否已经失效
// 与删除标志无关：删除和过期是两个独立信号，只在 IsValid 里合并
func (i *Item) IsExpired(now int64) bool {
	invalidity, ok := i.InvalidityDate()
	if !ok {
		return false
	}
	return now > invalidity
}

// IsValid 检查条目在 now 时刻是否可用，用于放行下载
func (i *Item) IsValid(now int64) bool {
	if i.deleted {
		return false
	}
	if now < i.Created || i.IsExpired(now) {
		return false
	}
	return true
}

// RecordDownload 记录一次成功下载：刷新活跃时间并累加计数
// 调用方负责随后持久化
func (i *Item) RecordDownload(now int64) {
	i.Activity = &now
	i.Downloads++
}

// MarkDeleted 把条目标记为已删除，之后任何持久化尝试都会失败
func (i *Item) MarkDeleted() {
	i.deleted = true
}

// IsDeleted 返回删除标志
func (i *Item) IsDeleted() bool {
	return i.deleted
}
