package xerr

import "errors"

var (
	// 客户端请求错误
	ErrInvalidParams      = errors.New("无效的请求参数")
	ErrInvalidID          = errors.New("条目 ID 包含非法字符")
	ErrExpiresBeforeStart = errors.New("过期时间不能早于生效时间")
	ErrMissingFilename    = errors.New("缺少文件名")
	ErrTimeoutNotSet      = errors.New("未设置超时时无法立即启动超时")
	ErrNoFileUploaded     = errors.New("没有上传任何文件")

	// 认证与授权错误
	ErrUnauthorized       = errors.New("用户未授权")
	ErrTokenInvalid       = errors.New("认证 Token 无效或已过期")
	ErrInvalidCredentials = errors.New("用户名或密码不正确")
	ErrPermissionDenied   = errors.New("您没有操作此资源的权限")

	// 资源未找到错误
	ErrItemNotFound = errors.New("条目不存在")
	ErrItemInvalid  = errors.New("条目当前不可用")
	ErrFileNotFound = errors.New("文件不存在")

	// 业务逻辑冲突
	ErrItemAlreadyExists = errors.New("条目已存在")

	// 存储错误
	ErrStorageError    = errors.New("文件系统操作失败")
	ErrRecordCorrupted = errors.New("条目记录损坏")
	ErrItemDeleted     = errors.New("条目已删除，不能再写入")
)
