package xerr

// 统一的业务错误码
const (
	CodeSuccess = 20000 // 通用成功码

	// --- 客户端请求错误系列 (400xx) ---
	CodeInvalidParams      = 40000 // 无效的请求参数
	CodeInvalidID          = 40001 // 条目 ID 不符合规则
	CodeInvalidTime        = 40002 // 时间表达式无法解析
	CodeExpiresBeforeStart = 40003 // 过期时间早于生效时间
	CodeMissingFilename    = 40004 // 缺少文件名
	CodeTimeoutNotSet      = 40005 // 未设置超时却要求立即启动超时
	CodeNoFileUploaded     = 40006 // 没有上传任何文件
	CodeUploadRejected     = 40007 // 上传的文件未通过安全检查
	CodeInvalidPermission  = 40008 // 配置中的权限值无效

	// --- 认证与授权错误系列 (401xx/403xx) ---
	CodeUnauthorized       = 40100 // 未授权
	CodeTokenInvalid       = 40101 // Token 无效或过期
	CodeInvalidCredentials = 40102 // 用户名或密码错误
	CodePermissionDenied   = 40300 // 权限不足

	// --- 资源未找到错误系列 (404xx) ---
	CodeNotFound      = 40400 // 通用资源未找到
	CodeItemNotFound  = 40401 // 条目不存在
	CodeFileNotFound  = 40402 // 收件箱文件不存在
	CodeRouteNotFound = 40403 // 路由不存在

	// --- 业务逻辑冲突系列 (409xx) ---
	CodeItemAlreadyExists = 40900 // 条目已存在

	// --- 服务器内部错误系列 (500xx) ---
	CodeInternalServerError = 50000 // 服务器内部通用错误
	CodeStorageError        = 50001 // 文件系统操作失败
	CodeRecordCorrupted     = 50002 // 条目记录损坏，无法读取
)
