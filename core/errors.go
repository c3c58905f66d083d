package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型，提供错误代码（Code）与模块（Module）
//   - 单源级别的超时/不可用永远在聚合层就地恢复，不作为硬错误上抛
//   - 只有调用方输入违约（INVALID_INPUT）才向调用方传播
type DomainError struct {
	Code    string // 错误代码（如 "TIMEOUT", "EMPTY_POOL"）
	Message string // 错误消息
	Module  string // 模块名称（如 "collect", "enrich"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError 创建新的领域错误。
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// GetDomainError 获取 DomainError，如果不是则返回 nil。
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeTimeout       = "TIMEOUT"        // 单次外部调用超时
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 外部源不可用（连接失败/非 2xx）
	ErrorCodeEmptyPool     = "EMPTY_POOL"     // 全部目录查询失败或过滤后为空
	ErrorCodeNoQualifying  = "NO_QUALIFYING"  // 打分后没有正分候选
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 调用方输入违约
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
)

// 模块名称常量
const (
	ModuleSource  = "source"
	ModuleCollect = "collect"
	ModuleEnrich  = "enrich"
	ModuleProfile = "profile"
	ModuleStore   = "store"
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsTimeout 检查错误是否为单源超时。
func IsTimeout(err error) bool { return hasCode(err, ErrorCodeTimeout) }

// IsUnavailable 检查错误是否为源不可用。
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsEmptyPool 检查错误是否为候选池为空。
func IsEmptyPool(err error) bool { return hasCode(err, ErrorCodeEmptyPool) }

// IsInvalidInput 检查错误是否为调用方输入违约。
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// 常用错误实例
var (
	// ErrEmptyCandidatePool 表示连静态兜底集都为空时的最终失败。
	ErrEmptyCandidatePool = NewDomainError(ModuleCollect, ErrorCodeEmptyPool, "collect: candidate pool empty")

	// ErrStoreNotFound 表示 key 不存在。
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
)

// IsStoreNotFound 检查错误是否为 key 不存在。
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeNotFound
}
