package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - 请求错误：INVALID_INPUT
//   - 契约错误：INVARIANT_VIOLATION（维度不一致、未知交互类型）
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVARIANT_VIOLATION"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "vector", "profile"）
	Err     error  // 原始错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// IsDomainError 检查错误链中是否有 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带原始错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewInvariantError 创建契约违反错误。
// 这类错误意味着上游违反了约定，应中止当前请求而不是静默修正。
func NewInvariantError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeInvariantViolation, message)
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"           // 资源不存在
	ErrorCodeNotSupported       = "NOT_SUPPORTED"       // 操作不支持
	ErrorCodeUnavailable        = "UNAVAILABLE"         // 服务不可用
	ErrorCodeInvalidInput       = "INVALID_INPUT"       // 输入无效
	ErrorCodeInternalError      = "INTERNAL_ERROR"      // 内部错误
	ErrorCodeInvariantViolation = "INVARIANT_VIOLATION" // 契约违反
)

// 模块名称常量
const (
	ModuleStore     = "store"     // 存储模块
	ModuleVector    = "vector"    // 向量模块
	ModuleProfile   = "profile"   // 用户画像
	ModuleService   = "service"   // 外部服务
	ModuleRecommend = "recommend" // 推荐编排
)

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsInvariantViolation 检查错误是否为 INVARIANT_VIOLATION
func IsInvariantViolation(err error) bool {
	return hasCode(err, ErrorCodeInvariantViolation)
}
