// Package apperrors defines the error taxonomy shared by every attendance-cli action.
//
// 所有错误最终都以同一个 JSON 错误信封返回给调用方，Kind 只用于区分来源：
//   - ValidationError     输入字段缺失或格式错误（在任何远程调用之前检测）
//   - ConfigurationError  合约地址无法解析、缺少签名私钥或节点地址
//   - ConnectivityError   客户端或签名身份构建失败
//   - RemoteCallError     远程合约调用失败或被回滚
//   - UnknownActionError  未知的 action 名称
//
// 本工具不做任何自动重试。
package apperrors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind 错误类别
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindConfiguration Kind = "ConfigurationError"
	KindConnectivity  Kind = "ConnectivityError"
	KindRemoteCall    Kind = "RemoteCallError"
	KindUnknownAction Kind = "UnknownActionError"
	// KindInternal 兜底类别（例如 handler panic、输出序列化失败）
	KindInternal Kind = "InternalError"
)

// Error 带类别和操作名的错误
type Error struct {
	Kind Kind
	Op   string // 操作名，例如 createSession
	Msg  string
	Err  error // 底层原因，可为 nil
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// newError 创建错误并附带调用栈
func newError(kind Kind, op string, cause error, format string, args ...interface{}) error {
	return errors.WithStack(&Error{
		Kind: kind,
		Op:   op,
		Msg:  fmt.Sprintf(format, args...),
		Err:  cause,
	})
}

// Validation 输入校验错误
func Validation(op string, format string, args ...interface{}) error {
	return newError(KindValidation, op, nil, format, args...)
}

// MissingFields 缺少必填字段，错误信息中列出全部缺失字段
func MissingFields(op string, fields ...string) error {
	return newError(KindValidation, op, nil, "missing required field(s): %s", strings.Join(fields, ", "))
}

// Configuration 配置错误
func Configuration(format string, args ...interface{}) error {
	return newError(KindConfiguration, "", nil, format, args...)
}

// ConfigurationWrap 包装底层原因的配置错误
func ConfigurationWrap(cause error, format string, args ...interface{}) error {
	return newError(KindConfiguration, "", cause, format, args...)
}

// Connectivity 连接错误
func Connectivity(cause error, format string, args ...interface{}) error {
	return newError(KindConnectivity, "", cause, format, args...)
}

// RemoteCall 将远程调用失败标注操作名后包装
//
// 如果 cause 已经是带类别的错误（例如工厂返回的配置错误），原样返回，避免改变其类别。
// 调用被中断（context.Canceled）归为连接错误。
func RemoteCall(op string, cause error) error {
	if cause == nil {
		return nil
	}
	var ae *Error
	if stderrors.As(cause, &ae) {
		return cause
	}
	if stderrors.Is(cause, context.Canceled) {
		return newError(KindConnectivity, op, cause, "remote call interrupted")
	}
	return newError(KindRemoteCall, op, cause, "remote call failed")
}

// RemoteCallf 远程调用前置检查失败等无底层原因的远程错误
func RemoteCallf(op string, format string, args ...interface{}) error {
	return newError(KindRemoteCall, op, nil, format, args...)
}

// UnknownAction 未知 action
func UnknownAction(action string, known []string) error {
	return newError(KindUnknownAction, "", nil, "Unknown action: %s (expected one of: %s)", action, strings.Join(known, ", "))
}

// Internal 内部错误
func Internal(cause error, format string, args ...interface{}) error {
	return newError(KindInternal, "", cause, format, args...)
}

// KindOf 返回错误类别，非本包错误返回 KindInternal
func KindOf(err error) Kind {
	var ae *Error
	if stderrors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message 返回面向调用方的错误信息（不含调用栈）
func Message(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Stack 返回带调用栈的诊断文本
func Stack(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", err)
}
