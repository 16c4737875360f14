package errors

import (
	"errors"
	"fmt"
)

// ResultCode Webhook结果码类型
type ResultCode int

// 结果码定义（与房间服务器约定的返回码一致）
const (
	// 成功
	CodeOK ResultCode = 0

	// 校验失败
	CodeMissingArgument  ResultCode = 1 // 缺少必填字段
	CodeInvalidOperation ResultCode = 2 // 字段间逻辑不一致 / 非法事件类型
	CodeIdentityMismatch ResultCode = 3 // UserId与调用方身份不一致

	// 状态失败
	CodeRoomNotFound ResultCode = 5 // 房间不存在且禁止创建

	// 未分类的内部错误
	CodeInternal ResultCode = 255
)

// 结果码默认消息映射
var codeMessages = map[ResultCode]string{
	CodeOK:               "OK",
	CodeMissingArgument:  "缺少必填字段",
	CodeInvalidOperation: "字段逻辑不一致",
	CodeIdentityMismatch: "身份不匹配",
	CodeRoomNotFound:     "房间不存在",
	CodeInternal:         "内部错误",
}

// WebhookError Webhook错误信号
// 携带结果码、可读消息、产生时间戳以及触发错误的原始载荷
type WebhookError struct {
	Code      ResultCode  `json:"ResultCode"`
	Message   string      `json:"Message"`
	Timestamp string      `json:"Timestamp"`
	Data      interface{} `json:"Data,omitempty"`
}

// Error 实现error接口
func (e *WebhookError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%d] %s", e.Code, codeMessages[e.Code])
}

// New 创建Webhook错误
func New(code ResultCode, msg string, timestamp string, data interface{}) *WebhookError {
	if msg == "" {
		msg = codeMessages[code]
	}
	return &WebhookError{
		Code:      code,
		Message:   msg,
		Timestamp: timestamp,
		Data:      data,
	}
}

// Newf 创建格式化消息的Webhook错误
func Newf(code ResultCode, timestamp string, data interface{}, format string, args ...interface{}) *WebhookError {
	return New(code, fmt.Sprintf(format, args...), timestamp, data)
}

// MissingArgument 创建缺少字段错误，消息格式与房间服务器日志约定一致
func MissingArgument(field string, timestamp string, data interface{}) *WebhookError {
	return New(CodeMissingArgument, "Missing argument: "+field, timestamp, data)
}

// As 尝试将错误还原为WebhookError
func As(err error) (*WebhookError, bool) {
	var whErr *WebhookError
	if errors.As(err, &whErr) {
		return whErr, true
	}
	return nil, false
}

// Is 判断错误是否为指定结果码
func Is(err error, code ResultCode) bool {
	if err == nil {
		return false
	}
	whErr, ok := As(err)
	return ok && whErr.Code == code
}

// GetCode 获取错误结果码，非WebhookError一律归为内部错误
func GetCode(err error) ResultCode {
	if err == nil {
		return CodeOK
	}
	if whErr, ok := As(err); ok {
		return whErr.Code
	}
	return CodeInternal
}

// Describe 返回结果码的默认描述
func Describe(code ResultCode) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return codeMessages[CodeInternal]
}
