// Package actions implements the nine attendance actions exposed by the command line.
//
// 每个 action 先校验参数，校验通过后才向 Provider 请求合约客户端，
// 因此参数错误永远不会触发网络连接。
package actions

import (
	"context"

	"github.com/samber/lo"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
	"github.com/weisyn/attendance-cli/client/core/contract"
)

// Provider 延迟提供合约客户端（通常是 *contract.Factory）
type Provider interface {
	Attendance(ctx context.Context) (contract.Attendance, error)
}

// Handler action 处理函数，返回值直接作为结果 JSON 输出
type Handler func(ctx context.Context, provider Provider, in Payload) (interface{}, error)

// Action 注册的 action
type Action struct {
	Name     string
	Mutating bool     // 是否提交交易
	Required []string // 必填字段
	Optional []string // 可选字段
	handler  Handler
}

// Run 校验必填字段后执行
func (a Action) Run(ctx context.Context, provider Provider, in Payload) (interface{}, error) {
	if in == nil {
		in = Payload{}
	}
	if err := in.require(a.Name, a.Required...); err != nil {
		return nil, err
	}
	return a.handler(ctx, provider, in)
}

// Prepare 查找 action 并解析、校验 payload，不访问配置和网络
//
// 未知名称返回 UnknownActionError，缺少必填字段返回 ValidationError。
func Prepare(name, rawPayload string) (Action, Payload, error) {
	action, ok := Lookup(name)
	if !ok {
		return Action{}, nil, apperrors.UnknownAction(name, Names())
	}

	payload, err := ParsePayload(name, rawPayload)
	if err != nil {
		return Action{}, nil, err
	}
	if err := payload.require(name, action.Required...); err != nil {
		return Action{}, nil, err
	}
	return action, payload, nil
}

var registry = []Action{
	{Name: contract.MethodCreateSession, Mutating: true, Required: []string{"sessionCode", "classId"}, Optional: []string{"durationMinutes"}, handler: createSession},
	{Name: contract.MethodMarkAttendance, Mutating: true, Required: []string{"sessionCode", "studentId", "classId"}, handler: markAttendance},
	{Name: contract.MethodIsSessionValid, Required: []string{"sessionCode"}, handler: isSessionValid},
	{Name: contract.MethodHasAttended, Required: []string{"sessionCode", "studentId"}, handler: hasAttended},
	{Name: contract.MethodGetAttendanceRecord, Required: []string{"sessionCode", "studentId"}, handler: getAttendanceRecord},
	{Name: contract.MethodGetTotalRecords, handler: getTotalRecords},
	{Name: contract.MethodGetRecordByIndex, Required: []string{"index"}, handler: getRecordByIndex},
	{Name: contract.MethodAuthorizeTeacher, Mutating: true, Required: []string{"teacherAddress"}, handler: authorizeTeacher},
	{Name: contract.MethodRegisterStudent, Mutating: true, Required: []string{"studentId", "studentAddress"}, handler: registerStudent},
}

// Lookup 按名称查找 action（区分大小写）
func Lookup(name string) (Action, bool) {
	return lo.Find(registry, func(a Action) bool {
		return a.Name == name
	})
}

// Names 全部 action 名称，按注册顺序
func Names() []string {
	return lo.Map(registry, func(a Action, _ int) string {
		return a.Name
	})
}

// All 全部 action 的副本
func All() []Action {
	return append([]Action(nil), registry...)
}
