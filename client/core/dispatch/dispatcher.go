// Package dispatch runs exactly one action per process and reports its outcome.
//
// 状态只有两个：DISPATCHING（查找并执行 action）和 TERMINATED（结果已输出）。
// 无论成功、失败还是 panic，结果流上都恰好有一个 JSON 对象。
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/weisyn/attendance-cli/client/core/actions"
	"github.com/weisyn/attendance-cli/client/core/apperrors"
	"github.com/weisyn/attendance-cli/client/core/output"
)

// 退出码
const (
	ExitOK      = 0
	ExitFailure = 1
)

// State 调度状态
type State string

const (
	StateDispatching State = "DISPATCHING"
	StateTerminated  State = "TERMINATED"
)

// Dispatcher 单次调用调度器
type Dispatcher struct {
	provider  actions.Provider
	formatter *output.Formatter
	logger    *zap.Logger

	invocation string
	state      State
}

// New 创建调度器
func New(provider actions.Provider, formatter *output.Formatter, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Dispatcher{
		provider:   provider,
		formatter:  formatter,
		logger:     logger.With(zap.String("invocation", id)),
		invocation: id,
		state:      StateDispatching,
	}
}

// InvocationID 本次调用的随机标识，出现在全部诊断日志中
func (d *Dispatcher) InvocationID() string {
	return d.invocation
}

// State 当前状态
func (d *Dispatcher) State() State {
	return d.state
}

// Dispatch 执行 action 并输出结果，返回进程退出码
func (d *Dispatcher) Dispatch(ctx context.Context, name, rawPayload string) int {
	logger := d.logger.With(zap.String("action", name))
	start := time.Now()

	result, err := d.run(ctx, name, rawPayload)
	if err != nil {
		return d.fail(logger, err)
	}

	if err := d.formatter.Print(result); err != nil {
		logger.Error("write result failed", zap.Error(err))
		d.state = StateTerminated
		return ExitFailure
	}
	d.state = StateTerminated
	logger.Info("action completed", zap.Duration("elapsed", time.Since(start)))
	return ExitOK
}

// Fail 在 action 执行之前失败（例如命令行参数错误）时输出错误信封
func (d *Dispatcher) Fail(err error) int {
	return d.fail(d.logger, err)
}

func (d *Dispatcher) fail(logger *zap.Logger, err error) int {
	logger.Error("action failed",
		zap.String("error_type", string(apperrors.KindOf(err))),
		zap.String("error", apperrors.Message(err)),
		zap.String("detail", apperrors.Stack(err)))

	if perr := d.formatter.PrintError(err); perr != nil {
		logger.Error("write error result failed", zap.Error(perr))
	}
	d.state = StateTerminated
	return ExitFailure
}

// run 查找并执行 action，handler 中的 panic 转为 InternalError
func (d *Dispatcher) run(ctx context.Context, name, rawPayload string) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.Internal(nil, "action %s panicked: %v", name, r)
		}
	}()

	action, payload, err := actions.Prepare(name, rawPayload)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("dispatching",
		zap.String("action", name),
		zap.Bool("mutating", action.Mutating),
		zap.Strings("fields", lo.Keys(payload)))
	return action.Run(ctx, d.provider, payload)
}
