// Package output writes the single JSON result object of an invocation.
package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
)

// ErrAlreadyPrinted 同一次调用重复输出
var ErrAlreadyPrinted = errors.New("result already written")

// ErrorEnvelope 失败时输出的 JSON 对象
type ErrorEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorType string `json:"errorType"`
	Stack     string `json:"stack,omitempty"` // 诊断信息，不是稳定字段
}

// NewErrorEnvelope 由错误构建信封
func NewErrorEnvelope(err error, includeStack bool) *ErrorEnvelope {
	env := &ErrorEnvelope{
		Success:   false,
		Error:     apperrors.Message(err),
		ErrorType: string(apperrors.KindOf(err)),
	}
	if includeStack {
		env.Stack = apperrors.Stack(err)
	}
	return env
}

// Formatter 结果输出器
//
// 每次调用只输出一个单行 JSON 对象，第二次 Print 返回 ErrAlreadyPrinted 且不写入任何内容。
type Formatter struct {
	writer       io.Writer // 结果输出（stdout）
	includeStack bool

	mu      sync.Mutex
	printed bool
}

// NewFormatter 创建格式化器
func NewFormatter(writer io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Formatter{writer: writer}
}

// SetIncludeStack 错误信封是否携带调用栈
func (f *Formatter) SetIncludeStack(include bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.includeStack = include
}

// Printed 是否已经输出
func (f *Formatter) Printed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.printed
}

// Print 输出结果对象
//
// 序列化失败时改为输出 InternalError 信封，保证结果流上始终有一个可解析的对象。
func (f *Formatter) Print(data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.printed {
		return ErrAlreadyPrinted
	}
	f.printed = true

	out, err := json.Marshal(data)
	if err != nil {
		marshalErr := apperrors.Internal(err, "marshal result")
		if werr := f.write(mustMarshal(NewErrorEnvelope(marshalErr, f.includeStack))); werr != nil {
			return werr
		}
		return marshalErr
	}
	return f.write(out)
}

// PrintError 输出错误信封
func (f *Formatter) PrintError(err error) error {
	f.mu.Lock()
	include := f.includeStack
	f.mu.Unlock()
	return f.Print(NewErrorEnvelope(err, include))
}

func (f *Formatter) write(line []byte) error {
	line = append(line, '\n')
	if _, err := f.writer.Write(line); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

// mustMarshal 仅用于字段全部为字符串的信封，不会失败
func mustMarshal(v interface{}) []byte {
	out, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"success":false,"error":"internal error","errorType":"InternalError"}`)
	}
	return out
}
