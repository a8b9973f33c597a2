package main

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/weisyn/attendance-cli/client/core/actions"
	"github.com/weisyn/attendance-cli/client/core/apperrors"
	"github.com/weisyn/attendance-cli/client/core/config"
	"github.com/weisyn/attendance-cli/client/core/contract"
	"github.com/weisyn/attendance-cli/client/core/dispatch"
	"github.com/weisyn/attendance-cli/client/core/output"
	"github.com/weisyn/attendance-cli/client/core/transport"
	"github.com/weisyn/attendance-cli/internal/infrastructure/log"
)

const commandName = "attendance-cli"

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile string        // 静态配置文件
	EnvFile    string        // dotenv 文件
	Confirm    string        // 确认模式
	Timeout    time.Duration // 单次 RPC 超时
	LogLevel   string        // 日志级别
	LogFile    string        // 日志文件
	Version    bool          // 输出版本描述
}

// cli 单次命令行调用
type cli struct {
	flags     GlobalFlags
	stderr    io.Writer
	formatter *output.Formatter
	environ   map[string]string // nil 表示读取进程环境变量
	dial      transport.DialFunc

	code int
}

// Execute 执行命令行并返回退出码
//
// 结果 JSON 写入 stdout，cobra 的帮助和用法文本以及全部日志写入 stderr。
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, args, stdout, stderr, nil, transport.Dial)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string, dial transport.DialFunc) int {
	c := &cli{
		stderr:    stderr,
		formatter: output.NewFormatter(stdout),
		environ:   environ,
		dial:      dial,
	}
	c.formatter.SetIncludeStack(true)

	// nil 会让 cobra 回退到 os.Args
	if args == nil {
		args = []string{}
	}
	cmd := c.rootCommand()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil && !c.formatter.Printed() {
		return c.failEarly(err)
	}
	return c.code
}

func (c *cli) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   commandName + " <action> [json_payload]",
		Short: "考勤合约命令行桥接工具",
		Long: `attendance-cli - 考勤合约的单次调用命令行桥接

每次调用执行一个 action，并在 stdout 输出恰好一个 JSON 对象：
  成功: {"success": true, ...}
  失败: {"success": false, "error": "...", "errorType": "..."}

诊断日志只写入 stderr。配置来自环境变量（RPC_URL、PRIVATE_KEY、
CONTRACT_ADDRESS 等）、dotenv 文件和 --config 指定的 JSON 配置文件。`,
		Example: `  attendance-cli createSession '{"sessionCode":"S1","classId":"C1"}'
  attendance-cli getTotalRecords`,
		Args:          cobra.MaximumNArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          c.run,
	}

	cmd.SetOut(c.stderr)
	cmd.SetErr(c.stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.Validation("", "%v", err)
	})
	cmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		_, _ = io.WriteString(c.stderr, cmd.UsageString())
		c.printDescriptor()
	})

	f := cmd.Flags()
	f.StringVar(&c.flags.ConfigFile, "config", "", "JSON 配置文件路径 (也可使用 ATTENDANCE_CONFIG)")
	f.StringVar(&c.flags.EnvFile, "env-file", "", "dotenv 文件路径 (默认读取当前目录下的 .env)")
	f.StringVar(&c.flags.Confirm, "confirm", "", "写操作确认模式: wait|submit (覆盖 TX_CONFIRMATION)")
	f.DurationVar(&c.flags.Timeout, "timeout", 0, "单次 RPC 调用超时 (覆盖 RPC_TIMEOUT)")
	f.StringVar(&c.flags.LogLevel, "log-level", "", "日志级别: debug|info|warn|error")
	f.StringVar(&c.flags.LogFile, "log-file", "", "额外写入 JSON 格式的轮转日志文件")
	f.BoolVar(&c.flags.Version, "version", false, "输出版本信息")

	return cmd
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	if c.flags.Version {
		c.printDescriptor()
		return nil
	}
	if len(args) == 0 {
		return apperrors.Validation("", "missing action (expected one of: %s)", strings.Join(actions.Names(), ", "))
	}

	payload := ""
	if len(args) > 1 {
		payload = args[1]
	}

	// 未知 action 和字段错误不依赖配置
	if _, _, err := actions.Prepare(args[0], payload); err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{
		EnvFile:      c.flags.EnvFile,
		ProfileFile:  c.flags.ConfigFile,
		Confirmation: c.flags.Confirm,
		RPCTimeout:   c.flags.Timeout,
		LogLevel:     c.flags.LogLevel,
		LogFile:      c.flags.LogFile,
		Environ:      c.environ,
	})
	if err != nil {
		return err
	}
	c.formatter.SetIncludeStack(cfg.IncludeStack)

	logger, err := log.New(cfg.Log, c.stderr)
	if err != nil {
		return apperrors.ConfigurationWrap(err, "open log file")
	}
	defer func() { _ = logger.Sync() }()

	factory := contract.NewFactory(cfg, c.dial, logger)
	defer factory.Close()

	d := dispatch.New(factory, c.formatter, logger)
	logger.Debug("invocation started",
		zap.String("invocation", d.InvocationID()),
		zap.String("network", cfg.Network),
		zap.String("config_file", cfg.ProfilePath()))
	c.code = d.Dispatch(cmd.Context(), args[0], payload)
	return nil
}

// failEarly action 执行之前的失败（参数、标志、配置）
func (c *cli) failEarly(err error) int {
	logger, lerr := log.New(log.DefaultOptions(), c.stderr)
	if lerr != nil {
		logger = log.Nop()
	}
	defer func() { _ = logger.Sync() }()

	if _, ok := lo.ErrorsAs[*apperrors.Error](err); !ok {
		err = apperrors.Validation("", "%v", err)
	}
	return dispatch.New(nil, c.formatter, logger).Fail(err)
}

// Descriptor --help/--version 输出的 JSON 描述
type Descriptor struct {
	Success bool         `json:"success"`
	Name    string       `json:"name"`
	Version string       `json:"version"`
	Usage   string       `json:"usage"`
	Actions []ActionInfo `json:"actions"`
}

// ActionInfo 单个 action 的字段说明
type ActionInfo struct {
	Name     string   `json:"name"`
	Mutating bool     `json:"mutating"`
	Required []string `json:"required"`
	Optional []string `json:"optional,omitempty"`
}

func (c *cli) printDescriptor() {
	d := Descriptor{
		Success: true,
		Name:    commandName,
		Version: version,
		Usage:   commandName + " <action> [json_payload]",
		Actions: lo.Map(actions.All(), func(a actions.Action, _ int) ActionInfo {
			return ActionInfo{
				Name:     a.Name,
				Mutating: a.Mutating,
				Required: lo.Ternary(a.Required == nil, []string{}, a.Required),
				Optional: a.Optional,
			}
		}),
	}
	if err := c.formatter.Print(d); err != nil {
		_, _ = io.WriteString(c.stderr, err.Error()+"\n")
	}
}
