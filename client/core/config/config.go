package config

import (
	"math/big"
	"time"

	"github.com/samber/lo"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
	"github.com/weisyn/attendance-cli/internal/infrastructure/log"
)

// ConfirmMode 写操作的确认策略
type ConfirmMode string

const (
	// ConfirmWait 提交后等待回执，结果包含区块信息
	ConfirmWait ConfirmMode = "wait"
	// ConfirmSubmit 提交后立即返回，调用方自行轮询确认
	ConfirmSubmit ConfirmMode = "submit"
)

// 默认值
const (
	DefaultNetwork        = "localhost"
	DefaultGasLimit       = uint64(500000)
	DefaultRPCTimeout     = 30 * time.Second
	DefaultConfirmTimeout = 2 * time.Minute
	DefaultConfirmation   = ConfirmWait
)

// LoadOptions 命令行覆盖项
type LoadOptions struct {
	EnvFile      string        // --env-file，空表示尝试默认 .env
	ProfileFile  string        // --config
	Confirmation string        // --confirm
	RPCTimeout   time.Duration // --timeout
	LogLevel     string        // --log-level
	LogFile      string        // --log-file

	// Environ 替代进程环境变量（测试用），nil 表示读取 os.Environ
	Environ map[string]string
}

// Config 解析后的运行配置
//
// RPCURL/PrivateKey 可能为空：缺失只在首次建立客户端时报错。
type Config struct {
	Network    string
	RPCURL     string
	PrivateKey string
	ChainID    *big.Int // nil 表示向节点查询

	// 未设置 PrivateKey 时使用的加密 keystore 文件
	KeystoreFile     string
	KeystorePassword string

	GasLimit uint64
	GasPrice *big.Int // nil 表示由节点建议

	Confirmation   ConfirmMode
	RPCTimeout     time.Duration
	ConfirmTimeout time.Duration

	IncludeStack bool
	Log          *log.Options

	// 合约地址候选来源，按优先级解析
	envContractAddress     string
	profileContractAddress string
	deploymentFile         string
	profilePath            string
}

// Load 加载配置
//
// 顺序：进程环境变量 > dotenv 文件 > 静态配置文件 > 默认值；命令行覆盖项最高。
func Load(opts LoadOptions) (*Config, error) {
	vars := lo.Assign(opts.Environ)
	if opts.Environ == nil {
		vars = environ()
	}

	envFile, explicit := opts.EnvFile, opts.EnvFile != ""
	if !explicit {
		envFile = defaultEnvFile
	}
	if err := mergeDotenv(vars, envFile, explicit); err != nil {
		return nil, apperrors.ConfigurationWrap(err, "load env file %s", envFile)
	}

	e, err := parseEnvironment(vars)
	if err != nil {
		return nil, apperrors.ConfigurationWrap(err, "parse environment")
	}

	profile := &Profile{}
	profilePath := firstNonEmpty(opts.ProfileFile, e.ProfileFile)
	if profilePath != "" {
		if profile, err = LoadProfile(profilePath); err != nil {
			return nil, apperrors.ConfigurationWrap(err, "load config file")
		}
	}

	cfg := &Config{
		Network:          firstNonEmpty(e.Network, profile.Network, DefaultNetwork),
		RPCURL:           firstNonEmpty(e.RPCURL, Sanitize(profile.RPCURL)),
		PrivateKey:       e.PrivateKey,
		KeystoreFile:     e.KeystoreFile,
		KeystorePassword: e.KeystorePass,
		GasLimit:         firstNonZero(e.GasLimit, profile.DefaultGasLimit, DefaultGasLimit),
		IncludeStack:     e.IncludeStack,

		envContractAddress:     e.ContractAddress,
		profileContractAddress: Sanitize(profile.ContractAddress),
		deploymentFile:         firstNonEmpty(e.DeploymentFile, profile.resolveRelative(profile.DeploymentFile)),
		profilePath:            profile.Path(),
	}

	if chainID := firstNonZero(e.ChainID, profile.ChainID); chainID != 0 {
		cfg.ChainID = new(big.Int).SetUint64(chainID)
	}

	if raw := firstNonEmpty(e.GasPrice, Sanitize(profile.GasPrice)); raw != "" {
		price, ok := new(big.Int).SetString(raw, 10)
		if !ok || price.Sign() <= 0 {
			return nil, apperrors.Configuration("invalid gas price %q: expected a positive integer amount of wei", raw)
		}
		cfg.GasPrice = price
	}

	mode := ConfirmMode(firstNonEmpty(opts.Confirmation, e.Confirmation, profile.Confirmation, string(DefaultConfirmation)))
	if mode != ConfirmWait && mode != ConfirmSubmit {
		return nil, apperrors.Configuration("invalid confirmation mode %q: expected %q or %q", mode, ConfirmWait, ConfirmSubmit)
	}
	cfg.Confirmation = mode

	cfg.RPCTimeout = firstNonZero(opts.RPCTimeout, e.RPCTimeout, time.Duration(profile.Timeout), DefaultRPCTimeout)
	cfg.ConfirmTimeout = firstNonZero(e.ConfirmTimeout, time.Duration(profile.ConfirmTimeout), DefaultConfirmTimeout)
	if cfg.RPCTimeout < 0 || cfg.ConfirmTimeout < 0 {
		return nil, apperrors.Configuration("timeouts must not be negative")
	}

	logOpts := log.DefaultOptions()
	logOpts.Level = firstNonEmpty(opts.LogLevel, e.LogLevel)
	logOpts.FilePath = firstNonEmpty(opts.LogFile, e.LogFile)
	if !log.ValidLevel(logOpts.Level) {
		return nil, apperrors.Configuration("invalid log level %q", logOpts.Level)
	}
	cfg.Log = logOpts

	return cfg, nil
}

// ProfilePath 已加载的静态配置文件路径，未加载时为空
func (c *Config) ProfilePath() string {
	return c.profilePath
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero[T uint64 | time.Duration](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
