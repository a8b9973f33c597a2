package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// defaultEnvFile 工作目录下默认读取的 dotenv 文件
const defaultEnvFile = ".env"

// Environment 进程环境变量
//
// 未设置 envDefault 的字段允许被静态配置文件补充。
type Environment struct {
	RPCURL          string        `env:"RPC_URL"`
	PrivateKey      string        `env:"PRIVATE_KEY"`
	KeystoreFile    string        `env:"KEYSTORE_FILE"`
	KeystorePass    string        `env:"KEYSTORE_PASSWORD"`
	ContractAddress string        `env:"CONTRACT_ADDRESS"`
	ChainID         uint64        `env:"CHAIN_ID"`
	GasLimit        uint64        `env:"GAS_LIMIT"`
	GasPrice        string        `env:"GAS_PRICE"`
	Network         string        `env:"NETWORK"`
	DeploymentFile  string        `env:"DEPLOYMENT_FILE"`
	ProfileFile     string        `env:"ATTENDANCE_CONFIG"`
	Confirmation    string        `env:"TX_CONFIRMATION"`
	RPCTimeout      time.Duration `env:"RPC_TIMEOUT"`
	ConfirmTimeout  time.Duration `env:"CONFIRM_TIMEOUT"`

	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string `env:"LOG_FILE"`
	IncludeStack bool   `env:"RESULT_INCLUDE_STACK" envDefault:"true"`
}

// environ 读取进程环境变量为 map
func environ() map[string]string {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

// mergeDotenv 读取 dotenv 文件，仅补充 vars 中不存在的键
//
// explicit 为 false 时文件不存在不算错误。
func mergeDotenv(vars map[string]string, path string, explicit bool) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for k, v := range values {
		if _, exists := vars[k]; !exists {
			vars[k] = v
		}
	}
	return nil
}

// rawEnvKeys 不做清理的变量，值按原样使用
var rawEnvKeys = map[string]bool{"KEYSTORE_PASSWORD": true}

// parseEnvironment 清理变量值后解析为 Environment
func parseEnvironment(vars map[string]string) (*Environment, error) {
	cleaned := lo.MapValues(vars, func(v, k string) string {
		if rawEnvKeys[k] {
			return v
		}
		return Sanitize(v)
	})

	var e Environment
	if err := env.ParseWithOptions(&e, env.Options{Environment: cleaned}); err != nil {
		return nil, err
	}
	e.Confirmation = strings.ToLower(e.Confirmation)

	return &e, nil
}
