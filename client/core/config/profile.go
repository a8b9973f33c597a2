// Package config resolves attendance-cli configuration from the environment, an
// optional dotenv file, an optional static profile file and the deployment descriptor.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Profile 静态配置文件（JSON）
//
// 所有字段可选，环境变量中的同名配置优先。私钥不允许写入静态配置。
type Profile struct {
	Network         string `json:"network,omitempty"`          // 网络名称: localhost/sepolia/...
	RPCURL          string `json:"rpc_url,omitempty"`          // 节点 JSON-RPC 地址
	ChainID         uint64 `json:"chain_id,omitempty"`         // 链ID，0 表示向节点查询
	ContractAddress string `json:"contract_address,omitempty"` // 合约地址
	DeploymentFile  string `json:"deployment_file,omitempty"`  // 部署描述文件，相对路径基于配置文件目录

	// 交易默认值
	DefaultGasLimit uint64 `json:"default_gas_limit,omitempty"`
	GasPrice        string `json:"gas_price,omitempty"` // wei，设置后使用 legacy 交易

	// 网络等待
	Timeout        Duration `json:"timeout,omitempty"`         // 单次 RPC 超时
	ConfirmTimeout Duration `json:"confirm_timeout,omitempty"` // 等待交易确认的超时
	Confirmation   string   `json:"confirmation,omitempty"`    // wait|submit

	path string
}

// Duration 时间duration(支持JSON序列化)
type Duration time.Duration

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(dur)
	return nil
}

// LoadProfile 读取静态配置文件
func LoadProfile(path string) (*Profile, error) {
	//nolint:gosec // G304: 路径来自命令行参数或环境变量，由调用方控制
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling profile %s: %w", path, err)
	}
	p.path = path

	return &p, nil
}

// Path 配置文件路径
func (p *Profile) Path() string {
	return p.path
}

// resolveRelative 将配置文件中的相对路径解析为基于配置文件目录的路径
func (p *Profile) resolveRelative(path string) string {
	if path == "" || filepath.IsAbs(path) || p.path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(p.path), path)
}
