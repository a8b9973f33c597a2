package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/weisyn/attendance-cli/client/core/apperrors"
)

// AddressSource 合约地址来源
type AddressSource string

const (
	SourceEnv        AddressSource = "env"
	SourceProfile    AddressSource = "config"
	SourceDeployment AddressSource = "deployment"
)

// fallbackDeploymentFile 未按网络拆分的部署描述文件
const fallbackDeploymentFile = "deployment.json"

// descriptorKeys 部署描述文件中可能记录合约地址的键，按顺序查找
var descriptorKeys = []string{"contractAddress", "address", "attendance", "Attendance", "AttendanceContract"}

// ContractAddress 解析结果
type ContractAddress struct {
	Address common.Address
	Source  AddressSource
	Origin  string // 部署描述文件路径（仅 SourceDeployment）
}

// ResolveContractAddress 按优先级解析合约地址
//
// 环境变量 > 静态配置 > 部署描述文件。任何来源都没有时返回 ConfigurationError。
func (c *Config) ResolveContractAddress() (*ContractAddress, error) {
	if c.envContractAddress != "" {
		return checkedAddress(c.envContractAddress, SourceEnv, "")
	}
	if c.profileContractAddress != "" {
		return checkedAddress(c.profileContractAddress, SourceProfile, c.profilePath)
	}

	for _, path := range c.DeploymentCandidates() {
		raw, err := readDescriptor(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path != c.deploymentFile {
				continue
			}
			return nil, apperrors.ConfigurationWrap(err, "read deployment descriptor %s", path)
		}
		if raw == "" {
			return nil, apperrors.Configuration("deployment descriptor %s does not record a contract address", path)
		}
		return checkedAddress(raw, SourceDeployment, path)
	}

	return nil, apperrors.Configuration(
		"contract address not configured: set CONTRACT_ADDRESS, contract_address in the config file, or provide a deployment descriptor")
}

// DeploymentCandidates 部署描述文件候选路径
//
// 显式配置时只使用该路径；否则依次尝试 deployments/<network>.json 和 deployment.json。
func (c *Config) DeploymentCandidates() []string {
	if c.deploymentFile != "" {
		return []string{c.deploymentFile}
	}
	return []string{
		filepath.Join("deployments", c.Network+".json"),
		fallbackDeploymentFile,
	}
}

func checkedAddress(raw string, source AddressSource, origin string) (*ContractAddress, error) {
	raw = Sanitize(raw)
	if !common.IsHexAddress(raw) {
		return nil, apperrors.Configuration("invalid contract address %q from %s", raw, source)
	}
	return &ContractAddress{
		Address: common.HexToAddress(raw),
		Source:  source,
		Origin:  origin,
	}, nil
}

// readDescriptor 读取部署描述文件中的合约地址
func readDescriptor(path string) (string, error) {
	//nolint:gosec // G304: 部署描述文件路径由配置决定
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("decode descriptor: %w", err)
	}

	for _, key := range descriptorKeys {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		if addr := addressFromValue(raw); addr != "" {
			return addr, nil
		}
	}
	return "", nil
}

// addressFromValue 值可以是字符串，或带 address/contractAddress 字段的对象
func addressFromValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var nested struct {
		Address         string `json:"address"`
		ContractAddress string `json:"contractAddress"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return firstNonEmpty(nested.Address, nested.ContractAddress)
	}
	return ""
}
