// Package wallet provides the signing identity used to authorize mutating contract calls.
package wallet

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/weisyn/attendance-cli/client/core/apperrors"
)

// wellKnownDevAccounts 公开的本地开发网络账户（hardhat/anvil 默认助记词派生）
//
// 这些私钥随开发工具公开发布，任何人都可以用它们签名。
var wellKnownDevAccounts = map[common.Address]struct{}{
	common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"): {},
	common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"): {},
	common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"): {},
	common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906"): {},
	common.HexToAddress("0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"): {},
}

// Signer 签名身份
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner 从十六进制私钥创建签名器
//
// 未配置私钥属于配置错误；私钥格式错误属于签名身份构建失败。错误信息中不包含私钥内容。
func NewSigner(hexKey string) (*Signer, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, apperrors.Configuration("signing key not configured: set PRIVATE_KEY or KEYSTORE_FILE")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X"))
	if err != nil {
		return nil, apperrors.Connectivity(nil, "invalid PRIVATE_KEY: expected 32-byte hex secp256k1 key")
	}

	return &Signer{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address 签名地址
func (s *Signer) Address() common.Address {
	return s.address
}

// Transactor 为指定链创建交易签名选项
func (s *Signer) Transactor(chainID *big.Int) (*bind.TransactOpts, error) {
	if chainID == nil || chainID.Sign() <= 0 {
		return nil, apperrors.Configuration("invalid chain id %v", chainID)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, chainID)
	if err != nil {
		return nil, apperrors.Connectivity(err, "create transactor")
	}
	return opts, nil
}

// IsWellKnownDevAccount 是否为公开的开发账户
func (s *Signer) IsWellKnownDevAccount() bool {
	return IsWellKnownDevAccount(s.address)
}

// IsWellKnownDevAccount 判断地址是否为公开的开发账户
func IsWellKnownDevAccount(addr common.Address) bool {
	_, ok := wellKnownDevAccounts[addr]
	return ok
}
