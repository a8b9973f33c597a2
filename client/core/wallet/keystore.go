package wallet

import (
	"os"

	"github.com/ethereum/go-ethereum/accounts/keystore"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
)

// NewSignerFromKeystore 从加密的 keystore 文件（Web3 Secret Storage v3）加载签名器
//
// 文件不可读属于配置错误；解密失败（密码错误或文件损坏）属于签名身份构建失败。
func NewSignerFromKeystore(path, password string) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigurationWrap(err, "read keystore file %s", path)
	}

	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, apperrors.Connectivity(err, "decrypt keystore file %s", path)
	}

	return &Signer{
		key:     key.PrivateKey,
		address: key.Address,
	}, nil
}
