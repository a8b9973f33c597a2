package contract

import (
	"context"
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/weisyn/attendance-cli/client/core/apperrors"
	"github.com/weisyn/attendance-cli/client/core/config"
	"github.com/weisyn/attendance-cli/client/core/transport"
	"github.com/weisyn/attendance-cli/client/core/wallet"
)

// 本地开发链 ID（hardhat/anvil 默认值）
var localChainIDs = map[uint64]bool{1337: true, 31337: true}

// Factory 延迟创建合约客户端
//
// 第一次调用 Attendance 时才读取地址、私钥并连接节点，之后复用同一个实例。
// 不需要访问链的调用（未知 action、字段校验失败）不会触发连接。
type Factory struct {
	cfg    *config.Config
	dial   transport.DialFunc
	logger *zap.Logger

	once   sync.Once
	node   transport.Node
	client Attendance
	err    error
}

// NewFactory 创建工厂，dial 为 nil 时使用 transport.Dial
func NewFactory(cfg *config.Config, dial transport.DialFunc, logger *zap.Logger) *Factory {
	if dial == nil {
		dial = transport.Dial
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cfg: cfg, dial: dial, logger: logger.Named("contract")}
}

// Attendance 返回合约客户端，失败结果同样会被缓存
func (f *Factory) Attendance(ctx context.Context) (Attendance, error) {
	f.once.Do(func() {
		f.client, f.err = f.build(ctx)
	})
	return f.client, f.err
}

// Close 关闭节点连接
func (f *Factory) Close() {
	if f.node != nil {
		f.node.Close()
	}
}

func (f *Factory) build(ctx context.Context) (Attendance, error) {
	cfg := f.cfg
	if cfg.RPCURL == "" {
		return nil, apperrors.Configuration("RPC endpoint not configured: set RPC_URL")
	}

	signer, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}

	addr, err := cfg.ResolveContractAddress()
	if err != nil {
		return nil, err
	}
	f.logger.Info("contract address resolved",
		zap.String("address", addr.Address.Hex()),
		zap.String("source", string(addr.Source)),
		zap.String("origin", addr.Origin))

	dialCtx, cancel := context.WithTimeout(ctx, cfg.RPCTimeout)
	defer cancel()

	endpoint := transport.Redact(cfg.RPCURL)
	f.logger.Debug("connecting to node", zap.String("endpoint", endpoint))
	node, err := f.dial(dialCtx, cfg.RPCURL)
	if err != nil {
		return nil, apperrors.Connectivity(err, "connect to node %s", endpoint)
	}
	f.node = node

	chainID := cfg.ChainID
	if chainID == nil {
		if chainID, err = node.ChainID(dialCtx); err != nil {
			return nil, apperrors.Connectivity(err, "query chain id from %s", endpoint)
		}
	}

	if signer.IsWellKnownDevAccount() && !isLocalChain(chainID) {
		f.logger.Warn("signing with a publicly known development key on a non-local chain",
			zap.String("signer", signer.Address().Hex()),
			zap.String("chain_id", chainID.String()))
	}

	transactor, err := signer.Transactor(chainID)
	if err != nil {
		return nil, err
	}

	client, err := NewEthAttendance(addr.Address, node, transactor, Options{
		GasLimit:       cfg.GasLimit,
		GasPrice:       cfg.GasPrice,
		CallTimeout:    cfg.RPCTimeout,
		Confirmation:   cfg.Confirmation,
		ConfirmTimeout: cfg.ConfirmTimeout,
	}, f.logger)
	if err != nil {
		return nil, apperrors.Connectivity(err, "bind attendance contract")
	}

	f.logger.Info("attendance client ready",
		zap.String("contract", client.Address().Hex()),
		zap.String("signer", signer.Address().Hex()),
		zap.String("chain_id", chainID.String()),
		zap.String("confirmation", string(cfg.Confirmation)))
	return client, nil
}

// newSigner PRIVATE_KEY 优先，其次 KEYSTORE_FILE
func newSigner(cfg *config.Config) (*wallet.Signer, error) {
	if cfg.PrivateKey == "" && cfg.KeystoreFile != "" {
		return wallet.NewSignerFromKeystore(cfg.KeystoreFile, cfg.KeystorePassword)
	}
	return wallet.NewSigner(cfg.PrivateKey)
}

func isLocalChain(chainID *big.Int) bool {
	return chainID.IsUint64() && localChainIDs[chainID.Uint64()]
}
