package contract

import (
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/weisyn/attendance-cli/client/core/config"
)

// hardhat 默认账户 #0，仅用于测试
const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

// fakeEth 进程内的最小节点，只实现合约客户端用到的 eth_* 方法
type fakeEth struct {
	mu sync.Mutex

	chainID *big.Int
	results map[string][]byte // 方法名 -> 已编码的返回值

	calls    [][]byte
	sent     []*types.Transaction
	polls    int
	pending  int    // 回执返回 null 的次数
	status   uint64 // 回执状态
	sendErr  string
	chainErr string
}

func newFakeEth() *fakeEth {
	return &fakeEth{
		chainID: big.NewInt(1337),
		results: map[string][]byte{},
		status:  types.ReceiptStatusSuccessful,
	}
}

func (f *fakeEth) ChainId() (*hexutil.Big, error) {
	if f.chainErr != "" {
		return nil, errors.New(f.chainErr)
	}
	return (*hexutil.Big)(f.chainID), nil
}

func (f *fakeEth) Call(args map[string]interface{}, block string) (hexutil.Bytes, error) {
	raw, ok := args["input"].(string)
	if !ok {
		raw, _ = args["data"].(string)
	}
	data, err := hexutil.Decode(raw)
	if err != nil {
		return nil, err
	}
	parsed, err := ABI()
	if err != nil {
		return nil, err
	}
	method, err := parsed.MethodById(data)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, data)
	out, ok := f.results[method.Name]
	if !ok {
		return nil, errors.Errorf("execution reverted: no result for %s", method.Name)
	}
	return out, nil
}

func (f *fakeEth) GetTransactionCount(addr common.Address, block string) (hexutil.Uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return hexutil.Uint64(len(f.sent)), nil
}

func (f *fakeEth) SendRawTransaction(raw hexutil.Bytes) (common.Hash, error) {
	if f.sendErr != "" {
		return common.Hash{}, errors.New(f.sendErr)
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, tx)
	return tx.Hash(), nil
}

func (f *fakeEth) GetTransactionReceipt(hash common.Hash) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.polls <= f.pending {
		return nil, nil
	}
	return map[string]interface{}{
		"transactionHash":   hash,
		"transactionIndex":  hexutil.Uint64(0),
		"blockHash":         common.HexToHash("0xb10c"),
		"blockNumber":       hexutil.Uint64(7),
		"status":            hexutil.Uint64(f.status),
		"cumulativeGasUsed": hexutil.Uint64(52000),
		"gasUsed":           hexutil.Uint64(52000),
		"logsBloom":         types.Bloom{},
		"logs":              []interface{}{},
	}, nil
}

func (f *fakeEth) lastSent(t *testing.T) *types.Transaction {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

// dialFake 启动进程内 RPC 服务并返回 ethclient
func dialFake(t *testing.T, fake *fakeEth) *ethclient.Client {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", fake))
	t.Cleanup(server.Stop)

	client := ethclient.NewClient(rpc.DialInProc(server))
	t.Cleanup(client.Close)
	return client
}

func newTestAttendance(t *testing.T, fake *fakeEth, mode config.ConfirmMode) *EthAttendance {
	t.Helper()
	key, err := crypto.HexToECDSA(devKey)
	require.NoError(t, err)
	transactor, err := bind.NewKeyedTransactorWithChainID(key, fake.chainID)
	require.NoError(t, err)

	e, err := NewEthAttendance(contractAddr, dialFake(t, fake), transactor, Options{
		GasLimit:       500000,
		GasPrice:       big.NewInt(1_000_000_000),
		CallTimeout:    5 * time.Second,
		Confirmation:   mode,
		ConfirmTimeout: 5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	e.waiter.initialInterval = time.Millisecond
	e.waiter.maxInterval = 5 * time.Millisecond
	return e
}

func packOutput(t *testing.T, method string, values ...interface{}) []byte {
	t.Helper()
	parsed, err := ABI()
	require.NoError(t, err)
	out, err := parsed.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

func packInput(t *testing.T, method string, args ...interface{}) []byte {
	t.Helper()
	parsed, err := ABI()
	require.NoError(t, err)
	data, err := parsed.Pack(method, args...)
	require.NoError(t, err)
	return data
}
