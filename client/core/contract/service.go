package contract

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/weisyn/attendance-cli/client/core/config"
)

// Backend 合约调用所需的节点能力
//
// *ethclient.Client 满足该接口。
type Backend interface {
	bind.ContractBackend
	ReceiptReader
}

// Options 调用参数
type Options struct {
	GasLimit       uint64
	GasPrice       *big.Int // nil 表示由节点建议
	CallTimeout    time.Duration
	Confirmation   config.ConfirmMode
	ConfirmTimeout time.Duration
}

// EthAttendance 基于 go-ethereum 绑定的考勤合约客户端
type EthAttendance struct {
	address    common.Address
	contract   *bind.BoundContract
	transactor *bind.TransactOpts
	waiter     *receiptWaiter
	opts       Options
	logger     *zap.Logger
}

var _ Attendance = (*EthAttendance)(nil)

// NewEthAttendance 创建合约客户端
func NewEthAttendance(address common.Address, backend Backend, transactor *bind.TransactOpts, opts Options, logger *zap.Logger) (*EthAttendance, error) {
	if transactor == nil {
		return nil, errors.New("transactor is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := ABI()
	if err != nil {
		return nil, errors.Wrap(err, "parse attendance abi")
	}

	return &EthAttendance{
		address:    address,
		contract:   bind.NewBoundContract(address, parsed, backend, backend, backend),
		transactor: transactor,
		waiter:     newReceiptWaiter(backend, logger),
		opts:       opts,
		logger:     logger,
	}, nil
}

// Address 合约地址
func (e *EthAttendance) Address() common.Address {
	return e.address
}

// ========== 写操作 ==========

func (e *EthAttendance) CreateSession(ctx context.Context, sessionCode, classID string, durationMinutes uint64) (*Submission, error) {
	return e.transact(ctx, MethodCreateSession, sessionCode, classID, new(big.Int).SetUint64(durationMinutes))
}

func (e *EthAttendance) MarkAttendance(ctx context.Context, sessionCode, studentID, classID string) (*Submission, error) {
	return e.transact(ctx, MethodMarkAttendance, sessionCode, studentID, classID)
}

func (e *EthAttendance) AuthorizeTeacher(ctx context.Context, teacher common.Address) (*Submission, error) {
	return e.transact(ctx, MethodAuthorizeTeacher, teacher)
}

func (e *EthAttendance) RegisterStudent(ctx context.Context, studentID string, student common.Address) (*Submission, error) {
	return e.transact(ctx, MethodRegisterStudent, studentID, student)
}

// ========== 只读查询 ==========

func (e *EthAttendance) IsSessionValid(ctx context.Context, sessionCode string) (bool, error) {
	out, err := e.call(ctx, MethodIsSessionValid, sessionCode)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (e *EthAttendance) HasAttended(ctx context.Context, sessionCode, studentID string) (bool, error) {
	out, err := e.call(ctx, MethodHasAttended, sessionCode, studentID)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (e *EthAttendance) GetAttendanceRecord(ctx context.Context, sessionCode, studentID string) (*Record, error) {
	out, err := e.call(ctx, MethodGetAttendanceRecord, sessionCode, studentID)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(Record)).(*Record), nil
}

func (e *EthAttendance) GetTotalRecords(ctx context.Context) (*big.Int, error) {
	out, err := e.call(ctx, MethodGetTotalRecords)
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

func (e *EthAttendance) GetRecordByIndex(ctx context.Context, index *big.Int) (*Record, error) {
	out, err := e.call(ctx, MethodGetRecordByIndex, index)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(Record)).(*Record), nil
}

// call 执行只读调用，单次调用受 CallTimeout 约束
func (e *EthAttendance) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	ctx, cancel := e.withTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	var out []interface{}
	opts := &bind.CallOpts{Context: ctx, From: e.transactor.From}
	if err := e.contract.Call(opts, &out, method, args...); err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("call %s: empty result", method)
	}

	e.logger.Debug("contract call",
		zap.String("method", method),
		zap.String("contract", e.address.Hex()))
	return out, nil
}

// transact 签名并提交交易，wait 模式下等待回执
func (e *EthAttendance) transact(ctx context.Context, method string, args ...interface{}) (*Submission, error) {
	submitCtx, cancel := e.withTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	opts := *e.transactor
	opts.Context = submitCtx
	opts.GasLimit = e.opts.GasLimit
	if e.opts.GasPrice != nil {
		opts.GasPrice = new(big.Int).Set(e.opts.GasPrice)
	}

	tx, err := e.contract.Transact(&opts, method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "send %s", method)
	}

	sub := &Submission{TxHash: tx.Hash()}
	e.logger.Info("transaction submitted",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("nonce", tx.Nonce()),
		zap.Uint64("gas_limit", tx.Gas()))

	if e.opts.Confirmation == config.ConfirmSubmit {
		return sub, nil
	}

	waitCtx, cancelWait := e.withTimeout(ctx, e.opts.ConfirmTimeout)
	defer cancelWait()

	receipt, err := e.waiter.wait(waitCtx, tx.Hash())
	if err != nil {
		return nil, errors.Wrapf(err, "wait for %s transaction %s", method, tx.Hash().Hex())
	}

	sub.Confirmed = true
	sub.BlockHash = receipt.BlockHash
	sub.GasUsed = receipt.GasUsed
	sub.Status = receipt.Status
	if receipt.BlockNumber != nil {
		sub.BlockNumber = receipt.BlockNumber.Uint64()
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errors.Errorf("%s transaction %s reverted in block %d", method, tx.Hash().Hex(), sub.BlockNumber)
	}

	e.logger.Info("transaction confirmed",
		zap.String("method", method),
		zap.String("tx", tx.Hash().Hex()),
		zap.Uint64("block", sub.BlockNumber),
		zap.Uint64("gas_used", sub.GasUsed))
	return sub, nil
}

func (e *EthAttendance) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
