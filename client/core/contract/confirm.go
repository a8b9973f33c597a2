package contract

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ReceiptReader 查询交易回执
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

var errReceiptPending = errors.New("receipt not available yet")

// receiptWaiter 按指数退避轮询回执，直到拿到回执或 ctx 结束
type receiptWaiter struct {
	reader          ReceiptReader
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *zap.Logger
}

func newReceiptWaiter(reader ReceiptReader, logger *zap.Logger) *receiptWaiter {
	return &receiptWaiter{
		reader:          reader,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     5 * time.Second,
		logger:          logger,
	}
}

func (w *receiptWaiter) wait(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.initialInterval
	b.MaxInterval = w.maxInterval
	b.MaxElapsedTime = 0

	var receipt *types.Receipt
	op := func() error {
		r, err := w.reader.TransactionReceipt(ctx, hash)
		switch {
		case errors.Is(err, ethereum.NotFound), err == nil && r == nil:
			return errReceiptPending
		case err != nil:
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		receipt = r
		return nil
	}

	notify := func(err error, next time.Duration) {
		if errors.Is(err, errReceiptPending) {
			w.logger.Debug("waiting for receipt", zap.String("tx", hash.Hex()), zap.Duration("retry_in", next))
			return
		}
		w.logger.Warn("receipt query failed", zap.String("tx", hash.Hex()), zap.Error(err), zap.Duration("retry_in", next))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "transaction not confirmed in time")
		}
		return nil, err
	}
	return receipt, nil
}
