package watcher

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/evmstate/rpcclient"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestApplyTransactionSuccessfulTransferDebitsSenderCreditsReceiver(t *testing.T) {
	srv, _ := codeStubServer(t, "0x")
	defer srv.Close()
	client := rpcclient.New(srv.URL, nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()
	cache := New(client)

	var from, to common.Address
	from[0], to[0] = 1, 2

	tx := types.NewTx(&types.LegacyTx{Nonce: 0, GasPrice: big.NewInt(10), Gas: 21000, To: &to, Value: big.NewInt(1000)})
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, GasUsed: 21000}
	watched := map[common.Address]bool{from: true, to: true}

	acc := newAddressAccumulator()
	require.NoError(t, ApplyTransaction(context.Background(), acc, tx, from, receipt, nil, watched, cache, nil, testLogger()))

	fromDelta := acc.entries[from]
	toDelta := acc.entries[to]
	require.NotNil(t, fromDelta)
	require.NotNil(t, toDelta)

	assert.Equal(t, uint32(1), fromDelta.NonceDelta)
	assert.Equal(t, uint256.NewInt(210000), fromDelta.FeePaid)
	assert.Equal(t, uint256.NewInt(211000), fromDelta.DeltaMinus, "fee + value")
	assert.Equal(t, uint256.NewInt(1000), toDelta.DeltaPlus)
}

func TestApplyTransactionRevertedTxChargesFeeNotValue(t *testing.T) {
	srv, _ := codeStubServer(t, "0x")
	defer srv.Close()
	client := rpcclient.New(srv.URL, nil)
	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()
	cache := New(client)

	var from, to common.Address
	from[0], to[0] = 1, 2

	tx := types.NewTx(&types.LegacyTx{Nonce: 3, GasPrice: big.NewInt(10), Gas: 21000, To: &to, Value: big.NewInt(1000)})
	receipt := &types.Receipt{Status: types.ReceiptStatusFailed, GasUsed: 21000}
	watched := map[common.Address]bool{from: true, to: true}

	acc := newAddressAccumulator()
	require.NoError(t, ApplyTransaction(context.Background(), acc, tx, from, receipt, nil, watched, cache, nil, testLogger()))

	fromDelta := acc.entries[from]
	require.NotNil(t, fromDelta)
	assert.Equal(t, uint256.NewInt(210000), fromDelta.FeePaid)
	assert.Equal(t, uint256.NewInt(210000), fromDelta.DeltaMinus, "only the fee, a revert never moves value")
	assert.Nil(t, acc.entries[to], "a reverted tx's intended receiver is never credited")
}

func TestApplyTransactionInternalCreditSkipsRevertedSibling(t *testing.T) {
	var from, contract, good, bad common.Address
	from[0], contract[0], good[0], bad[0] = 1, 2, 3, 4

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    0,
		GasPrice: big.NewInt(1),
		Gas:      100000,
		To:       &contract,
		Value:    big.NewInt(0),
		Data:     []byte{0x01}, // non-empty: this is a contract call, not a plain transfer
	})
	receipt := &types.Receipt{Status: types.ReceiptStatusSuccessful, GasUsed: 50000}
	watched := map[common.Address]bool{from: true, good: true, bad: true}

	trace := &rpcclient.CallFrame{
		Type: "CALL",
		To:   contract,
		Calls: []rpcclient.CallFrame{
			{Type: "CALL", To: good, Value: bigValue(777)},
			{Type: "CALL", To: bad, Value: bigValue(999), Error: "execution reverted"},
		},
	}

	acc := newAddressAccumulator()
	require.NoError(t, ApplyTransaction(context.Background(), acc, tx, from, receipt, nil, watched, New(nil), trace, testLogger()))

	goodDelta := acc.entries[good]
	require.NotNil(t, goodDelta)
	assert.Equal(t, uint256.NewInt(777), goodDelta.DeltaPlus)
	assert.Nil(t, acc.entries[bad], "the reverted sibling frame must not be credited")
}
