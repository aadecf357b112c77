package ledger_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"prodi/internal/domain/entity"
	"prodi/internal/infrastructure/ledger"
	"prodi/pkg/errcodes"
)

// fakeRPC serves canned answers and records what the ledger sent.
type fakeRPC struct {
	mu sync.Mutex

	balance    uint64
	sendErr    error
	statuses   []rpc.ConfirmationStatusType
	fallback   rpc.ConfirmationStatusType
	statusErr  any
	sent       []*solana.Transaction
	airdrops   []uint64
	statusCall int
}

func (f *fakeRPC) GetLatestBlockhash(context.Context, rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: solana.Hash{1, 2, 3}},
	}, nil
}

func (f *fakeRPC) SendTransactionWithOpts(
	_ context.Context,
	tx *solana.Transaction,
	opts rpc.TransactionOpts,
) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !opts.SkipPreflight {
		return solana.Signature{}, errors.New("preflight must be skipped")
	}

	f.sent = append(f.sent, tx)

	if f.sendErr != nil {
		return solana.Signature{}, f.sendErr
	}

	return tx.Signatures[0], nil
}

func (f *fakeRPC) GetSignatureStatuses(
	context.Context,
	bool,
	...solana.Signature,
) (*rpc.GetSignatureStatusesResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := rpc.ConfirmationStatusConfirmed
	if f.fallback != "" {
		status = f.fallback
	}

	if f.statusCall < len(f.statuses) {
		status = f.statuses[f.statusCall]
	}

	f.statusCall++

	return &rpc.GetSignatureStatusesResult{
		Value: []*rpc.SignatureStatusesResult{{ConfirmationStatus: status, Err: f.statusErr}},
	}, nil
}

func (f *fakeRPC) GetBalance(context.Context, solana.PublicKey, rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	return &rpc.GetBalanceResult{Value: f.balance}, nil
}

func (f *fakeRPC) RequestAirdrop(
	_ context.Context,
	_ solana.PublicKey,
	lamports uint64,
	_ rpc.CommitmentType,
) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.airdrops = append(f.airdrops, lamports)

	return solana.Signature{9}, nil
}

func newLedger(t *testing.T, client *fakeRPC, opts ...ledger.Option) *ledger.Ledger {
	t.Helper()

	signer, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	opts = append(opts, ledger.WithConfirmation(time.Millisecond, time.Second))

	return ledger.New(client, signer, opts...)
}

func dealMemo() entity.DealMemo {
	return entity.DealMemo{
		DealID:    "6f1c2a9e-0c1b-4c1e-9f5e-1c2d3e4f5a6b",
		Initiator: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Partner:   "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		TermsHash: "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
		TS:        1746093600,
	}
}

func TestRecordDealMemo(t *testing.T) {
	rq := require.New(t)

	client := &fakeRPC{
		statuses: []rpc.ConfirmationStatusType{rpc.ConfirmationStatusProcessed, rpc.ConfirmationStatusConfirmed},
	}
	l := newLedger(t, client)

	receipt, err := l.RecordDealMemo(context.Background(), dealMemo())
	rq.NoError(err)
	rq.Equal(dealMemo().TermsHash, receipt.TermsHash)
	rq.Len(client.sent, 1)
	rq.Equal(2, client.statusCall)

	tx := client.sent[0]
	rq.Equal(tx.Signatures[0].String(), receipt.Signature)
	rq.True(tx.Message.AccountKeys[0].Equals(l.Signer()))
	rq.Len(tx.Message.Instructions, 1)

	program, err := tx.ResolveProgramIDIndex(tx.Message.Instructions[0].ProgramIDIndex)
	rq.NoError(err)
	rq.True(program.Equals(solana.MemoProgramID))

	payload, err := dealMemo().Bytes()
	rq.NoError(err)
	rq.True(bytes.Contains(tx.Message.Instructions[0].Data, payload))
}

func TestRecordDealMemoAlreadyProcessed(t *testing.T) {
	rq := require.New(t)

	client := &fakeRPC{sendErr: errors.New("Transaction simulation failed: This transaction has already been processed")}
	l := newLedger(t, client)

	receipt, err := l.RecordDealMemo(context.Background(), dealMemo())
	rq.NoError(err)
	rq.Equal(client.sent[0].Signatures[0].String(), receipt.Signature)
}

func TestRecordDealMemoFailures(t *testing.T) {
	testCases := []struct {
		name   string
		client *fakeRPC
	}{
		{
			name:   "Send failure",
			client: &fakeRPC{sendErr: errors.New("connection refused")},
		},
		{
			name:   "Transaction error",
			client: &fakeRPC{statusErr: map[string]any{"InstructionError": []any{0, "Custom"}}},
		},
		{
			name:   "Never confirmed",
			client: &fakeRPC{fallback: rpc.ConfirmationStatusProcessed},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			signer, err := solana.NewRandomPrivateKey()
			rq.NoError(err)

			l := ledger.New(tc.client, signer, ledger.WithConfirmation(time.Millisecond, 50*time.Millisecond))

			_, err = l.RecordDealMemo(context.Background(), dealMemo())
			rq.True(errcodes.Is(err, errcodes.LedgerUnavailable))
		})
	}
}

func TestEnsureAirdrop(t *testing.T) {
	const sol = solana.LAMPORTS_PER_SOL

	testCases := []struct {
		name     string
		target   uint64
		balance  uint64
		expected []uint64
	}{
		{name: "Disabled", target: 0, balance: 0},
		{name: "Enough balance", target: sol / 10, balance: sol / 10},
		{name: "Small shortfall gets the minimum", target: sol / 10, balance: sol / 20, expected: []uint64{sol / 5}},
		{name: "Large shortfall gets the difference", target: sol, balance: sol / 10, expected: []uint64{sol - sol/10}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			client := &fakeRPC{balance: tc.balance}
			l := newLedger(t, client, ledger.WithAirdropTarget(tc.target))

			rq.NoError(l.EnsureAirdrop(context.Background()))
			rq.Equal(tc.expected, client.airdrops)
		})
	}
}
