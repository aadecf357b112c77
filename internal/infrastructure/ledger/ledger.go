package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/rpc"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	// MinAirdrop is the smallest top-up requested from the faucet.
	MinAirdrop = solana.LAMPORTS_PER_SOL / 5

	// DefaultAirdropTarget is the balance kept on the signer account.
	DefaultAirdropTarget = solana.LAMPORTS_PER_SOL / 10

	alreadyProcessed = "already been processed"
)

var errTransactionFailed = errors.New("transaction failed")

// RPC is the part of the Solana JSON-RPC API the ledger needs.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(
		ctx context.Context,
		searchTransactionHistory bool,
		signatures ...solana.Signature,
	) (*rpc.GetSignatureStatusesResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	RequestAirdrop(
		ctx context.Context,
		account solana.PublicKey,
		lamports uint64,
		commitment rpc.CommitmentType,
	) (solana.Signature, error)
}

// Ledger records deal memos through the memo program, paying fees from a
// single server-side signer.
type Ledger struct {
	client         RPC
	signer         solana.PrivateKey
	airdropTarget  uint64
	maxRetries     uint
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

type Option func(*Ledger)

// WithAirdropTarget enables devnet top-ups of the signer up to target
// lamports. Zero disables them.
func WithAirdropTarget(target uint64) Option {
	return func(l *Ledger) {
		l.airdropTarget = target
	}
}

func WithMaxRetries(n uint) Option {
	return func(l *Ledger) {
		l.maxRetries = n
	}
}

func WithConfirmation(pollInterval, timeout time.Duration) Option {
	return func(l *Ledger) {
		l.pollInterval = pollInterval
		l.confirmTimeout = timeout
	}
}

func New(client RPC, signer solana.PrivateKey, opts ...Option) *Ledger {
	l := &Ledger{
		client:         client,
		signer:         signer,
		maxRetries:     3,
		pollInterval:   time.Second,
		confirmTimeout: time.Minute,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// NewFromConfig dials endpoint and loads the base58 signer key.
func NewFromConfig(endpoint, privateKey string, opts ...Option) (*Ledger, error) {
	signer, err := solana.PrivateKeyFromBase58(privateKey)
	if err != nil {
		return nil, fmt.Errorf("solana.PrivateKeyFromBase58: %w", err)
	}

	return New(rpc.New(endpoint), signer, opts...), nil
}

func (l *Ledger) Signer() solana.PublicKey {
	return l.signer.PublicKey()
}

// RecordDealMemo publishes the memo and waits until the transaction is
// confirmed.
func (l *Ledger) RecordDealMemo(ctx context.Context, dealMemo entity.DealMemo) (entity.MemoReceipt, error) {
	if err := l.EnsureAirdrop(ctx); err != nil {
		return entity.MemoReceipt{}, err
	}

	payload, err := dealMemo.Bytes()
	if err != nil {
		return entity.MemoReceipt{}, fmt.Errorf("dealMemo.Bytes: %w", err)
	}

	tx, err := l.buildMemoTx(ctx, payload)
	if err != nil {
		return entity.MemoReceipt{}, err
	}

	signature, err := l.send(ctx, tx)
	if err != nil {
		return entity.MemoReceipt{}, err
	}

	if err := l.waitConfirmed(ctx, signature); err != nil {
		return entity.MemoReceipt{}, err
	}

	logger(ctx).Info("deal memo recorded",
		slog.String(logx.FieldDealID, dealMemo.DealID),
		slog.String(logx.FieldMemoSignature, signature.String()),
	)

	return entity.MemoReceipt{
		Signature: signature.String(),
		TermsHash: dealMemo.TermsHash,
	}, nil
}

// EnsureAirdrop tops the signer up when its balance is below the target.
// The request is never smaller than MinAirdrop.
func (l *Ledger) EnsureAirdrop(ctx context.Context) error {
	if l.airdropTarget == 0 {
		return nil
	}

	balance, err := l.client.GetBalance(ctx, l.Signer(), rpc.CommitmentConfirmed)
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "failed to read signer balance")
	}

	if balance.Value >= l.airdropTarget {
		return nil
	}

	amount := max(l.airdropTarget-balance.Value, MinAirdrop)

	signature, err := l.client.RequestAirdrop(ctx, l.Signer(), amount, rpc.CommitmentConfirmed)
	if err != nil {
		return domain.WrapError(err, errcodes.LedgerUnavailable, "airdrop request failed")
	}

	logger(ctx).Info("airdrop requested",
		slog.Uint64("lamports", amount),
		slog.String(logx.FieldMemoSignature, signature.String()),
	)

	return l.waitConfirmed(ctx, signature)
}

func (l *Ledger) buildMemoTx(ctx context.Context, payload []byte) (*solana.Transaction, error) {
	latest, err := l.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.LedgerUnavailable, "failed to get latest blockhash")
	}

	instruction := memo.NewMemoInstructionBuilder().
		SetMessage(payload).
		SetSigner(l.Signer()).
		Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		latest.Value.Blockhash,
		solana.TransactionPayer(l.Signer()),
	)
	if err != nil {
		return nil, fmt.Errorf("solana.NewTransaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(l.Signer()) {
			return &l.signer
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tx.Sign: %w", err)
	}

	return tx, nil
}

// send skips preflight. A node that has already seen the transaction is a
// success, the signature is the transaction's own.
func (l *Ledger) send(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	maxRetries := l.maxRetries

	signature, err := l.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight: true,
		MaxRetries:    &maxRetries,
	})
	if err == nil {
		return signature, nil
	}

	if strings.Contains(err.Error(), alreadyProcessed) && len(tx.Signatures) > 0 {
		logger(ctx).Warn("memo transaction already processed", logx.Error(err))
		return tx.Signatures[0], nil
	}

	return solana.Signature{}, domain.WrapError(err, errcodes.LedgerUnavailable, "failed to send memo transaction")
}

func (l *Ledger) waitConfirmed(ctx context.Context, signature solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, l.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		statuses, err := l.client.GetSignatureStatuses(ctx, true, signature)
		if err != nil {
			logger(ctx).Warn("get signature status", logx.Error(err))
		} else if len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]

			if status.Err != nil {
				return domain.WrapError(
					fmt.Errorf("%w: %v", errTransactionFailed, status.Err),
					errcodes.LedgerUnavailable,
					"memo transaction failed",
				)
			}

			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return domain.WrapError(ctx.Err(), errcodes.LedgerUnavailable, "transaction was not confirmed in time")
		case <-ticker.C:
		}
	}
}
