package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

const challengeTemplate = "%s wants you to sign in with your wallet.\n\nWallet: %s\nNonce: %s\nIssued At: %s"

// Store keeps pending challenges and issued sessions. Missing or expired
// entries are reported with errcodes.NotFound.
type Store interface {
	SaveChallenge(ctx context.Context, challenge entity.WalletChallenge, ttl time.Duration) error
	TakeChallenge(ctx context.Context, wallet value.Wallet) (entity.WalletChallenge, error)
	SaveSession(ctx context.Context, session entity.WalletSession, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (entity.WalletSession, error)
	DeleteSession(ctx context.Context, token string) error
}

type Service struct {
	store        Store
	appName      string
	challengeTTL time.Duration
	sessionTTL   time.Duration
	now          func() time.Time
}

func NewService(store Store, appName string, challengeTTL, sessionTTL time.Duration) *Service {
	return &Service{
		store:        store,
		appName:      appName,
		challengeTTL: challengeTTL,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Challenge issues a one-time message for the wallet to sign. A new
// challenge replaces any pending one.
func (s *Service) Challenge(ctx context.Context, address string) (entity.WalletChallenge, error) {
	wallet, err := value.ParseWallet(address)
	if err != nil {
		return entity.WalletChallenge{}, fmt.Errorf("value.ParseWallet: %w", err)
	}

	now := s.now().UTC()
	nonce := uuid.NewString()

	challenge := entity.WalletChallenge{
		Wallet:    wallet,
		Nonce:     nonce,
		Message:   fmt.Sprintf(challengeTemplate, s.appName, wallet, nonce, now.Format(time.RFC3339)),
		ExpiresAt: now.Add(s.challengeTTL),
	}

	if err = s.store.SaveChallenge(ctx, challenge, s.challengeTTL); err != nil {
		return entity.WalletChallenge{}, fmt.Errorf("store.SaveChallenge: %w", err)
	}

	return challenge, nil
}

// Connect verifies the signed challenge and opens a session. The pending
// challenge is consumed whatever the outcome, a failed attempt needs a new
// one.
func (s *Service) Connect(ctx context.Context, address, signature string) (entity.WalletSession, error) {
	wallet, err := value.ParseWallet(address)
	if err != nil {
		return entity.WalletSession{}, fmt.Errorf("value.ParseWallet: %w", err)
	}

	challenge, err := s.store.TakeChallenge(ctx, wallet)
	if err != nil {
		if errcodes.Is(err, errcodes.NotFound) {
			return entity.WalletSession{}, domain.WrapError(err, errcodes.WalletNotConnected, "no pending challenge for wallet")
		}

		return entity.WalletSession{}, fmt.Errorf("store.TakeChallenge: %w", err)
	}

	if signature == "" {
		return entity.WalletSession{}, domain.NewError(errcodes.WalletNotConnected, "signature is required")
	}

	now := s.now().UTC()

	if !now.Before(challenge.ExpiresAt) {
		return entity.WalletSession{}, domain.NewError(errcodes.WalletSessionExpired, "challenge expired")
	}

	signer, err := RecoverSigner(challenge.Message, signature)
	if err != nil {
		logger(ctx).Warn("wallet signature unreadable", logx.Wallet(wallet), logx.Error(err))

		return entity.WalletSession{}, domain.WrapError(err, errcodes.WalletSignatureRejected, "signature rejected")
	}

	if signer != wallet.Address() {
		logger(ctx).Warn(
			"wallet signature mismatch",
			logx.Wallet(wallet),
			slog.String("signer", signer.Hex()),
		)

		return entity.WalletSession{}, domain.NewError(errcodes.WalletSignatureRejected, "signature rejected")
	}

	session := entity.WalletSession{
		Token:     uuid.NewString(),
		Wallet:    wallet,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err = s.store.SaveSession(ctx, session, s.sessionTTL); err != nil {
		return entity.WalletSession{}, fmt.Errorf("store.SaveSession: %w", err)
	}

	logger(ctx).Info("wallet connected", logx.Wallet(wallet))

	return session, nil
}

// Resolve returns the wallet behind a session token.
func (s *Service) Resolve(ctx context.Context, token string) (value.Wallet, error) {
	if token == "" {
		return "", domain.NewError(errcodes.WalletNotConnected, "wallet is not connected")
	}

	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errcodes.Is(err, errcodes.NotFound) {
			return "", domain.WrapError(err, errcodes.WalletSessionExpired, "wallet session expired")
		}

		return "", fmt.Errorf("store.GetSession: %w", err)
	}

	if !s.now().Before(session.ExpiresAt) {
		return "", domain.NewError(errcodes.WalletSessionExpired, "wallet session expired")
	}

	return session.Wallet, nil
}

func (s *Service) Disconnect(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("store.DeleteSession: %w", err)
	}

	return nil
}

// RecoverSigner returns the address that produced an EIP-191 personal_sign
// signature over message.
func RecoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("hexutil.Decode: %w", err)
	}

	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature length %d, want %d", len(sig), crypto.SignatureLength)
	}

	// Wallets return V as 27/28.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("crypto.SigToPub: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
