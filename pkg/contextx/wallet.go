package contextx

import (
	"context"
	"fmt"
)

// Wallet is the lowercased address of the wallet that authenticated the
// current request.
type Wallet string

type contextKeyWallet struct{}

func (w Wallet) String() string {
	return string(w)
}

func WithWallet(ctx context.Context, wallet Wallet) context.Context {
	return context.WithValue(ctx, contextKeyWallet{}, wallet)
}

func WalletFromContext(ctx context.Context) (Wallet, error) {
	wallet, ok := ctx.Value(contextKeyWallet{}).(Wallet)
	if !ok || wallet == "" {
		return "", fmt.Errorf("wallet: %w", ErrNoValue)
	}

	return wallet, nil
}
