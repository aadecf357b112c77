package server

import (
	"context"
	"net/http"
	"strings"

	"prodi/internal/domain"
	"prodi/internal/domain/value"
	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
	"prodi/pkg/httpx/reply"
	"prodi/pkg/logx"
)

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (value.Wallet, error)
}

// walletAuth resolves the bearer session token into the caller's wallet and
// stores it in the request context. With required unset, anonymous requests
// pass through. A token that does not resolve is always rejected.
func walletAuth(resolver sessionResolver, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r)
			if token == "" {
				if required {
					reply.Error(ctx, w, domain.NewError(errcodes.WalletNotConnected, "wallet is not connected"))
					return
				}

				next.ServeHTTP(w, r)

				return
			}

			wallet, err := resolver.Resolve(ctx, token)
			if err != nil {
				reply.Error(ctx, w, err)
				return
			}

			ctx = contextx.WithWallet(ctx, contextx.Wallet(wallet.String()))
			ctx = contextx.WithLogger(ctx, logger(ctx).With(logx.Wallet(wallet)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}

	return strings.TrimSpace(token)
}

// walletFromContext returns the authenticated wallet, or the zero wallet for
// anonymous requests.
func walletFromContext(ctx context.Context) value.Wallet {
	wallet, err := contextx.WalletFromContext(ctx)
	if err != nil {
		return ""
	}

	return value.Wallet(wallet.String())
}
