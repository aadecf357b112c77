package entity

import (
	"time"

	"prodi/internal/domain/value"
)

// WalletChallenge is a one-time message the wallet owner has to sign.
type WalletChallenge struct {
	Wallet    value.Wallet `json:"wallet"`
	Nonce     string       `json:"nonce"`
	Message   string       `json:"message"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// WalletSession binds a bearer token to a verified wallet.
type WalletSession struct {
	Token     string       `json:"token"`
	Wallet    value.Wallet `json:"wallet"`
	ExpiresAt time.Time    `json:"expires_at"`
}
