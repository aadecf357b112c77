// This file mirrors the public API schema. Field names are part of the wire
// contract.
package rest

import "time"

// Error is the body of every failed request.
type Error struct {
	// Code is a stable machine-readable error code.
	Code ErrorCode `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// SupportID correlates the response with server logs.
	SupportID string `json:"supportId"`
}

type ErrorCode string

type WalletChallengeRequest struct {
	Address string `json:"address" validate:"required"`
}

type WalletChallenge struct {
	Address   string    `json:"address"`
	Nonce     string    `json:"nonce"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// WalletConnectRequest carries the signed challenge. An empty signature means
// the wallet provider was not available on the client.
type WalletConnectRequest struct {
	Address   string `json:"address" validate:"required"`
	Signature string `json:"signature"`
}

type WalletSession struct {
	Address   string    `json:"address"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ProfileForm struct {
	Company      string `json:"company" validate:"max=200"`
	Type         string `json:"type"`
	Region       string `json:"region" validate:"max=200"`
	Marketplaces string `json:"marketplaces" validate:"max=1000"`
	Contact      string `json:"contact" validate:"max=200"`
	Email        string `json:"email" validate:"max=320"`
	Website      string `json:"website" validate:"max=2048"`
	Logo         string `json:"logo" validate:"max=2048"`
	Media        string `json:"media" validate:"max=2048"`
	Pitch        string `json:"pitch" validate:"max=5000"`
	Privacy      string `json:"privacy"`
}

type Profile struct {
	Wallet       string    `json:"wallet"`
	Company      string    `json:"company"`
	Type         string    `json:"type"`
	Region       string    `json:"region"`
	Marketplaces string    `json:"marketplaces"`
	Contact      string    `json:"contact"`
	Email        string    `json:"email"`
	Website      string    `json:"website"`
	Logo         string    `json:"logo"`
	Media        string    `json:"media"`
	Pitch        string    `json:"pitch"`
	Privacy      string    `json:"privacy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProfileView is a company page.
type ProfileView struct {
	Profile  Profile `json:"profile"`
	IsOwner  bool    `json:"isOwner"`
	DealLink string  `json:"dealLink"`
}

type ProfileList struct {
	Items []Profile `json:"items"`
}

type DealTerms struct {
	Marketplaces   string `json:"marketplaces" validate:"max=1000"`
	Regions        string `json:"regions" validate:"max=1000"`
	IsExclusiveMP  bool   `json:"isExclusiveMp"`
	IsExclusiveReg bool   `json:"isExclusiveReg"`
	RRCControl     string `json:"rrcControl" validate:"max=1000"`
	Guarantees     string `json:"guarantees" validate:"max=1000"`
	CustomTerms    string `json:"customTerms" validate:"max=5000"`
}

// DealForm proposes a deal. The counterparty is taken from Counterparty (a
// search selection), then from the counterparty query parameter, then from
// ManualCounterparty.
type DealForm struct {
	DealTerms

	Counterparty       string `json:"counterparty"`
	ManualCounterparty string `json:"manualCounterparty"`
	RecordMemo         bool   `json:"recordMemo"`
}

type Deal struct {
	DealTerms

	ID              string    `json:"id"`
	InitiatorWallet string    `json:"initiatorWallet"`
	PartnerWallet   string    `json:"partnerWallet"`
	Status          string    `json:"status"`
	BlockchainTx    *string   `json:"blockchainTx"`
	MemoStatus      *string   `json:"memoStatus"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DealCreated is returned for a stored deal. Warning is set when the
// optional ledger memo could not be recorded.
type DealCreated struct {
	Deal    Deal   `json:"deal"`
	Warning string `json:"warning,omitempty"`
}

type DealInbox struct {
	Incoming []Deal `json:"incoming"`
	Outgoing []Deal `json:"outgoing"`
}

type DealDraft struct {
	Counterparty string   `json:"counterparty"`
	Company      string   `json:"company"`
	Partner      *Profile `json:"partner,omitempty"`
}
