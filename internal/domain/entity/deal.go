package entity

import (
	"time"

	"prodi/internal/domain/value"
)

// DealTerms are the commercial conditions proposed by the initiator.
type DealTerms struct {
	Marketplaces   string `json:"marketplaces"`
	Regions        string `json:"regions"`
	IsExclusiveMP  bool   `json:"is_exclusive_mp"`
	IsExclusiveReg bool   `json:"is_exclusive_reg"`
	RRCControl     string `json:"rrc_control"`
	Guarantees     string `json:"guarantees"`
	CustomTerms    string `json:"custom_terms"`
}

type Deal struct {
	ID              value.DealID
	InitiatorWallet value.Wallet
	PartnerWallet   value.Wallet
	Terms           DealTerms
	Status          value.DealStatus
	BlockchainTx    *string
	MemoStatus      value.MemoStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewDeal builds a proposed deal with a fresh id.
func NewDeal(initiator, partner value.Wallet, terms DealTerms, now time.Time) Deal {
	return Deal{
		ID:              value.NewDealID(),
		InitiatorWallet: initiator,
		PartnerWallet:   partner,
		Terms:           terms,
		Status:          value.DealStatusProposed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (d Deal) IsParty(w value.Wallet) bool {
	return d.InitiatorWallet == w || d.PartnerWallet == w
}

// IsIncomingFor reports whether w is the partner, the only side allowed to
// answer the proposal.
func (d Deal) IsIncomingFor(w value.Wallet) bool {
	return d.PartnerWallet == w
}

// DealInbox groups the deals of one wallet, newest first.
type DealInbox struct {
	Incoming []Deal
	Outgoing []Deal
}

type DealEventType string

const (
	DealEventCreated       DealEventType = "created"
	DealEventStatusChanged DealEventType = "status_changed"
	DealEventMemoRecorded  DealEventType = "memo_recorded"
)

// DealEvent is published after a deal change has been committed.
type DealEvent struct {
	Type DealEventType
	Deal Deal
}
