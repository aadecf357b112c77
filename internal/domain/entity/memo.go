package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"prodi/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// DealMemo is the payload attested on the ledger. Only the terms hash is
// published, the terms themselves stay in the datastore.
type DealMemo struct {
	DealID    string `json:"deal_id"`
	Initiator string `json:"initiator"`
	Partner   string `json:"partner"`
	TermsHash string `json:"terms_hash"`
	TS        int64  `json:"ts"`
}

func NewDealMemo(deal Deal, now time.Time) (DealMemo, error) {
	hash, err := HashTerms(deal.Terms)
	if err != nil {
		return DealMemo{}, err
	}

	return DealMemo{
		DealID:    deal.ID.String(),
		Initiator: deal.InitiatorWallet.String(),
		Partner:   deal.PartnerWallet.String(),
		TermsHash: hash,
		TS:        now.Unix(),
	}, nil
}

// HashTerms returns the hex sha256 of the JSON-encoded terms.
func HashTerms(terms DealTerms) (string, error) {
	b, err := json.Marshal(terms)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	sum := sha256.Sum256(b)

	return hex.EncodeToString(sum[:]), nil
}

func (m DealMemo) Bytes() ([]byte, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return b, nil
}

// MemoReceipt is what the ledger returns for a recorded memo.
type MemoReceipt struct {
	Signature string
	TermsHash string
}

// MemoOutcome is the result of the optional attestation step of deal
// creation. Warning is set when the attestation failed and the deal was
// kept regardless.
type MemoOutcome struct {
	Status    value.MemoStatus
	Signature string
	Warning   string
}
