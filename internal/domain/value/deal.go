package value

import (
	"github.com/google/uuid"

	"prodi/internal/domain"
	"prodi/pkg/errcodes"
)

type DealID uuid.UUID

func NewDealID() DealID {
	return DealID(uuid.New())
}

func ParseDealID(s string) (DealID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return DealID{}, domain.WrapError(err, errcodes.InvalidDealID, "invalid deal id")
	}

	return DealID(id), nil
}

func (id DealID) String() string {
	return uuid.UUID(id).String()
}

func (id DealID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

type DealStatus string

const (
	DealStatusProposed DealStatus = "proposed"
	DealStatusAccepted DealStatus = "accepted"
	DealStatusRejected DealStatus = "rejected"
)

func ParseDealStatus(s string) (DealStatus, error) {
	switch st := DealStatus(s); st {
	case DealStatusProposed, DealStatusAccepted, DealStatusRejected:
		return st, nil
	default:
		return "", domain.NewError(errcodes.InvalidDealStatus, "unknown deal status "+s)
	}
}

func (s DealStatus) String() string {
	return string(s)
}

func (s DealStatus) IsTerminal() bool {
	return s == DealStatusAccepted || s == DealStatusRejected
}

// CanTransitionTo reports whether next is reachable from s.
// proposed -> accepted | rejected, nothing leaves a terminal status.
func (s DealStatus) CanTransitionTo(next DealStatus) bool {
	return s == DealStatusProposed && next.IsTerminal()
}

// MemoStatus tracks the ledger attestation separately from the deal itself.
// The zero value means no memo was requested.
type MemoStatus string

const (
	MemoStatusNone     MemoStatus = ""
	MemoStatusPending  MemoStatus = "pending"
	MemoStatusRecorded MemoStatus = "recorded"
	MemoStatusFailed   MemoStatus = "failed"
)

func (s MemoStatus) String() string {
	return string(s)
}
