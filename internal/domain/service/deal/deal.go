package deal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/contextx"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

type Repository interface {
	Create(ctx context.Context, deal entity.Deal) error
	GetByID(ctx context.Context, id value.DealID) (entity.Deal, error)
	ListByPartner(ctx context.Context, wallet value.Wallet) ([]entity.Deal, error)
	ListByInitiator(ctx context.Context, wallet value.Wallet) ([]entity.Deal, error)
	UpdateStatus(ctx context.Context, id value.DealID, expected, next value.DealStatus) (entity.Deal, error)
	SetMemoOutcome(ctx context.Context, id value.DealID, status value.MemoStatus, signature *string) error
}

type ProfileReader interface {
	GetByWallet(ctx context.Context, wallet value.Wallet) (entity.Profile, error)
}

// Ledger records a memo transaction and returns its signature.
type Ledger interface {
	RecordDealMemo(ctx context.Context, memo entity.DealMemo) (entity.MemoReceipt, error)
}

// MemoQueue hands memo recording over to a background worker.
type MemoQueue interface {
	EnqueueMemo(ctx context.Context, id value.DealID) error
}

// CounterpartySources lists the places the second party can come from, in
// order of precedence.
type CounterpartySources struct {
	Selected string
	DeepLink string
	Manual   string
}

// ResolveCounterparty returns the first non-empty source: a search
// selection wins over a deep link, which wins over manual input.
func ResolveCounterparty(sources CounterpartySources) string {
	for _, s := range []string{sources.Selected, sources.DeepLink, sources.Manual} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}

	return ""
}

// Form is the deal form. Empty fields become empty strings and false.
type Form struct {
	Marketplaces   string
	Regions        string
	IsExclusiveMP  bool
	IsExclusiveReg bool
	RRCControl     string
	Guarantees     string
	CustomTerms    string
	RecordMemo     bool
}

func (f Form) terms() entity.DealTerms {
	return entity.DealTerms{
		Marketplaces:   strings.TrimSpace(f.Marketplaces),
		Regions:        strings.TrimSpace(f.Regions),
		IsExclusiveMP:  f.IsExclusiveMP,
		IsExclusiveReg: f.IsExclusiveReg,
		RRCControl:     strings.TrimSpace(f.RRCControl),
		Guarantees:     strings.TrimSpace(f.Guarantees),
		CustomTerms:    strings.TrimSpace(f.CustomTerms),
	}
}

type DeepLink struct {
	Counterparty string
	Company      string
}

// Draft pre-fills the second party of the deal form.
type Draft struct {
	Counterparty string
	Company      string
	Partner      *entity.Profile
}

type CreateResult struct {
	Deal entity.Deal
	Memo entity.MemoOutcome
}

type MemoMode string

const (
	MemoModeSync   MemoMode = "sync"
	MemoModeQueued MemoMode = "queued"
)

type Service struct {
	repo     Repository
	profiles ProfileReader
	ledger   Ledger
	queue    MemoQueue
	memoMode MemoMode
	events   chan<- entity.DealEvent
	metrics  *Metrics
	now      func() time.Time
}

func NewService(repo Repository, profiles ProfileReader) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		memoMode: MemoModeSync,
		now:      time.Now,
	}
}

// WithLedger enables memo recording inline with deal creation.
func (s *Service) WithLedger(ledger Ledger) *Service {
	s.ledger = ledger
	return s
}

// WithMemoQueue defers memo recording to the queue worker.
func (s *Service) WithMemoQueue(queue MemoQueue) *Service {
	s.queue = queue
	s.memoMode = MemoModeQueued

	return s
}

func (s *Service) WithEvents(events chan<- entity.DealEvent) *Service {
	s.events = events
	return s
}

func (s *Service) WithMetrics(metrics *Metrics) *Service {
	s.metrics = metrics
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) memoEnabled() bool {
	return s.ledger != nil
}

func (s *Service) Draft(ctx context.Context, viewer value.Wallet, link DeepLink) (Draft, error) {
	draft := Draft{
		Counterparty: strings.TrimSpace(link.Counterparty),
		Company:      strings.TrimSpace(link.Company),
	}

	if draft.Counterparty == "" {
		return draft, nil
	}

	wallet, err := value.ParseWallet(draft.Counterparty)
	if err != nil {
		return Draft{}, fmt.Errorf("value.ParseWallet: %w", err)
	}

	draft.Counterparty = wallet.String()

	partner, err := s.profiles.GetByWallet(ctx, wallet)
	if err != nil {
		if errcodes.Is(err, errcodes.ProfileNotFound) {
			return draft, nil
		}

		return Draft{}, fmt.Errorf("profiles.GetByWallet: %w", err)
	}

	if !partner.VisibleTo(viewer) {
		return draft, nil
	}

	draft.Partner = &partner

	if draft.Company == "" {
		draft.Company = partner.Company
	}

	return draft, nil
}

// Create validates the parties, stores the proposal and then, if asked and
// possible, attests it on the ledger. The stored deal is authoritative: a
// failed attestation is reported as a warning, never as an error.
func (s *Service) Create(
	ctx context.Context,
	initiator value.Wallet,
	form Form,
	sources CounterpartySources,
) (CreateResult, error) {
	if initiator.IsZero() {
		return CreateResult{}, domain.NewError(errcodes.WalletNotConnected, "wallet is not connected")
	}

	counterparty := ResolveCounterparty(sources)
	if counterparty == "" {
		return CreateResult{}, domain.NewError(errcodes.CounterpartyRequired, "counterparty wallet is required")
	}

	partner, err := value.ParseWallet(counterparty)
	if err != nil {
		return CreateResult{}, fmt.Errorf("value.ParseWallet: %w", err)
	}

	if partner == initiator {
		return CreateResult{}, domain.NewError(errcodes.SelfDeal, "initiator and counterparty must differ")
	}

	deal := entity.NewDeal(initiator, partner, form.terms(), s.now().UTC())

	if form.RecordMemo && s.memoEnabled() {
		deal.MemoStatus = value.MemoStatusPending
	}

	if err = s.repo.Create(ctx, deal); err != nil {
		return CreateResult{}, fmt.Errorf("repo.Create: %w", err)
	}

	// The deal is stored; the rest must finish even if the caller goes away.
	ctx = contextWithDeal(context.WithoutCancel(ctx), deal)

	logger(ctx).Info("deal proposed", slog.String("partner", partner.String()))

	s.metrics.dealCreated()
	s.publish(ctx, entity.DealEventCreated, deal)

	result := CreateResult{Deal: deal}

	switch {
	case !form.RecordMemo:
	case !s.memoEnabled():
		result.Memo = entity.MemoOutcome{Warning: "ledger memo is not available, the deal was saved without it"}
	case s.memoMode == MemoModeQueued:
		result.Memo = s.enqueueMemo(ctx, deal)
	default:
		result.Memo = s.recordMemo(ctx, deal)
	}

	result.Deal.MemoStatus = result.Memo.Status
	if result.Memo.Signature != "" {
		signature := result.Memo.Signature
		result.Deal.BlockchainTx = &signature
	}

	return result, nil
}

// CompleteMemo records the memo of a deal that is waiting for it.
// A failed attempt leaves the deal in failed state and may be retried.
func (s *Service) CompleteMemo(ctx context.Context, id value.DealID) (entity.MemoOutcome, error) {
	deal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return entity.MemoOutcome{}, fmt.Errorf("repo.GetByID: %w", err)
	}

	ctx = contextWithDeal(ctx, deal)

	switch deal.MemoStatus {
	case value.MemoStatusRecorded:
		var signature string
		if deal.BlockchainTx != nil {
			signature = *deal.BlockchainTx
		}

		return entity.MemoOutcome{Status: value.MemoStatusRecorded, Signature: signature}, nil
	case value.MemoStatusPending, value.MemoStatusFailed:
	default:
		return entity.MemoOutcome{}, domain.NewError(errcodes.MemoNotRequested, "memo was not requested for this deal")
	}

	if !s.memoEnabled() {
		return entity.MemoOutcome{}, domain.NewError(errcodes.LedgerUnavailable, "ledger is not configured")
	}

	outcome := s.recordMemo(ctx, deal)
	if outcome.Status != value.MemoStatusRecorded {
		return outcome, domain.NewError(errcodes.LedgerUnavailable, outcome.Warning)
	}

	return outcome, nil
}

func (s *Service) enqueueMemo(ctx context.Context, deal entity.Deal) entity.MemoOutcome {
	if err := s.queue.EnqueueMemo(ctx, deal.ID); err != nil {
		logger(ctx).Warn("memo enqueue failed", logx.Error(err))

		s.metrics.memo(value.MemoStatusFailed)
		s.setMemoOutcome(ctx, deal.ID, value.MemoStatusFailed, nil)

		return entity.MemoOutcome{
			Status:  value.MemoStatusFailed,
			Warning: "the deal was saved, but the ledger memo could not be scheduled",
		}
	}

	return entity.MemoOutcome{Status: value.MemoStatusPending}
}

func (s *Service) recordMemo(ctx context.Context, deal entity.Deal) entity.MemoOutcome {
	memo, err := entity.NewDealMemo(deal, s.now())
	if err == nil {
		var receipt entity.MemoReceipt

		receipt, err = s.ledger.RecordDealMemo(ctx, memo)
		if err == nil {
			return s.memoRecorded(ctx, deal, receipt)
		}
	}

	logger(ctx).Warn("ledger memo failed", logx.Error(err))

	s.metrics.memo(value.MemoStatusFailed)
	s.setMemoOutcome(ctx, deal.ID, value.MemoStatusFailed, nil)

	return entity.MemoOutcome{
		Status:  value.MemoStatusFailed,
		Warning: "the deal was saved, but the ledger memo failed: " + err.Error(),
	}
}

func (s *Service) memoRecorded(ctx context.Context, deal entity.Deal, receipt entity.MemoReceipt) entity.MemoOutcome {
	logger(ctx).Info(
		"ledger memo recorded",
		slog.String(logx.FieldMemoSignature, receipt.Signature),
		slog.String("terms-hash", receipt.TermsHash),
	)

	s.metrics.memo(value.MemoStatusRecorded)

	signature := receipt.Signature
	outcome := entity.MemoOutcome{Status: value.MemoStatusRecorded, Signature: signature}

	if err := s.repo.SetMemoOutcome(ctx, deal.ID, value.MemoStatusRecorded, &signature); err != nil {
		logger(ctx).Error("memo signature not stored", logx.Error(err))

		outcome.Warning = "the ledger memo was recorded, but its signature could not be attached to the deal"

		return outcome
	}

	deal.MemoStatus = value.MemoStatusRecorded
	deal.BlockchainTx = &signature

	s.publish(ctx, entity.DealEventMemoRecorded, deal)

	return outcome
}

func (s *Service) setMemoOutcome(ctx context.Context, id value.DealID, status value.MemoStatus, signature *string) {
	if err := s.repo.SetMemoOutcome(ctx, id, status, signature); err != nil {
		logger(ctx).Error("repo.SetMemoOutcome", logx.Error(err))
	}
}

// publish never blocks a request on a slow consumer.
func (s *Service) publish(ctx context.Context, eventType entity.DealEventType, deal entity.Deal) {
	if s.events == nil {
		return
	}

	select {
	case s.events <- entity.DealEvent{Type: eventType, Deal: deal}:
	default:
		logger(ctx).Warn("deal event dropped", slog.String("event", string(eventType)))
	}
}

func contextWithDeal(ctx context.Context, deal entity.Deal) context.Context {
	return contextx.WithLogger(ctx, logger(ctx).With(slog.String(logx.FieldDealID, deal.ID.String())))
}
