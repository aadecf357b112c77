package deal_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
)

type fakeRepository struct {
	mu    sync.Mutex
	deals map[value.DealID]entity.Deal
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{deals: map[value.DealID]entity.Deal{}}
}

func (f *fakeRepository) Create(_ context.Context, deal entity.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deals[deal.ID] = deal

	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id value.DealID) (entity.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	deal, ok := f.deals[id]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return deal, nil
}

func (f *fakeRepository) list(match func(entity.Deal) bool) []entity.Deal {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []entity.Deal{}

	for _, d := range f.deals {
		if match(d) {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out
}

func (f *fakeRepository) ListByPartner(_ context.Context, w value.Wallet) ([]entity.Deal, error) {
	return f.list(func(d entity.Deal) bool { return d.PartnerWallet == w }), nil
}

func (f *fakeRepository) ListByInitiator(_ context.Context, w value.Wallet) ([]entity.Deal, error) {
	return f.list(func(d entity.Deal) bool { return d.InitiatorWallet == w }), nil
}

func (f *fakeRepository) UpdateStatus(
	_ context.Context,
	id value.DealID,
	expected, next value.DealStatus,
) (entity.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	deal, ok := f.deals[id]
	if !ok {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	if deal.Status != expected {
		return entity.Deal{}, domain.NewError(errcodes.DealStatusConflict, "deal status changed")
	}

	deal.Status = next
	f.deals[id] = deal

	return deal, nil
}

func (f *fakeRepository) SetMemoOutcome(
	ctx context.Context,
	id value.DealID,
	status value.MemoStatus,
	signature *string,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	deal, ok := f.deals[id]
	if !ok {
		return domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	deal.MemoStatus = status
	deal.BlockchainTx = signature
	f.deals[id] = deal

	return nil
}

type fakeLedger struct {
	err   error
	memos []entity.DealMemo
	// during runs while the memo is being sent.
	during func()
}

func (f *fakeLedger) RecordDealMemo(ctx context.Context, memo entity.DealMemo) (entity.MemoReceipt, error) {
	f.memos = append(f.memos, memo)

	if f.during != nil {
		f.during()
	}

	if err := ctx.Err(); err != nil {
		return entity.MemoReceipt{}, err
	}

	if f.err != nil {
		return entity.MemoReceipt{}, f.err
	}

	return entity.MemoReceipt{Signature: "sig-" + memo.DealID, TermsHash: memo.TermsHash}, nil
}

type fakeQueue struct {
	err error
	ids []value.DealID
}

func (f *fakeQueue) EnqueueMemo(_ context.Context, id value.DealID) error {
	if f.err != nil {
		return f.err
	}

	f.ids = append(f.ids, id)

	return nil
}

type fakeProfiles struct {
	profiles map[value.Wallet]entity.Profile
}

func (f fakeProfiles) GetByWallet(_ context.Context, w value.Wallet) (entity.Profile, error) {
	p, ok := f.profiles[w]
	if !ok {
		return entity.Profile{}, domain.NewError(errcodes.ProfileNotFound, "profile not found")
	}

	return p, nil
}

var errLedgerDown = errors.New("rpc: connection refused")
