package postgrest

import (
	"context"
	"time"

	pgrst "github.com/supabase-community/postgrest-go"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/lox"
)

const tableDeals = "deals"

type DealRepository struct {
	client *Client
	now    func() time.Time
}

func NewDealRepository(client *Client) *DealRepository {
	return &DealRepository{
		client: client,
		now:    time.Now,
	}
}

func (r *DealRepository) Create(ctx context.Context, deal entity.Deal) error {
	return r.client.query(ctx, tableDeals, func(q *pgrst.QueryBuilder) *pgrst.FilterBuilder {
		return q.Insert(fromDeal(deal), false, "", returnMinimal, "")
	}, nil)
}

func (r *DealRepository) GetByID(ctx context.Context, id value.DealID) (entity.Deal, error) {
	deals, err := r.list(ctx, func(f *pgrst.FilterBuilder) *pgrst.FilterBuilder {
		return f.Eq("id", id.String()).Limit(1, "")
	})
	if err != nil {
		return entity.Deal{}, err
	}

	if len(deals) == 0 {
		return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return deals[0], nil
}

func (r *DealRepository) ListByPartner(ctx context.Context, wallet value.Wallet) ([]entity.Deal, error) {
	return r.list(ctx, func(f *pgrst.FilterBuilder) *pgrst.FilterBuilder {
		return f.Eq("partner_wallet", wallet.String()).Order("created_at", newestFirst)
	})
}

func (r *DealRepository) ListByInitiator(ctx context.Context, wallet value.Wallet) ([]entity.Deal, error) {
	return r.list(ctx, func(f *pgrst.FilterBuilder) *pgrst.FilterBuilder {
		return f.Eq("initiator_wallet", wallet.String()).Order("created_at", newestFirst)
	})
}

// UpdateStatus patches only a row whose status still equals expected.
func (r *DealRepository) UpdateStatus(
	ctx context.Context,
	id value.DealID,
	expected, next value.DealStatus,
) (entity.Deal, error) {
	deals, err := r.patch(ctx, map[string]any{
		"status":     next.String(),
		"updated_at": timestamp(r.now()),
	}, func(f *pgrst.FilterBuilder) *pgrst.FilterBuilder {
		return f.Eq("id", id.String()).Eq("status", expected.String())
	})
	if err != nil {
		return entity.Deal{}, err
	}

	if len(deals) > 0 {
		return deals[0], nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return entity.Deal{}, err
	}

	return entity.Deal{}, domain.NewError(errcodes.DealStatusConflict, "deal status has already changed")
}

func (r *DealRepository) SetMemoOutcome(
	ctx context.Context,
	id value.DealID,
	status value.MemoStatus,
	signature *string,
) error {
	deals, err := r.patch(ctx, map[string]any{
		"memo_status":   memoStatusValue(status),
		"blockchain_tx": signature,
		"updated_at":    timestamp(r.now()),
	}, func(f *pgrst.FilterBuilder) *pgrst.FilterBuilder {
		return f.Eq("id", id.String())
	})
	if err != nil {
		return err
	}

	if len(deals) == 0 {
		return domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return nil
}

type filter func(*pgrst.FilterBuilder) *pgrst.FilterBuilder

func (r *DealRepository) list(ctx context.Context, where filter) ([]entity.Deal, error) {
	var rows []dealRow

	err := r.client.query(ctx, tableDeals, func(q *pgrst.QueryBuilder) *pgrst.FilterBuilder {
		return where(q.Select("*", "", false))
	}, &rows)
	if err != nil {
		return nil, err
	}

	return r.toDomain(rows)
}

// patch returns the rows it changed.
func (r *DealRepository) patch(ctx context.Context, body map[string]any, where filter) ([]entity.Deal, error) {
	var rows []dealRow

	err := r.client.query(ctx, tableDeals, func(q *pgrst.QueryBuilder) *pgrst.FilterBuilder {
		return where(q.Update(body, returnRepresentation, ""))
	}, &rows)
	if err != nil {
		return nil, err
	}

	return r.toDomain(rows)
}

func (r *DealRepository) toDomain(rows []dealRow) ([]entity.Deal, error) {
	deals, err := lox.MapErr(rows, dealRow.toDomain)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "malformed deal row")
	}

	return deals, nil
}
