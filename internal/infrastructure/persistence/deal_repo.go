package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/lox"
)

type DealRepository struct {
	db *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal entity.Deal) error {
	query := `
		INSERT INTO deals (
			id, initiator_wallet, partner_wallet, marketplaces, regions,
			is_exclusive_mp, is_exclusive_reg, rrc_control, guarantees, custom_terms,
			status, blockchain_tx, memo_status, created_at, updated_at
		) VALUES (
			:id, :initiator_wallet, :partner_wallet, :marketplaces, :regions,
			:is_exclusive_mp, :is_exclusive_reg, :rrc_control, :guarantees, :custom_terms,
			:status, :blockchain_tx, :memo_status, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, fromDeal(deal)); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to create deal")
	}

	return nil
}

func (r *DealRepository) GetByID(ctx context.Context, id value.DealID) (entity.Deal, error) {
	return r.get(ctx, r.db, id)
}

func (r *DealRepository) ListByPartner(ctx context.Context, wallet value.Wallet) ([]entity.Deal, error) {
	return r.list(ctx, `partner_wallet`, wallet)
}

func (r *DealRepository) ListByInitiator(ctx context.Context, wallet value.Wallet) ([]entity.Deal, error) {
	return r.list(ctx, `initiator_wallet`, wallet)
}

// UpdateStatus changes the status only while it still equals expected.
// A deal that moved on in the meantime yields DealStatusConflict.
func (r *DealRepository) UpdateStatus(
	ctx context.Context,
	id value.DealID,
	expected, next value.DealStatus,
) (entity.Deal, error) {
	var updated entity.Deal

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE deals
			SET status = $1,
			    updated_at = $2
			WHERE id = $3 AND status = $4`

		res, err := tx.ExecContext(ctx, query, next.String(), time.Now().UTC(), id.String(), expected.String())
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to update deal status")
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check rows")
		}

		if rows == 0 {
			var exists bool
			if err = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM deals WHERE id = $1)`, id.String()); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to check deal")
			}

			if !exists {
				return domain.NewError(errcodes.DealNotFound, "deal not found")
			}

			return domain.NewError(errcodes.DealStatusConflict, "deal is no longer "+expected.String())
		}

		updated, err = r.get(ctx, tx, id)

		return err
	})
	if err != nil {
		return entity.Deal{}, err
	}

	return updated, nil
}

func (r *DealRepository) SetMemoOutcome(
	ctx context.Context,
	id value.DealID,
	status value.MemoStatus,
	signature *string,
) error {
	query := `
		UPDATE deals
		SET memo_status = $1,
		    blockchain_tx = $2,
		    updated_at = $3
		WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, memoStatusColumn(status), signature, time.Now().UTC(), id.String())
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to update memo outcome")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return nil
}

func (r *DealRepository) get(ctx context.Context, q sqlx.QueryerContext, id value.DealID) (entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	var schema dealSchema
	if err := sqlx.GetContext(ctx, q, &schema, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Deal{}, domain.NewError(errcodes.DealNotFound, "deal not found")
		}

		return entity.Deal{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get deal")
	}

	deal, err := schema.toDomain()
	if err != nil {
		return entity.Deal{}, domain.WrapError(err, errcodes.InternalServerError, "corrupted deal row")
	}

	return deal, nil
}

// list returns the deals of one side, newest first.
func (r *DealRepository) list(ctx context.Context, column string, wallet value.Wallet) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE ` + column + ` = $1 ORDER BY created_at DESC`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, wallet.String()); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list deals")
	}

	deals, err := lox.MapErr(schemas, dealSchema.toDomain)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "corrupted deal row")
	}

	return deals, nil
}
