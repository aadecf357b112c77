package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/lox"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert overwrites every column of the profile, keeping only created_at of
// an existing row.
func (r *ProfileRepository) Upsert(ctx context.Context, profile entity.Profile) (entity.Profile, error) {
	var saved profileSchema

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO profiles (
				wallet, company, type, region, marketplaces, contact, email,
				website, logo, media, pitch, privacy, created_at, updated_at
			) VALUES (
				:wallet, :company, :type, :region, :marketplaces, :contact, :email,
				:website, :logo, :media, :pitch, :privacy, :created_at, :updated_at
			)
			ON CONFLICT (wallet) DO UPDATE SET
				company = excluded.company,
				type = excluded.type,
				region = excluded.region,
				marketplaces = excluded.marketplaces,
				contact = excluded.contact,
				email = excluded.email,
				website = excluded.website,
				logo = excluded.logo,
				media = excluded.media,
				pitch = excluded.pitch,
				privacy = excluded.privacy,
				updated_at = excluded.updated_at`

		if _, err := tx.NamedExecContext(ctx, query, fromProfile(profile)); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to save profile")
		}

		query = `SELECT ` + profileColumns + ` FROM profiles WHERE wallet = $1`

		if err := tx.GetContext(ctx, &saved, query, profile.Wallet.String()); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to read saved profile")
		}

		return nil
	})
	if err != nil {
		return entity.Profile{}, err
	}

	return saved.toDomain(), nil
}

func (r *ProfileRepository) GetByWallet(ctx context.Context, wallet value.Wallet) (entity.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE wallet = $1`

	var schema profileSchema
	if err := r.db.GetContext(ctx, &schema, query, wallet.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Profile{}, domain.NewError(errcodes.ProfileNotFound, "profile not found")
		}

		return entity.Profile{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get profile")
	}

	return schema.toDomain(), nil
}

// List returns profiles newest first.
func (r *ProfileRepository) List(ctx context.Context, excludePrivate bool) ([]entity.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles`
	if excludePrivate {
		query += ` WHERE privacy <> 'private'`
	}

	query += ` ORDER BY created_at DESC`

	var schemas []profileSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list profiles")
	}

	return lox.Map(schemas, profileSchema.toDomain), nil
}

// Search matches the query as a case-insensitive substring of company,
// region or email.
func (r *ProfileRepository) Search(
	ctx context.Context,
	query string,
	exclude value.Wallet,
	publicOnly bool,
	limit int,
) ([]entity.Profile, error) {
	args := []any{"%" + escapeLike(strings.ToLower(query)) + "%"}

	q := `SELECT ` + profileColumns + ` FROM profiles
		WHERE (LOWER(company) LIKE $1 ESCAPE '\'
			OR LOWER(region) LIKE $1 ESCAPE '\'
			OR LOWER(email) LIKE $1 ESCAPE '\')`

	if !exclude.IsZero() {
		args = append(args, exclude.String())
		q += fmt.Sprintf(` AND wallet <> $%d`, len(args))
	}

	if publicOnly {
		q += ` AND privacy = 'public'`
	}

	q += ` ORDER BY created_at DESC`

	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	var schemas []profileSchema
	if err := r.db.SelectContext(ctx, &schemas, q, args...); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to search profiles")
	}

	return lox.Map(schemas, profileSchema.toDomain), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
