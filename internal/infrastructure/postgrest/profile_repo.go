package postgrest

import (
	"context"

	"github.com/samber/lo"
	pgrst "github.com/supabase-community/postgrest-go"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/lox"
)

const tableProfiles = "profiles"

type ProfileRepository struct {
	client *Client
}

func NewProfileRepository(client *Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

// Upsert overwrites the whole row keyed by wallet. created_at of an existing
// row is carried over.
func (r *ProfileRepository) Upsert(ctx context.Context, profile entity.Profile) (entity.Profile, error) {
	existing, err := r.GetByWallet(ctx, profile.Wallet)

	switch {
	case err == nil:
		profile.CreatedAt = existing.CreatedAt
	case !errcodes.Is(err, errcodes.ProfileNotFound):
		return entity.Profile{}, err
	}

	var rows []profileRow

	err = r.client.query(ctx, tableProfiles, func(q *pgrst.QueryBuilder) *pgrst.FilterBuilder {
		return q.Upsert(fromProfile(profile), "wallet", returnRepresentation, "")
	}, &rows)
	if err != nil {
		return entity.Profile{}, err
	}

	if len(rows) == 0 {
		return entity.Profile{}, domain.NewError(errcodes.InternalServerError, "datastore returned no saved profile")
	}

	return rows[0].toDomain(), nil
}

func (r *ProfileRepository) GetByWallet(ctx context.Context, wallet value.Wallet) (entity.Profile, error) {
	var rows []profileRow

	err := r.client.query(ctx, tableProfiles, func(q *pgrst.QueryBuilder) *pgrst.FilterBuilder {
		return q.Select("*", "", false).Eq("wallet", wallet.String()).Limit(1, "")
	}, &rows)
	if err != nil {
		return entity.Profile{}, err
	}

	if len(rows) == 0 {
		return entity.Profile{}, domain.NewError(errcodes.ProfileNotFound, "profile not found")
	}

	return rows[0].toDomain(), nil
}

func (r *ProfileRepository) List(ctx context.Context, excludePrivate bool) ([]entity.Profile, error) {
	var rows []profileRow

	err := r.client.query(ctx, tableProfiles, func(q *pgrst.QueryBuilder) *pgrst.FilterBuilder {
		f := q.Select("*", "", false).Order("created_at", newestFirst)
		if excludePrivate {
			f = f.Neq("privacy", value.PrivacyPrivate.String())
		}

		return f
	}, &rows)
	if err != nil {
		return nil, err
	}

	return lox.Map(rows, profileRow.toDomain), nil
}

// Search asks the table API for an ilike match and re-checks every row, so
// that wildcard characters in the query are matched literally.
func (r *ProfileRepository) Search(
	ctx context.Context,
	q string,
	exclude value.Wallet,
	publicOnly bool,
	limit int,
) ([]entity.Profile, error) {
	pattern := quote("*" + q + "*")

	var rows []profileRow

	err := r.client.query(ctx, tableProfiles, func(q *pgrst.QueryBuilder) *pgrst.FilterBuilder {
		f := q.Select("*", "", false).
			Or("company.ilike."+pattern+",region.ilike."+pattern+",email.ilike."+pattern, "").
			Order("created_at", newestFirst)

		if !exclude.IsZero() {
			f = f.Neq("wallet", exclude.String())
		}

		if publicOnly {
			f = f.Eq("privacy", value.PrivacyPublic.String())
		}

		return f
	}, &rows)
	if err != nil {
		return nil, err
	}

	found := lo.Filter(lox.Map(rows, profileRow.toDomain), func(p entity.Profile, _ int) bool {
		return p.Matches(q)
	})

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}

	return found, nil
}
