package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/internal/infrastructure/persistence"
	"prodi/pkg/errcodes"
)

func TestProfileRepositoryUpsert(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewProfileRepository(memdb(t))

	first := profileAt(walletA, "Acme", value.PrivacyPublic, 0)
	first.Pitch = "we make honey"
	first.Website = "https://acme.example"

	saved, err := repo.Upsert(ctx, first)
	rq.NoError(err)
	rq.Equal("we make honey", saved.Pitch)

	second := profileAt(walletA, "Acme Group", value.PrivacyPrivate, 30)
	second.Type = value.CompanyTypeAgent

	saved, err = repo.Upsert(ctx, second)
	rq.NoError(err)
	rq.Equal("Acme Group", saved.Company)
	rq.Equal(value.CompanyTypeAgent, saved.Type)
	rq.Equal(value.PrivacyPrivate, saved.Privacy)
	rq.Empty(saved.Pitch)
	rq.Empty(saved.Website)
	rq.True(first.CreatedAt.Equal(saved.CreatedAt))
	rq.True(second.UpdatedAt.Equal(saved.UpdatedAt))

	got, err := repo.GetByWallet(ctx, walletA)
	rq.NoError(err)
	rq.Equal(saved, got)

	_, err = repo.GetByWallet(ctx, walletB)
	rq.True(errcodes.Is(err, errcodes.ProfileNotFound))
}

func TestProfileRepositoryList(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewProfileRepository(memdb(t))

	for _, p := range []entity.Profile{
		profileAt(walletA, "Old", value.PrivacyPublic, 0),
		profileAt(walletB, "Hidden", value.PrivacyPrivate, 1),
		profileAt(walletC, "New", value.PrivacyCustom, 2),
	} {
		_, err := repo.Upsert(ctx, p)
		rq.NoError(err)
	}

	all, err := repo.List(ctx, false)
	rq.NoError(err)
	rq.Equal([]string{"New", "Hidden", "Old"}, companies(all))

	visible, err := repo.List(ctx, true)
	rq.NoError(err)
	rq.Equal([]string{"New", "Old"}, companies(visible))
}

func TestProfileRepositorySearch(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewProfileRepository(memdb(t))

	a := profileAt(walletA, "Honey Farm", value.PrivacyPublic, 0)
	b := profileAt(walletB, "Honey_Trade", value.PrivacyPublic, 1)
	b.Region = "Siberia"
	c := profileAt(walletC, "Secret Honey", value.PrivacyPrivate, 2)

	for _, p := range []entity.Profile{a, b, c} {
		_, err := repo.Upsert(ctx, p)
		rq.NoError(err)
	}

	testCases := []struct {
		name       string
		query      string
		exclude    value.Wallet
		publicOnly bool
		limit      int
		want       []string
	}{
		{name: "Case-insensitive company", query: "HONEY", want: []string{"Secret Honey", "Honey_Trade", "Honey Farm"}},
		{name: "Region", query: "siber", want: []string{"Honey_Trade"}},
		{name: "Email", query: "farm@MAIL", want: []string{"Honey Farm"}},
		{name: "Public only without own wallet", query: "honey", exclude: walletA, publicOnly: true, want: []string{"Honey_Trade"}},
		{name: "Underscore is literal", query: "y_t", want: []string{"Honey_Trade"}},
		{name: "Percent is literal", query: "%", want: []string{}},
		{name: "Limit", query: "honey", limit: 1, want: []string{"Secret Honey"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			found, err := repo.Search(ctx, tc.query, tc.exclude, tc.publicOnly, tc.limit)
			rq.NoError(err)
			rq.Equal(tc.want, companies(found))
		})
	}
}

func companies(ps []entity.Profile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Company)
	}

	return out
}
