package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/service/profile"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
)

const (
	owner    = value.Wallet("0xabcdef0123456789abcdef0123456789abcdef01")
	stranger = value.Wallet("0x2222222222222222222222222222222222222222")
)

type fakeRepository struct {
	profiles map[value.Wallet]entity.Profile
}

func (f *fakeRepository) Upsert(_ context.Context, p entity.Profile) (entity.Profile, error) {
	if existing, ok := f.profiles[p.Wallet]; ok {
		p.CreatedAt = existing.CreatedAt
	}

	f.profiles[p.Wallet] = p

	return p, nil
}

func (f *fakeRepository) GetByWallet(_ context.Context, w value.Wallet) (entity.Profile, error) {
	p, ok := f.profiles[w]
	if !ok {
		return entity.Profile{}, domain.NewError(errcodes.ProfileNotFound, "profile not found")
	}

	return p, nil
}

type invalidatorSpy struct {
	calls int
}

func (i *invalidatorSpy) Invalidate(context.Context) {
	i.calls++
}

func validForm() profile.Form {
	return profile.Form{
		Company: "Acme",
		Region:  "Kazan",
		Contact: "@acme",
		Email:   "hi@acme.example",
	}
}

func TestSaveAndGetCaseFolded(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := &fakeRepository{profiles: map[value.Wallet]entity.Profile{}}
	spy := &invalidatorSpy{}
	svc := profile.NewService(repo).WithSnapshotInvalidator(spy)

	saved, err := svc.Save(ctx, owner, validForm())
	rq.NoError(err)
	rq.Equal(value.CompanyTypeProducer, saved.Type)
	rq.Equal(value.PrivacyPublic, saved.Privacy)
	rq.Equal(1, spy.calls)

	got, err := svc.Get(ctx, "0xABCDEF0123456789ABCDEF0123456789ABCDEF01")
	rq.NoError(err)
	rq.Equal(saved, got)
}

func TestSaveOverwritesEveryField(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := &fakeRepository{profiles: map[value.Wallet]entity.Profile{}}
	svc := profile.NewService(repo)

	form := validForm()
	form.Pitch = "first pitch"
	form.Website = "https://acme.example"

	first, err := svc.Save(ctx, owner, form)
	rq.NoError(err)

	form = validForm()
	form.Company = "Acme Group"

	second, err := svc.Save(ctx, owner, form)
	rq.NoError(err)

	rq.Equal("Acme Group", second.Company)
	rq.Empty(second.Pitch)
	rq.Empty(second.Website)
	rq.Equal(first.CreatedAt, second.CreatedAt)
}

func TestSaveValidation(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		wallet value.Wallet
		mutate func(*profile.Form)
		code   errcodes.ErrorCode
	}{
		{name: "No wallet", wallet: "", mutate: func(*profile.Form) {}, code: errcodes.WalletNotConnected},
		{name: "No company", wallet: owner, mutate: func(f *profile.Form) { f.Company = " " }, code: errcodes.InvalidProfile},
		{name: "No email", wallet: owner, mutate: func(f *profile.Form) { f.Email = "" }, code: errcodes.InvalidProfile},
		{name: "Unknown type", wallet: owner, mutate: func(f *profile.Form) { f.Type = "miner" }, code: errcodes.InvalidCompanyType},
		{name: "Unknown privacy", wallet: owner, mutate: func(f *profile.Form) { f.Privacy = "hidden" }, code: errcodes.InvalidPrivacy},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			repo := &fakeRepository{profiles: map[value.Wallet]entity.Profile{}}
			svc := profile.NewService(repo)

			form := validForm()
			tc.mutate(&form)

			_, err := svc.Save(context.Background(), tc.wallet, form)
			rq.True(errcodes.Is(err, tc.code), "got %v", err)
			rq.Empty(repo.profiles)
		})
	}
}

func TestView(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	now := time.Now()
	repo := &fakeRepository{profiles: map[value.Wallet]entity.Profile{
		owner:    {Wallet: owner, Company: "Acme", Privacy: value.PrivacyPrivate, CreatedAt: now},
		stranger: {Wallet: stranger, Company: "Beta", Privacy: value.PrivacyPublic, CreatedAt: now},
	}}
	svc := profile.NewService(repo)

	view, err := svc.View(ctx, owner, owner.String())
	rq.NoError(err)
	rq.True(view.IsOwner)
	rq.Contains(view.DealLink, "counterparty="+owner.String())

	_, err = svc.View(ctx, stranger, owner.String())
	rq.True(errcodes.Is(err, errcodes.ProfileNotFound))

	_, err = svc.View(ctx, "", owner.String())
	rq.True(errcodes.Is(err, errcodes.ProfileNotFound))

	view, err = svc.View(ctx, "", stranger.String())
	rq.NoError(err)
	rq.False(view.IsOwner)
	rq.Equal("Beta", view.Profile.Company)

	_, err = svc.View(ctx, "", "not-a-wallet")
	rq.True(errcodes.Is(err, errcodes.InvalidWalletAddress))
}
