package profile

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

type Repository interface {
	Upsert(ctx context.Context, profile entity.Profile) (entity.Profile, error)
	GetByWallet(ctx context.Context, wallet value.Wallet) (entity.Profile, error)
}

// SnapshotInvalidator is notified after a profile changed so cached
// search snapshots can be dropped.
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context)
}

// Form is the profile editor input. Every save overwrites every field.
type Form struct {
	Company      string
	Type         string
	Region       string
	Marketplaces string
	Contact      string
	Email        string
	Website      string
	Logo         string
	Media        string
	Pitch        string
	Privacy      string
}

// View is a company page as seen by a particular wallet.
type View struct {
	Profile  entity.Profile
	IsOwner  bool
	DealLink string
}

type Service struct {
	repo        Repository
	invalidator SnapshotInvalidator
	now         func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) WithSnapshotInvalidator(invalidator SnapshotInvalidator) *Service {
	s.invalidator = invalidator
	return s
}

func (s *Service) Save(ctx context.Context, wallet value.Wallet, form Form) (entity.Profile, error) {
	if wallet.IsZero() {
		return entity.Profile{}, domain.NewError(errcodes.WalletNotConnected, "wallet is not connected")
	}

	profile, err := fromForm(wallet, form)
	if err != nil {
		return entity.Profile{}, err
	}

	now := s.now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	saved, err := s.repo.Upsert(ctx, profile)
	if err != nil {
		return entity.Profile{}, fmt.Errorf("repo.Upsert: %w", err)
	}

	logger(ctx).Info(
		"profile saved",
		logx.Wallet(wallet),
		slog.String("privacy", saved.Privacy.String()),
	)

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}

	return saved, nil
}

// Get looks a profile up by wallet, case-insensitively.
func (s *Service) Get(ctx context.Context, address string) (entity.Profile, error) {
	wallet, err := value.ParseWallet(address)
	if err != nil {
		return entity.Profile{}, fmt.Errorf("value.ParseWallet: %w", err)
	}

	profile, err := s.repo.GetByWallet(ctx, wallet)
	if err != nil {
		return entity.Profile{}, fmt.Errorf("repo.GetByWallet: %w", err)
	}

	return profile, nil
}

// View opens a company page. A private profile is reported as missing to
// anyone but its owner.
func (s *Service) View(ctx context.Context, viewer value.Wallet, address string) (View, error) {
	profile, err := s.Get(ctx, address)
	if err != nil {
		return View{}, err
	}

	if !profile.VisibleTo(viewer) {
		return View{}, domain.NewError(errcodes.ProfileNotFound, "profile not found")
	}

	return View{
		Profile:  profile,
		IsOwner:  !viewer.IsZero() && profile.Wallet == viewer,
		DealLink: profile.DealLink(),
	}, nil
}

func fromForm(wallet value.Wallet, form Form) (entity.Profile, error) {
	companyType, err := value.ParseCompanyType(form.Type)
	if err != nil {
		return entity.Profile{}, fmt.Errorf("value.ParseCompanyType: %w", err)
	}

	privacy, err := value.ParsePrivacy(form.Privacy)
	if err != nil {
		return entity.Profile{}, fmt.Errorf("value.ParsePrivacy: %w", err)
	}

	profile := entity.Profile{
		Wallet:       wallet,
		Company:      strings.TrimSpace(form.Company),
		Type:         companyType,
		Region:       strings.TrimSpace(form.Region),
		Marketplaces: strings.TrimSpace(form.Marketplaces),
		Contact:      strings.TrimSpace(form.Contact),
		Email:        strings.TrimSpace(form.Email),
		Website:      strings.TrimSpace(form.Website),
		Logo:         strings.TrimSpace(form.Logo),
		Media:        strings.TrimSpace(form.Media),
		Pitch:        strings.TrimSpace(form.Pitch),
		Privacy:      privacy,
	}

	required := []struct {
		name, value string
	}{
		{"company", profile.Company},
		{"region", profile.Region},
		{"contact", profile.Contact},
		{"email", profile.Email},
	}

	for _, f := range required {
		if f.value == "" {
			return entity.Profile{}, domain.NewError(errcodes.InvalidProfile, f.name+" is required")
		}
	}

	return profile, nil
}
