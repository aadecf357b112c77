package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
)

const snapshotKey = "profiles"

type Repository interface {
	List(ctx context.Context, excludePrivate bool) ([]entity.Profile, error)
	Search(ctx context.Context, query string, exclude value.Wallet, publicOnly bool, limit int) ([]entity.Profile, error)
}

type Mode string

const (
	ModeSnapshot Mode = "snapshot"
	ModeRemote   Mode = "remote"
)

// Service looks up counterparties either in a cached snapshot of all
// non-private profiles or by querying the datastore on every call.
type Service struct {
	repo     Repository
	snapshot *cache.Cache
	ttl      time.Duration
	limit    int
}

func NewService(repo Repository, snapshot *cache.Cache, ttl time.Duration, limit int) *Service {
	return &Service{
		repo:     repo,
		snapshot: snapshot,
		ttl:      ttl,
		limit:    limit,
	}
}

// Matches is the filter both variants share.
func Matches(profile entity.Profile, query string) bool {
	return profile.Matches(query)
}

func (s *Service) Find(ctx context.Context, mode Mode, viewer value.Wallet, query string) ([]entity.Profile, error) {
	if mode == ModeRemote {
		return s.Remote(ctx, viewer, query)
	}

	return s.Snapshot(ctx, query)
}

// Snapshot filters the cached list, loading it on first use.
func (s *Service) Snapshot(ctx context.Context, query string) ([]entity.Profile, error) {
	if strings.TrimSpace(query) == "" {
		return []entity.Profile{}, nil
	}

	profiles, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	found := lo.Filter(profiles, func(p entity.Profile, _ int) bool {
		return Matches(p, query)
	})

	if s.limit > 0 && len(found) > s.limit {
		found = found[:s.limit]
	}

	return found, nil
}

// Remote queries the datastore, leaving out the viewer's own profile and
// everything that is not public.
func (s *Service) Remote(ctx context.Context, viewer value.Wallet, query string) ([]entity.Profile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []entity.Profile{}, nil
	}

	profiles, err := s.repo.Search(ctx, query, viewer, true, s.limit)
	if err != nil {
		return nil, fmt.Errorf("repo.Search: %w", err)
	}

	return profiles, nil
}

func (s *Service) Invalidate(ctx context.Context) {
	s.snapshot.Delete(snapshotKey)

	logger(ctx).Debug("search snapshot invalidated")
}

// Refresh reloads the snapshot ahead of its expiry.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	profiles, err := s.repo.List(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("repo.List: %w", err)
	}

	s.snapshot.Set(snapshotKey, profiles, s.ttl)

	return len(profiles), nil
}

func (s *Service) loadSnapshot(ctx context.Context) ([]entity.Profile, error) {
	if v, ok := s.snapshot.Get(snapshotKey); ok {
		return v.([]entity.Profile), nil //nolint:forcetypeassert
	}

	profiles, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("repo.List: %w", err)
	}

	s.snapshot.Set(snapshotKey, profiles, s.ttl)

	logger(ctx).Debug("search snapshot loaded", slog.Int("profiles", len(profiles)))

	return profiles, nil
}
