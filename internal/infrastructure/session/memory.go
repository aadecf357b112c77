package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
)

const (
	challengePrefix = "challenge:"
	sessionPrefix   = "session:"
)

// MemoryStore keeps wallet challenges and sessions in process memory.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(c *cache.Cache) *MemoryStore {
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) SaveChallenge(_ context.Context, challenge entity.WalletChallenge, ttl time.Duration) error {
	s.cache.Set(challengePrefix+challenge.Wallet.String(), challenge, ttl)
	return nil
}

func (s *MemoryStore) TakeChallenge(_ context.Context, wallet value.Wallet) (entity.WalletChallenge, error) {
	key := challengePrefix + wallet.String()

	v, ok := s.cache.Get(key)
	if !ok {
		return entity.WalletChallenge{}, domain.NewError(errcodes.NotFound, "challenge not found")
	}

	s.cache.Delete(key)

	return v.(entity.WalletChallenge), nil //nolint:forcetypeassert
}

func (s *MemoryStore) SaveSession(_ context.Context, session entity.WalletSession, ttl time.Duration) error {
	s.cache.Set(sessionPrefix+session.Token, session, ttl)
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, token string) (entity.WalletSession, error) {
	v, ok := s.cache.Get(sessionPrefix + token)
	if !ok {
		return entity.WalletSession{}, domain.NewError(errcodes.NotFound, "session not found")
	}

	return v.(entity.WalletSession), nil //nolint:forcetypeassert
}

func (s *MemoryStore) DeleteSession(_ context.Context, token string) error {
	s.cache.Delete(sessionPrefix + token)
	return nil
}
