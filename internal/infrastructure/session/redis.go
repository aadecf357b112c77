package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"prodi/internal/domain"
	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// RedisStore shares wallet challenges and sessions between replicas.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) SaveChallenge(ctx context.Context, challenge entity.WalletChallenge, ttl time.Duration) error {
	return s.set(ctx, s.prefix+challengePrefix+challenge.Wallet.String(), challenge, ttl)
}

// TakeChallenge reads and deletes the challenge atomically, so a signature
// can never be replayed against the same nonce.
func (s *RedisStore) TakeChallenge(ctx context.Context, wallet value.Wallet) (entity.WalletChallenge, error) {
	var challenge entity.WalletChallenge

	b, err := s.client.GetDel(ctx, s.prefix+challengePrefix+wallet.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return challenge, domain.NewError(errcodes.NotFound, "challenge not found")
		}

		return challenge, domain.WrapError(err, errcodes.InternalServerError, "failed to take challenge")
	}

	if err = json.Unmarshal(b, &challenge); err != nil {
		return challenge, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return challenge, nil
}

func (s *RedisStore) SaveSession(ctx context.Context, session entity.WalletSession, ttl time.Duration) error {
	return s.set(ctx, s.prefix+sessionPrefix+session.Token, session, ttl)
}

func (s *RedisStore) GetSession(ctx context.Context, token string) (entity.WalletSession, error) {
	var session entity.WalletSession

	b, err := s.client.Get(ctx, s.prefix+sessionPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session, domain.NewError(errcodes.NotFound, "session not found")
		}

		return session, domain.WrapError(err, errcodes.InternalServerError, "failed to get session")
	}

	if err = json.Unmarshal(b, &session); err != nil {
		return session, fmt.Errorf("json.Unmarshal: %w", err)
	}

	return session, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.prefix+sessionPrefix+token).Err(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to delete session")
	}

	return nil
}

func (s *RedisStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err = s.client.Set(ctx, key, b, ttl).Err(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to write to redis")
	}

	return nil
}
