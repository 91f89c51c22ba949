package player

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/woominecraft/wmcbridge/internal/types/player"
	"github.com/woominecraft/wmcbridge/internal/util/mcname"
)

var (
	ErrMissingPlayerID   = errors.New("player id is required")
	ErrRestrictedAccount = errors.New("unpaid account")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrLookupFailed      = errors.New("profile lookup failed")
)

// Service resolves player names to Mojang profiles with a bounded
// memoization; the cache stands in for the platform object cache.
type Service struct {
	client ProfileClient
	cache  *cache.Cache
}

func NewService(client ProfileClient, ttl time.Duration) *Service {
	return &Service{
		client: client,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func cacheKey(playerID string) string {
	sum := md5.Sum([]byte("minecraft_player_" + playerID))
	return hex.EncodeToString(sum[:])
}

// Validate resolves a player id to a profile, caching hits for the
// configured TTL. Whether a restricted (demo) profile blocks checkout is
// the caller's policy, Validate just returns what Mojang said.
func (s *Service) Validate(ctx context.Context, playerID string) (*player.Profile, error) {
	if playerID == "" {
		return nil, ErrMissingPlayerID
	}
	// names that can't exist are not worth a remote call
	if !mcname.Valid(playerID) {
		return nil, ErrProfileNotFound
	}

	key := cacheKey(playerID)
	if v, ok := s.cache.Get(key); ok {
		return v.(*player.Profile), nil
	}

	profile, err := s.client.Lookup(ctx, playerID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, profile, cache.DefaultExpiration)
	return profile, nil
}
