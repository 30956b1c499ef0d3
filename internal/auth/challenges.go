package auth

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const usedChallengePrefix = "otp:used:"

// ChallengeMarker records verified challenge IDs in Redis so a challenge
// cannot be replayed within its validity window. Without Redis, or when
// Redis errors, verification proceeds unchecked (fail-open, matching the
// login rate limiter).
type ChallengeMarker struct {
	cache *redis.Client
}

// NewChallengeMarker builds a marker. A nil client disables marking.
func NewChallengeMarker(cache *redis.Client) *ChallengeMarker {
	return &ChallengeMarker{cache: cache}
}

// MarkUsed records the challenge ID for the remainder of its validity
// window. It reports false only when the ID was already recorded.
func (m *ChallengeMarker) MarkUsed(ctx context.Context, id string) bool {
	if m == nil || m.cache == nil || id == "" {
		return true
	}
	ok, err := m.cache.SetNX(ctx, usedChallengePrefix+id, "1", ChallengeTTL).Result()
	if err != nil {
		return true
	}
	return ok
}
