package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"farebroker/internal/domain"
	"farebroker/internal/repository"
)

// PolicyCacheTTL is short: a policy activation must become visible quickly.
const PolicyCacheTTL = 30 * time.Second

const activePolicyKey = "cache:policy:active"

// PolicyCache caches the active cancellation policy in Redis. Cancellations
// read the policy on every call; the document changes rarely.
type PolicyCache struct {
	client *redis.Client
}

// NewPolicyCache creates a new PolicyCache.
func NewPolicyCache(client *redis.Client) *PolicyCache {
	return &PolicyCache{client: client}
}

// GetActive returns the cached active policy, or nil on a miss.
func (c *PolicyCache) GetActive(ctx context.Context) (*domain.CancellationPolicy, error) {
	data, err := c.client.Get(ctx, activePolicyKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var policy domain.CancellationPolicy
	if err := json.Unmarshal(data, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// SetActive caches the active policy.
func (c *PolicyCache) SetActive(ctx context.Context, policy *domain.CancellationPolicy) error {
	data, err := json.Marshal(policy)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activePolicyKey, data, PolicyCacheTTL).Err()
}

// Invalidate drops the cached policy, e.g. after saving a new version.
func (c *PolicyCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, activePolicyKey).Err()
}

// CachedPolicyRepository decorates a PolicyRepository with the Redis cache.
// Cache failures fall through to the backing repository.
type CachedPolicyRepository struct {
	repo  repository.PolicyRepository
	cache *PolicyCache
}

// NewCachedPolicyRepository wraps repo with cache.
func NewCachedPolicyRepository(repo repository.PolicyRepository, cache *PolicyCache) *CachedPolicyRepository {
	return &CachedPolicyRepository{repo: repo, cache: cache}
}

func (r *CachedPolicyRepository) GetActive(ctx context.Context) (*domain.CancellationPolicy, error) {
	if cached, err := r.cache.GetActive(ctx); err == nil && cached != nil {
		return cached, nil
	}

	policy, err := r.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	_ = r.cache.SetActive(ctx, policy)
	return policy, nil
}

func (r *CachedPolicyRepository) Save(ctx context.Context, policy *domain.CancellationPolicy) error {
	if err := r.repo.Save(ctx, policy); err != nil {
		return err
	}
	return r.cache.Invalidate(ctx)
}

var _ repository.PolicyRepository = (*CachedPolicyRepository)(nil)
