package app

import (
	"context"
	"fmt"
	"time"

	"reviewdesk/internal/domain"
)

// ClientDirectory resolves clients by location id or contact number with
// a cache in front of the store. Client rows only change via out-of-band
// onboarding, so a short TTL is plenty.
type ClientDirectory struct {
	store domain.ReviewStore
	cache domain.Cache
	ttl   time.Duration
}

func NewClientDirectory(store domain.ReviewStore, cache domain.Cache, ttl time.Duration) *ClientDirectory {
	return &ClientDirectory{store: store, cache: cache, ttl: ttl}
}

func (d *ClientDirectory) ByLocation(ctx context.Context, locationID string) (domain.Client, error) {
	return d.lookup(ctx, fmt.Sprintf("client:loc:%s", locationID), func() (domain.Client, error) {
		return d.store.GetClientByLocation(ctx, locationID)
	})
}

func (d *ClientDirectory) ByPhone(ctx context.Context, phone string) (domain.Client, error) {
	return d.lookup(ctx, fmt.Sprintf("client:phone:%s", phone), func() (domain.Client, error) {
		return d.store.GetClientByPhone(ctx, phone)
	})
}

func (d *ClientDirectory) lookup(ctx context.Context, key string, fetch func() (domain.Client, error)) (domain.Client, error) {
	var c domain.Client
	if d.cache != nil {
		if ok, _ := d.cache.Get(ctx, key, &c); ok {
			return c, nil
		}
	}
	c, err := fetch()
	if err != nil {
		return domain.Client{}, err
	}
	if d.cache != nil {
		_ = d.cache.Set(ctx, key, c, int(d.ttl.Seconds()))
	}
	return c, nil
}
