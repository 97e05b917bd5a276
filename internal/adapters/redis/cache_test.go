package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	redisad "reviewdesk/internal/adapters/redis"
	"reviewdesk/internal/domain"
)

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	in := domain.Client{ID: 7, PhoneNumber: "+96890000000", SourceLocationID: "accounts/1/locations/9"}
	if err := cache.Set(ctx, "client:phone:+96890000000", in, 60); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out domain.Client
	ok, err := cache.Get(ctx, "client:phone:+96890000000", &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.ID != in.ID || out.SourceLocationID != in.SourceLocationID {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}

	if err := cache.Del(ctx, "client:phone:+96890000000"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	ok, err = cache.Get(ctx, "client:phone:+96890000000", &out)
	if err != nil {
		t.Fatalf("Get after Del: %v", err)
	}
	if ok {
		t.Fatalf("expected miss after Del")
	}
}
