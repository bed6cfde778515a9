package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherly/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  24 * time.Hour,
		IdentityCacheTTL: time.Minute,
		AuthRateLimit:    config.RateLimitConfig{Requests: 10, Window: time.Minute, Burst: 5, TTL: 5 * time.Minute},
		ObjectStore:      config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Identity == nil {
		t.Fatal("expected identity directory to be configured")
	}
	if deps.Friends == nil {
		t.Fatal("expected friend service to be configured")
	}
	if deps.Events == nil {
		t.Fatal("expected event repository to be configured")
	}
	if deps.Participation == nil {
		t.Fatal("expected participation service to be configured")
	}
	if deps.Posts == nil {
		t.Fatal("expected post repository to be configured")
	}
	if deps.Verification == nil {
		t.Fatal("expected verification service to be configured")
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected auth rate limiter to be configured")
	}
}

func TestBuildDependenciesWithoutObjectStore(t *testing.T) {
	deps, err := buildDependencies(context.Background(), fakePool{}, config.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Verification == nil {
		t.Fatal("expected verification service even without document storage")
	}
}
