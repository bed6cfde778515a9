package app

import (
	"context"
	"fmt"

	"github.com/gatherly/backend/internal/auth"
	"github.com/gatherly/backend/internal/config"
	"github.com/gatherly/backend/internal/db"
	"github.com/gatherly/backend/internal/events"
	"github.com/gatherly/backend/internal/friends"
	"github.com/gatherly/backend/internal/handlers"
	"github.com/gatherly/backend/internal/identity"
	"github.com/gatherly/backend/internal/middleware"
	"github.com/gatherly/backend/internal/repositories"
	"github.com/gatherly/backend/internal/storage"
	"github.com/gatherly/backend/internal/verification"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	directory := identity.NewCachingDirectory(users, cfg.IdentityCacheTTL)

	var docs verification.DocumentStorage
	if cfg.ObjectStore.Bucket != "" {
		s3docs, err := storage.NewS3DocumentStorage(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, fmt.Errorf("configure document storage: %w", err)
		}
		docs = s3docs
	}

	limiter := middleware.NewIPRateLimiter(
		cfg.AuthRateLimit.Requests,
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.Burst,
		cfg.AuthRateLimit.TTL,
	)

	return handlers.Dependencies{
		Users:         users,
		Sessions:      auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, repositories.NewPostgresSessionStore(pool)),
		Identity:      directory,
		Friends:       friends.NewService(repositories.NewPostgresFriendStore(pool)),
		Events:        repositories.NewPostgresEventRepository(pool),
		Participation: events.NewParticipation(repositories.NewPostgresParticipationStore(pool)),
		Posts:         repositories.NewPostgresPostRepository(pool),
		Verification:  verification.NewService(repositories.NewPostgresVerificationStore(pool), docs),
		AuthLimiter:   limiter,
	}, nil
}
