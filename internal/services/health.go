package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/logging"
	"github.com/localnerve/foodgram/internal/utils"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck checks the database and, when configured, the Authorizer
// concurrently.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB) HealthCheckResult {
	log := logging.WithComponent("health")
	result := HealthCheckResult{
		Status:     "healthy",
		Authorizer: "disabled",
		Details:    make(map[string]string),
	}

	var mu sync.Mutex
	fail := func(detailKey string, err error, message string) {
		mu.Lock()
		defer mu.Unlock()
		result.Status = "unhealthy"
		result.Details[detailKey] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = message
		} else {
			result.ErrorMessage += "; " + message
		}
		log.Warn().Err(err).Msg("health check failed")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := utils.PingDatabase(gctx, db); err != nil {
			fail("database_error", err, fmt.Sprintf("Database check failed: %v", err))
			mu.Lock()
			result.Database = "unreachable"
			mu.Unlock()
			return nil
		}
		mu.Lock()
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
		mu.Unlock()
		return nil
	})

	if cfg.AuthzURL != "" {
		g.Go(func() error {
			if err := utils.PingAuthorizer(gctx, cfg.AuthzURL); err != nil {
				fail("authorizer_error", err, fmt.Sprintf("Authorizer ping failed: %v", err))
				mu.Lock()
				result.Authorizer = "unreachable"
				mu.Unlock()
				return nil
			}
			mu.Lock()
			result.Authorizer = "ok"
			result.Details["authorizer_url"] = cfg.AuthzURL
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	if result.Status == "healthy" {
		log.Debug().Msg("health check passed")
	}
	return result
}
