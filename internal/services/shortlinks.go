package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/localnerve/foodgram/internal/metrics"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/types"
	"gorm.io/gorm"
)

const (
	shortCodeLength = 8
	shortCodeTries  = 5
	base62          = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// ShortLinks maps short codes to site paths. Code to path pairs never
// change, so resolutions are cached.
type ShortLinks struct {
	DB    *gorm.DB
	cache *lru.Cache
}

// NewShortLinks creates a resolver with an LRU cache of cacheSize entries.
func NewShortLinks(db *gorm.DB, cacheSize int) (*ShortLinks, error) {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create short link cache: %w", err)
	}
	return &ShortLinks{DB: db, cache: cache}, nil
}

// RecipePath is the canonical detail path of a recipe.
func RecipePath(recipeID uint64) string {
	return fmt.Sprintf("/recipes/%d/", recipeID)
}

// ShortURL is the public URL of a code.
func ShortURL(siteURL, code string) string {
	return siteURL + "/s/" + code
}

func newShortCode() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:])
	code := make([]byte, 0, shortCodeLength)
	base := big.NewInt(int64(len(base62)))
	mod := new(big.Int)
	for len(code) < shortCodeLength {
		n.DivMod(n, base, mod)
		code = append(code, base62[mod.Int64()])
	}
	return string(code)
}

// Create registers a code for fullPath inside tx, reusing an existing link
// for the same path.
func (s *ShortLinks) Create(tx *gorm.DB, fullPath string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := tx.Where("full_path = ?", fullPath).First(&link).Error
	if err == nil {
		return &link, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up short link: %w", err)
	}

	for range shortCodeTries {
		code := newShortCode()
		var taken int64
		if err := tx.Model(&models.ShortLink{}).Where("code = ?", code).Count(&taken).Error; err != nil {
			return nil, fmt.Errorf("failed to check short code: %w", err)
		}
		if taken > 0 {
			continue
		}

		link = models.ShortLink{Code: code, FullPath: fullPath}
		if err := tx.Create(&link).Error; err != nil {
			return nil, fmt.Errorf("failed to create short link: %w", err)
		}
		return &link, nil
	}
	return nil, fmt.Errorf("failed to allocate a short code for %s", fullPath)
}

// Resolve returns the full path for code and counts the visit.
func (s *ShortLinks) Resolve(ctx context.Context, code string) (string, error) {
	db := s.DB.WithContext(ctx)

	fullPath, hit := s.cache.Get(code)
	if hit {
		metrics.ShortLinkLookups.WithLabelValues("hit").Inc()
	} else {
		var link models.ShortLink
		err := db.Where("code = ?", code).First(&link).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.ShortLinkLookups.WithLabelValues("not_found").Inc()
			return "", types.NotFound("shortlinks.not_found", "Short link %q not found", code)
		}
		if err != nil {
			return "", fmt.Errorf("failed to resolve short link: %w", err)
		}
		metrics.ShortLinkLookups.WithLabelValues("miss").Inc()
		s.cache.Add(code, link.FullPath)
		fullPath = link.FullPath
	}

	if err := db.Model(&models.ShortLink{}).
		Where("code = ?", code).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1)).Error; err != nil {
		return "", fmt.Errorf("failed to count short link visit: %w", err)
	}

	return fullPath.(string), nil
}

// Evict drops a deleted code from the cache.
func (s *ShortLinks) Evict(code string) {
	s.cache.Remove(code)
}
