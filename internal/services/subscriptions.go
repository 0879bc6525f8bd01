package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/foodgram/internal/database"
	"github.com/localnerve/foodgram/internal/metrics"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/types"
	"gorm.io/gorm"
)

// SubscriptionService manages who follows whom.
type SubscriptionService struct {
	DB       *gorm.DB
	Composer *Composer
}

// NewSubscriptionService creates a SubscriptionService.
func NewSubscriptionService(db *gorm.DB, composer *Composer) *SubscriptionService {
	return &SubscriptionService{DB: db, Composer: composer}
}

func (s *SubscriptionService) author(ctx context.Context, authorID uint64) (*models.User, error) {
	var author models.User
	err := s.DB.WithContext(ctx).First(&author, authorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("users.not_found", "User %d not found", authorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", authorID, err)
	}
	return &author, nil
}

// Subscribe makes the viewer follow the author and returns the author's
// view with up to recipesLimit recipes (0 for all).
func (s *SubscriptionService) Subscribe(ctx context.Context, viewer Viewer, authorID uint64, recipesLimit int) (SubscriptionView, error) {
	if !viewer.Authenticated() {
		return SubscriptionView{}, types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	author, err := s.author(ctx, authorID)
	if err != nil {
		return SubscriptionView{}, err
	}
	self := types.ValidationError("subscriptions.validation.self", "You cannot subscribe to yourself")
	if author.ID == viewer.UserID {
		return SubscriptionView{}, self
	}

	db := s.DB.WithContext(ctx)
	conflict := types.Conflict("subscriptions.conflict", "You are already subscribed to %s", author.Username)

	var existing int64
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", viewer.UserID, authorID).
		Count(&existing).Error; err != nil {
		return SubscriptionView{}, fmt.Errorf("failed to check subscription: %w", err)
	}
	if existing > 0 {
		return SubscriptionView{}, conflict
	}

	if err := db.Create(&models.Subscription{UserID: viewer.UserID, AuthorID: authorID}).Error; err != nil {
		switch {
		case database.IsDuplicateKey(err):
			return SubscriptionView{}, conflict
		case database.IsCheckViolation(err):
			return SubscriptionView{}, self
		}
		return SubscriptionView{}, fmt.Errorf("failed to subscribe: %w", err)
	}
	metrics.RelationChanges.WithLabelValues("subscriptions", "add").Inc()

	views, err := s.Composer.SubscriptionViews(ctx, viewer, []models.User{*author}, recipesLimit)
	if err != nil {
		return SubscriptionView{}, err
	}
	return views[0], nil
}

// Unsubscribe removes the subscription. A missing author or subscription
// fails with NotFound.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, viewer Viewer, authorID uint64) error {
	if !viewer.Authenticated() {
		return types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}
	if _, err := s.author(ctx, authorID); err != nil {
		return err
	}

	result := s.DB.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", viewer.UserID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return types.NotFound("subscriptions.not_found", "You are not subscribed to user %d", authorID)
	}

	metrics.RelationChanges.WithLabelValues("subscriptions", "remove").Inc()
	return nil
}

// List returns the authors the viewer follows, ordered by email.
func (s *SubscriptionService) List(ctx context.Context, viewer Viewer, page PageRequest, recipesLimit int) (Page[SubscriptionView], error) {
	if !viewer.Authenticated() {
		return Page[SubscriptionView]{}, types.Unauthenticated("auth.required", "Authentication credentials were not provided")
	}

	q := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", viewer.UserID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return Page[SubscriptionView]{}, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	if err := page.Check(total); err != nil {
		return Page[SubscriptionView]{}, err
	}

	var authors []models.User
	if err := q.Order("users.email ASC").Limit(page.Limit).Offset(page.Offset()).Find(&authors).Error; err != nil {
		return Page[SubscriptionView]{}, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	views, err := s.Composer.SubscriptionViews(ctx, viewer, authors, recipesLimit)
	if err != nil {
		return Page[SubscriptionView]{}, err
	}
	return Page[SubscriptionView]{Count: total, Results: views, Request: page}, nil
}
