package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"housing-allocation-backend/internal/model"
)

// PutSubscription creates or replaces a push subscription, keyed by endpoint.
func (s *gormStore) PutSubscription(ctx context.Context, sub model.PushSubscription) error {
	err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"student_id", "p256dh", "auth"}),
		}).Create(&sub).Error
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes a student's subscription for an endpoint.
func (s *gormStore) DeleteSubscription(ctx context.Context, studentID int64, endpoint string) error {
	result := s.db.WithContext(ctx).
		Where("student_id = ? AND endpoint = ?", studentID, endpoint).
		Delete(&model.PushSubscription{})
	if result.Error != nil {
		return fmt.Errorf("delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubscriptionByEndpoint removes an expired subscription regardless of owner.
func (s *gormStore) DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).
		Where("endpoint = ?", endpoint).
		Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("delete subscription %s: %w", endpoint, err)
	}
	return nil
}

// StudentSubscriptions returns a student's push subscriptions.
func (s *gormStore) StudentSubscriptions(ctx context.Context, studentID int64) ([]model.PushSubscription, error) {
	subs := make([]model.PushSubscription, 0)
	if err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscriptions for student %d: %w", studentID, err)
	}
	return subs, nil
}
