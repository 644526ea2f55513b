package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"housing-allocation-backend/internal/model"
)

// CreateApplications inserts one Pending application per batch item in a single transaction.
//
// The student row is locked FOR UPDATE before the existing on-campus count is read, so two
// concurrent batches for the same student run the count-validate-insert sequence one after the
// other. validate sees the count as of the lock. Any duplicate (student, residence) pair, inside
// the batch, already stored, or inserted by a racing transaction, fails the whole batch with
// ErrDuplicate and nothing is committed.
func (s *gormStore) CreateApplications(ctx context.Context, studentID int64, batch []BatchItem, now time.Time, validate BatchValidator) ([]int64, error) {
	if len(batch) == 0 {
		return nil, errors.New("empty application batch")
	}

	var ids []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student model.Student
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", studentID).
			First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("student %d: %w", studentID, ErrNotFound)
			}
			return fmt.Errorf("lock student %d: %w", studentID, err)
		}

		var existingOnCampus int64
		if err := tx.Model(&model.Application{}).
			Joins("JOIN residences ON residences.id = applications.residence_id").
			Where("applications.student_id = ? AND residences.on_campus = ?", studentID, true).
			Count(&existingOnCampus).Error; err != nil {
			return fmt.Errorf("count on-campus applications: %w", err)
		}

		if validate != nil {
			if err := validate(int(existingOnCampus)); err != nil {
				return err
			}
		}

		residenceIDs := make([]int64, 0, len(batch))
		seen := make(map[int64]bool, len(batch))
		for _, item := range batch {
			if seen[item.ResidenceID] {
				return fmt.Errorf("residence %d selected twice: %w", item.ResidenceID, ErrDuplicate)
			}
			seen[item.ResidenceID] = true
			residenceIDs = append(residenceIDs, item.ResidenceID)
		}

		var dupCount int64
		if err := tx.Model(&model.Application{}).
			Where("student_id = ? AND residence_id IN ?", studentID, residenceIDs).
			Count(&dupCount).Error; err != nil {
			return fmt.Errorf("check duplicate applications: %w", err)
		}
		if dupCount > 0 {
			return fmt.Errorf("student %d already applied to a selected residence: %w", studentID, ErrDuplicate)
		}

		apps := make([]model.Application, 0, len(batch))
		for _, item := range batch {
			apps = append(apps, model.Application{
				StudentID:   studentID,
				ResidenceID: item.ResidenceID,
				Status:      model.StatusPending,
				ApplyDate:   now,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&apps).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert applications: %w", ErrDuplicate)
			}
			return fmt.Errorf("insert applications: %w", err)
		}

		ids = make([]int64, 0, len(apps))
		for _, a := range apps {
			ids = append(ids, a.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"student_id": studentID, "application_ids": ids}).Info("applications created")
	return ids, nil
}

// GetApplication returns an application with its student and residence loaded.
func (s *gormStore) GetApplication(ctx context.Context, id int64) (*model.Application, error) {
	var app model.Application
	if err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Residence").
		Where("id = ?", id).
		First(&app).Error; err != nil {
		return nil, notFound(err)
	}
	return &app, nil
}

// TransitionApplication moves an application from one status to another as a compare-and-set.
// roomNumber is written only when non-nil. It returns ErrNotFound when the id does not exist and
// ErrStaleState when the application is no longer in from.
func (s *gormStore) TransitionApplication(ctx context.Context, id int64, from, to model.ApplicationStatus, roomNumber *string) error {
	updates := map[string]any{"status": to}
	if roomNumber != nil {
		updates["room_number"] = *roomNumber
	}

	db := s.db.WithContext(ctx)
	result := db.Model(&model.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update application %d: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&model.Application{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("recheck application %d: %w", id, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStaleState
}

// StudentApplications returns a student's applications, newest first, with residences loaded.
func (s *gormStore) StudentApplications(ctx context.Context, studentID int64) ([]model.Application, error) {
	apps := make([]model.Application, 0)
	if err := s.db.WithContext(ctx).
		Preload("Residence").
		Where("student_id = ?", studentID).
		Order("apply_date DESC").Order("id DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list student applications: %w", err)
	}
	return apps, nil
}

// AllApplications returns every application, newest first, with students and residences loaded.
func (s *gormStore) AllApplications(ctx context.Context) ([]model.Application, error) {
	apps := make([]model.Application, 0)
	if err := s.db.WithContext(ctx).
		Preload("Student").
		Preload("Residence").
		Order("apply_date DESC").Order("id DESC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}
