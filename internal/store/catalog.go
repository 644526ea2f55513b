package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/parse"
)

// FindResidence resolves a residence by name and block.
// Lookup order: exact (name, block); the block rewritten to its dashed form; name alone.
// The name-only fallback serves residences without blocks and returns the lowest id on ties.
func (s *gormStore) FindResidence(ctx context.Context, name, block string) (*model.Residence, error) {
	name = strings.TrimSpace(name)
	block = strings.TrimSpace(block)
	db := s.db.WithContext(ctx)

	res, err := firstResidence(db.Where("name = ? AND block = ?", name, block))
	if err == nil || !errors.Is(err, ErrNotFound) {
		return res, err
	}

	if block != "" {
		if alt, ok := parse.NormalizeBlock(block); ok && alt != block {
			res, err = firstResidence(db.Where("name = ? AND block = ?", name, alt))
			if err == nil || !errors.Is(err, ErrNotFound) {
				return res, err
			}
		}
	}

	return firstResidence(db.Where("name = ?", name))
}

func firstResidence(q *gorm.DB) (*model.Residence, error) {
	var r model.Residence
	if err := q.First(&r).Error; err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// GetResidence returns a residence by id.
func (s *gormStore) GetResidence(ctx context.Context, id int64) (*model.Residence, error) {
	return firstResidence(s.db.WithContext(ctx).Where("id = ?", id))
}

// ListResidences returns the catalog ordered by name and block.
func (s *gormStore) ListResidences(ctx context.Context, filter ResidenceFilter) ([]model.Residence, error) {
	q := s.db.WithContext(ctx).Model(&model.Residence{})
	if filter.OnCampus != nil {
		q = q.Where("on_campus = ?", *filter.OnCampus)
	}
	if filter.Type != nil {
		q = q.Where("residence_type = ?", *filter.Type)
	}

	residences := make([]model.Residence, 0)
	if err := q.Order("name ASC").Order("block ASC").Find(&residences).Error; err != nil {
		return nil, fmt.Errorf("list residences: %w", err)
	}
	return residences, nil
}

// UpsertResidence returns the id of the residence with r's name and block, inserting r if absent.
// Concurrent calls for the same key converge on one row: the insert is ON CONFLICT DO NOTHING
// against the (name, block) unique index and the loser re-reads the winner's id.
// Existing rows are never updated.
func (s *gormStore) UpsertResidence(ctx context.Context, r model.Residence) (int64, error) {
	r.ID = 0
	r.Name = strings.TrimSpace(r.Name)
	r.Block = strings.TrimSpace(r.Block)
	db := s.db.WithContext(ctx)

	existing, err := firstResidence(db.Where("name = ? AND block = ?", r.Name, r.Block))
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return 0, fmt.Errorf("lookup residence: %w", err)
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "block"}},
		DoNothing: true,
	}).Create(&r)
	if result.Error != nil && !isUniqueViolation(result.Error) {
		return 0, fmt.Errorf("insert residence: %w", result.Error)
	}
	if result.Error == nil && result.RowsAffected > 0 && r.ID != 0 {
		log.WithFields(log.Fields{"residence_id": r.ID, "name": r.Name, "block": r.Block}).Info("residence created")
		return r.ID, nil
	}

	winner, err := firstResidence(db.Where("name = ? AND block = ?", r.Name, r.Block))
	if err != nil {
		return 0, fmt.Errorf("reload residence after conflict: %w", err)
	}
	return winner.ID, nil
}

// ResidenceStats returns every residence with the number of accepted applications against it.
func (s *gormStore) ResidenceStats(ctx context.Context) ([]ResidenceStat, error) {
	residences, err := s.ListResidences(ctx, ResidenceFilter{})
	if err != nil {
		return nil, err
	}

	type aggRow struct {
		ResidenceID int64
		Accepted    int64
	}
	var aggs []aggRow
	if err := s.db.WithContext(ctx).
		Model(&model.Application{}).
		Select("residence_id AS residence_id, COUNT(*) AS accepted").
		Where("status = ?", model.StatusAccepted).
		Group("residence_id").
		Scan(&aggs).Error; err != nil {
		return nil, fmt.Errorf("aggregate accepted applications: %w", err)
	}

	counts := make(map[int64]int64, len(aggs))
	for _, a := range aggs {
		counts[a.ResidenceID] = a.Accepted
	}

	stats := make([]ResidenceStat, 0, len(residences))
	for _, r := range residences {
		stats = append(stats, ResidenceStat{Residence: r, AcceptedCount: counts[r.ID]})
	}
	return stats, nil
}

// AcceptedOffCampusStudents lists students holding an accepted offer at an off-campus residence.
func (s *gormStore) AcceptedOffCampusStudents(ctx context.Context, residenceID int64) ([]model.Student, error) {
	students := make([]model.Student, 0)
	err := s.db.WithContext(ctx).
		Joins("JOIN applications ON applications.student_id = students.id").
		Joins("JOIN residences ON residences.id = applications.residence_id").
		Where("applications.status = ? AND residences.on_campus = ? AND residences.id = ?", model.StatusAccepted, false, residenceID).
		Order("students.last_name ASC").Order("students.first_name ASC").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("list accepted off-campus students: %w", err)
	}
	return students, nil
}
