package store

import (
	"context"
	"fmt"

	"housing-allocation-backend/internal/model"
)

// GetStudent returns a student by id.
func (s *gormStore) GetStudent(ctx context.Context, id int64) (*model.Student, error) {
	var st model.Student
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&st).Error; err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

// GetStudentByNumber returns a student by student number.
func (s *gormStore) GetStudentByNumber(ctx context.Context, studentNumber string) (*model.Student, error) {
	var st model.Student
	if err := s.db.WithContext(ctx).Where("student_number = ?", studentNumber).First(&st).Error; err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

// ListStudents returns all students ordered by student number.
func (s *gormStore) ListStudents(ctx context.Context) ([]model.Student, error) {
	students := make([]model.Student, 0)
	if err := s.db.WithContext(ctx).Order("student_number ASC").Find(&students).Error; err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// CreateStudent inserts a student. A taken student number yields ErrDuplicate.
func (s *gormStore) CreateStudent(ctx context.Context, st *model.Student) error {
	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("student %s: %w", st.StudentNumber, ErrDuplicate)
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// UpdateStudentPassword stores a new password hash.
func (s *gormStore) UpdateStudentPassword(ctx context.Context, id int64, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("id = ?", id).
		Update("password", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("update password for student %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
