package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"housing-allocation-backend/internal/model"
)

// ResidenceFilter narrows a catalog listing. Nil fields are not applied.
type ResidenceFilter struct {
	OnCampus *bool
	Type     *model.ResidenceType
}

// ResidenceStat is a residence with the number of accepted offers against it.
type ResidenceStat struct {
	model.Residence
	AcceptedCount int64 `json:"accepted_count"`
}

// BatchItem is one resolved selection of a bulk-create.
type BatchItem struct {
	ResidenceID int64
	OnCampus    bool
}

// BatchValidator is called inside the bulk-create transaction with the student's
// current on-campus application count. A non-nil error aborts the batch.
type BatchValidator func(existingOnCampus int) error

// Store defines the interface for all database operations.
type Store interface {
	// Residence catalog
	FindResidence(ctx context.Context, name, block string) (*model.Residence, error)
	GetResidence(ctx context.Context, id int64) (*model.Residence, error)
	ListResidences(ctx context.Context, filter ResidenceFilter) ([]model.Residence, error)
	UpsertResidence(ctx context.Context, r model.Residence) (int64, error)
	ResidenceStats(ctx context.Context) ([]ResidenceStat, error)
	AcceptedOffCampusStudents(ctx context.Context, residenceID int64) ([]model.Student, error)

	// Students
	GetStudent(ctx context.Context, id int64) (*model.Student, error)
	GetStudentByNumber(ctx context.Context, studentNumber string) (*model.Student, error)
	ListStudents(ctx context.Context) ([]model.Student, error)
	CreateStudent(ctx context.Context, s *model.Student) error
	UpdateStudentPassword(ctx context.Context, id int64, passwordHash string) error

	// Applications
	CreateApplications(ctx context.Context, studentID int64, batch []BatchItem, now time.Time, validate BatchValidator) ([]int64, error)
	GetApplication(ctx context.Context, id int64) (*model.Application, error)
	TransitionApplication(ctx context.Context, id int64, from, to model.ApplicationStatus, roomNumber *string) error
	StudentApplications(ctx context.Context, studentID int64) ([]model.Application, error)
	AllApplications(ctx context.Context) ([]model.Application, error)

	// Push subscriptions
	PutSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, studentID int64, endpoint string) error
	DeleteSubscriptionByEndpoint(ctx context.Context, endpoint string) error
	StudentSubscriptions(ctx context.Context, studentID int64) ([]model.PushSubscription, error)

	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Ping checks that a pooled connection can reach the database.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
