// Package seed loads the residence catalog and development students from a YAML file.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/pkg/password"
	"housing-allocation-backend/internal/store"
)

// File is the seed file layout.
type File struct {
	Residences []Residence `yaml:"residences"`
	OffCampus  []string    `yaml:"off_campus"`
	Students   []Student   `yaml:"students"`
}

// Residence is one catalog entry.
type Residence struct {
	Name           string `yaml:"name"`
	Block          string `yaml:"block"`
	OnCampus       bool   `yaml:"on_campus"`
	Type           string `yaml:"type"`
	AvailableRooms int    `yaml:"available_rooms"`
	Restrictions   string `yaml:"restrictions"`
}

// Student is a development account. Password is plain text and hashed on insert.
type Student struct {
	StudentNumber string `yaml:"student_number"`
	Password      string `yaml:"password"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	Email         string `yaml:"email"`
	Phone         string `yaml:"phone"`
	Gender        string `yaml:"gender"`
	Program       string `yaml:"program"`
	YearOfStudy   int    `yaml:"year_of_study"`
}

// Catalog creates residences idempotently.
type Catalog interface {
	EnsureResidence(ctx context.Context, r model.Residence) (int64, error)
	SyncOffCampus(ctx context.Context, names []string) ([]model.Residence, error)
}

// Students looks up and creates student rows.
type Students interface {
	GetStudentByNumber(ctx context.Context, studentNumber string) (*model.Student, error)
	CreateStudent(ctx context.Context, s *model.Student) error
}

// Result counts what a seeding run touched.
type Result struct {
	Residences      int
	StudentsCreated int
}

// Load reads a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return &f, nil
}

// Apply seeds the catalog and students. Running it again changes nothing.
func Apply(ctx context.Context, f *File, catalog Catalog, students Students, hashCost int) (Result, error) {
	var res Result
	for _, r := range f.Residences {
		if _, err := catalog.EnsureResidence(ctx, model.Residence{
			Name:           r.Name,
			Block:          r.Block,
			OnCampus:       r.OnCampus,
			Type:           model.ResidenceType(r.Type),
			AvailableRooms: r.AvailableRooms,
			Restrictions:   r.Restrictions,
		}); err != nil {
			return res, fmt.Errorf("seed residence %q %q: %w", r.Name, r.Block, err)
		}
		res.Residences++
	}

	off, err := catalog.SyncOffCampus(ctx, f.OffCampus)
	if err != nil {
		return res, fmt.Errorf("seed off-campus residences: %w", err)
	}
	res.Residences += len(off)

	for _, s := range f.Students {
		_, err := students.GetStudentByNumber(ctx, s.StudentNumber)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return res, fmt.Errorf("look up student %s: %w", s.StudentNumber, err)
		}

		hash, err := password.HashWithCost(s.Password, hashCost)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", s.StudentNumber, err)
		}
		gender := s.Gender
		if gender == "" {
			gender = "other"
		}
		if err := students.CreateStudent(ctx, &model.Student{
			StudentNumber: s.StudentNumber,
			PasswordHash:  hash,
			FirstName:     s.FirstName,
			LastName:      s.LastName,
			Email:         s.Email,
			Phone:         s.Phone,
			Gender:        gender,
			Program:       s.Program,
			YearOfStudy:   s.YearOfStudy,
		}); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				continue
			}
			return res, fmt.Errorf("create student %s: %w", s.StudentNumber, err)
		}
		res.StudentsCreated++
	}

	log.WithFields(log.Fields{"residences": res.Residences, "students_created": res.StudentsCreated}).Info("seed applied")
	return res, nil
}
