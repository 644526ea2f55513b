package model

import "time"

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
	StatusAccepted ApplicationStatus = "Accepted"
)

// Terminal reports whether no further transition is defined from s.
func (s ApplicationStatus) Terminal() bool {
	return s == StatusRejected || s == StatusAccepted
}

// Application is one student's request for one residence.
// At most one application exists per (StudentID, ResidenceID).
type Application struct {
	ID          int64             `gorm:"primaryKey" json:"id"`
	StudentID   int64             `gorm:"not null;uniqueIndex:uq_student_residence,priority:1" json:"student_id"`
	ResidenceID int64             `gorm:"not null;uniqueIndex:uq_student_residence,priority:2;index" json:"residence_id"`
	Status      ApplicationStatus `gorm:"size:16;not null;default:Pending;index" json:"status"`
	ApplyDate   time.Time         `gorm:"not null" json:"apply_date"`
	RoomNumber  *string           `gorm:"size:50" json:"room_number"`

	// Associations
	Student   Student   `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Residence Residence `gorm:"constraint:OnDelete:CASCADE" json:"residence,omitempty"`
}
