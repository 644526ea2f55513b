package model

import "time"

// Student is an applicant. The core only reads students and updates their password.
type Student struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	StudentNumber string    `gorm:"size:50;not null;uniqueIndex" json:"student_number"`
	PasswordHash  string    `gorm:"column:password;size:255;not null" json:"-"`
	FirstName     string    `gorm:"size:100" json:"first_name"`
	LastName      string    `gorm:"size:100" json:"last_name"`
	Email         string    `gorm:"size:200" json:"email"`
	Phone         string    `gorm:"size:50" json:"phone"`
	Gender        string    `gorm:"size:16;not null;default:other" json:"gender"`
	Program       string    `gorm:"size:255" json:"program"`
	YearOfStudy   int       `json:"year_of_study"`
	CreatedAt     time.Time `json:"created_at"`
}

// FullName joins the first and last name.
func (s Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
