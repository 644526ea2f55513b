package model

import "time"

// ResidenceType classifies who a residence houses.
type ResidenceType string

const (
	ResidenceMale    ResidenceType = "male"
	ResidenceFemale  ResidenceType = "female"
	ResidenceOffCamp ResidenceType = "offcamp"
)

// Valid reports whether t is one of the known residence types.
func (t ResidenceType) Valid() bool {
	switch t {
	case ResidenceMale, ResidenceFemale, ResidenceOffCamp:
		return true
	}
	return false
}

// Residence is a housing unit, optionally subdivided into blocks.
// (Name, Block) is the natural key; an empty Block means the residence has no sub-units.
type Residence struct {
	ID             int64         `gorm:"primaryKey" json:"id"`
	Name           string        `gorm:"size:200;not null;uniqueIndex:uq_residence_name_block,priority:1" json:"residence_name"`
	Block          string        `gorm:"size:100;not null;default:'';uniqueIndex:uq_residence_name_block,priority:2" json:"block"`
	OnCampus       bool          `gorm:"not null;index" json:"on_campus"`
	Type           ResidenceType `gorm:"column:residence_type;size:16;not null;default:offcamp" json:"residence_type"`
	AvailableRooms int           `gorm:"not null;default:0" json:"available_rooms"`
	Restrictions   string        `gorm:"size:200" json:"restrictions"`
	CreatedAt      time.Time     `json:"-"`
	UpdatedAt      time.Time     `json:"-"`
}

// Label renders the residence the way students select it, e.g. "DBSA Male - M-5".
func (r Residence) Label() string {
	if r.Block == "" {
		return r.Name
	}
	return r.Name + " - " + r.Block
}
