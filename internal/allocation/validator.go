package allocation

import (
	"fmt"

	"housing-allocation-backend/internal/store"
)

// MaxOnCampus is the cumulative on-campus application cap per student.
const MaxOnCampus = 2

// Tally counts a resolved batch by campus.
type Tally struct {
	OnCampus  int
	OffCampus int
}

// Count tallies the batch. Off-campus selections are counted for reporting only.
func Count(batch []store.BatchItem) Tally {
	var t Tally
	for _, item := range batch {
		if item.OnCampus {
			t.OnCampus++
		} else {
			t.OffCampus++
		}
	}
	return t
}

// ValidateBatch checks the batch on its own: no more than MaxOnCampus on-campus selections.
func ValidateBatch(t Tally) error {
	if t.OnCampus > MaxOnCampus {
		return fmt.Errorf("%w: cannot select more than %d on-campus residences", ErrValidation, MaxOnCampus)
	}
	return nil
}

// ValidateCumulative checks the batch against the student's existing on-campus applications.
// It must run against a count read in the same transaction as the insert.
func ValidateCumulative(existingOnCampus int, t Tally) error {
	if existingOnCampus+t.OnCampus > MaxOnCampus {
		return fmt.Errorf("%w: on-campus application limit exceeded (max %d, already %d)", ErrValidation, MaxOnCampus, existingOnCampus)
	}
	return nil
}
