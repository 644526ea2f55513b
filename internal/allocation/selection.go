package allocation

import (
	"fmt"
	"strings"

	"housing-allocation-backend/internal/parse"
)

// SelectionInput is one residence choice as submitted by a client.
// Every variant normalizes to a Selection before resolution.
type SelectionInput interface {
	Normalize() (Selection, error)
}

// Selection is the only shape the resolver works with: a residence id, or a name with an
// optional block.
type Selection struct {
	ResidenceID int64
	Name        string
	Block       string
}

func (s Selection) String() string {
	switch {
	case s.ResidenceID != 0:
		return fmt.Sprintf("id %d", s.ResidenceID)
	case s.Block != "":
		return s.Name + " " + s.Block
	}
	return s.Name
}

// ByID selects a residence by catalog id.
type ByID struct {
	ResidenceID int64
}

// Normalize implements SelectionInput.
func (b ByID) Normalize() (Selection, error) {
	if b.ResidenceID <= 0 {
		return Selection{}, fmt.Errorf("%w: invalid residence id %d", ErrResolution, b.ResidenceID)
	}
	return Selection{ResidenceID: b.ResidenceID}, nil
}

// ByName selects a residence by name and block.
type ByName struct {
	Name  string
	Block string
}

// Normalize implements SelectionInput.
func (b ByName) Normalize() (Selection, error) {
	name := strings.TrimSpace(b.Name)
	if name == "" {
		return Selection{}, fmt.Errorf("%w: residence name is required", ErrResolution)
	}
	return Selection{Name: name, Block: strings.TrimSpace(b.Block)}, nil
}

// FreeText is the legacy "Name - Block" selection string.
type FreeText string

// Normalize implements SelectionInput.
func (f FreeText) Normalize() (Selection, error) {
	parsed := parse.ParseFreeText(string(f))
	if parsed.Name == "" {
		return Selection{}, fmt.Errorf("%w: %q has no residence name", ErrResolution, string(f))
	}
	return Selection{Name: parsed.Name, Block: parsed.Block}, nil
}
