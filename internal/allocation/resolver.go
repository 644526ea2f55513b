package allocation

import (
	"context"
	"errors"
	"fmt"

	"housing-allocation-backend/internal/model"
	"housing-allocation-backend/internal/store"
)

// Catalog is the part of the store the resolver reads.
type Catalog interface {
	FindResidence(ctx context.Context, name, block string) (*model.Residence, error)
	GetResidence(ctx context.Context, id int64) (*model.Residence, error)
}

// Resolve maps every selection to a catalog residence, in input order.
// Resolution is all-or-nothing: the first malformed or unmatched selection fails the batch
// with ErrResolution naming it.
func Resolve(ctx context.Context, catalog Catalog, inputs []SelectionInput) ([]model.Residence, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no residences provided", ErrResolution)
	}

	resolved := make([]model.Residence, 0, len(inputs))
	for i, in := range inputs {
		if in == nil {
			return nil, fmt.Errorf("%w: selection %d is empty", ErrResolution, i+1)
		}
		sel, err := in.Normalize()
		if err != nil {
			return nil, err
		}

		var res *model.Residence
		if sel.ResidenceID != 0 {
			res, err = catalog.GetResidence(ctx, sel.ResidenceID)
		} else {
			res, err = catalog.FindResidence(ctx, sel.Name, sel.Block)
		}
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("%w: residence not found: %s", ErrResolution, sel)
		case err != nil:
			return nil, fmt.Errorf("%w: resolve %s: %v", ErrStoreUnavailable, sel, err)
		}
		resolved = append(resolved, *res)
	}
	return resolved, nil
}
