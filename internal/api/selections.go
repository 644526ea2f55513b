package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"housing-allocation-backend/internal/allocation"
)

var errInvalidSelection = errors.New("invalid residence selection format")

// selectionObject is the structured selection shape. residence_id wins over name and block.
type selectionObject struct {
	ResidenceID   *int64  `json:"residence_id"`
	ResidenceName *string `json:"residence_name"`
	Block         string  `json:"block"`
}

// decodeSelections accepts legacy "Name - Block" strings and structured objects in one list.
func decodeSelections(raw []json.RawMessage) ([]allocation.SelectionInput, error) {
	out := make([]allocation.SelectionInput, 0, len(raw))
	for i, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			return nil, fmt.Errorf("%w: selection %d", errInvalidSelection, i+1)
		}

		switch item[0] {
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return nil, fmt.Errorf("%w: selection %d", errInvalidSelection, i+1)
			}
			out = append(out, allocation.FreeText(s))
		case '{':
			var obj selectionObject
			if err := json.Unmarshal(item, &obj); err != nil {
				return nil, fmt.Errorf("%w: selection %d", errInvalidSelection, i+1)
			}
			switch {
			case obj.ResidenceID != nil:
				out = append(out, allocation.ByID{ResidenceID: *obj.ResidenceID})
			case obj.ResidenceName != nil:
				out = append(out, allocation.ByName{Name: *obj.ResidenceName, Block: obj.Block})
			default:
				return nil, fmt.Errorf("%w: selection %d needs residence_id or residence_name", errInvalidSelection, i+1)
			}
		default:
			return nil, fmt.Errorf("%w: selection %d", errInvalidSelection, i+1)
		}
	}
	return out, nil
}
