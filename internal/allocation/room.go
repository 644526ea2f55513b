package allocation

import (
	"fmt"
	"time"

	"housing-allocation-backend/internal/model"
)

// RoomAllocator picks a room number for an accepted on-campus offer.
// Implementations must return a non-empty string.
type RoomAllocator interface {
	Allocate(res model.Residence) string
}

// ClockRoomAllocator is a placeholder allocator: the residence block (or "Block") followed by
// the current unix time modulo 1000. It does not check for collisions and does not consult
// available_rooms.
type ClockRoomAllocator struct {
	Now func() time.Time
}

// Allocate implements RoomAllocator.
func (a ClockRoomAllocator) Allocate(res model.Residence) string {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	prefix := res.Block
	if prefix == "" {
		prefix = "Block"
	}
	return fmt.Sprintf("%s-%d", prefix, now().Unix()%1000)
}
