package visits

import "slices"

// Slots are the bookable start times of a farm visit, in farm local time.
var Slots = []string{"09:00", "10:00", "11:00", "12:00", "14:00", "15:00", "16:00"}

const DefaultSlot = "10:00"

const (
	MinVisitors = 1
	MaxVisitors = 20
)

func IsValidSlot(slot string) bool {
	return slices.Contains(Slots, slot)
}
