package enums

import "fmt"

// VisitStatus tracks a farm visit booking.
type VisitStatus string

const (
	VisitStatusPending   VisitStatus = "pending"
	VisitStatusConfirmed VisitStatus = "confirmed"
	VisitStatusCompleted VisitStatus = "completed"
	VisitStatusCancelled VisitStatus = "cancelled"
)

var validVisitStatuses = []VisitStatus{
	VisitStatusPending,
	VisitStatusConfirmed,
	VisitStatusCompleted,
	VisitStatusCancelled,
}

var visitTransitions = map[VisitStatus][]VisitStatus{
	VisitStatusPending:   {VisitStatusConfirmed, VisitStatusCancelled},
	VisitStatusConfirmed: {VisitStatusCompleted, VisitStatusCancelled},
}

func (v VisitStatus) String() string {
	return string(v)
}

func (v VisitStatus) IsValid() bool {
	for _, candidate := range validVisitStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// HoldsSeats reports whether a visit in this status occupies slot capacity.
func (v VisitStatus) HoldsSeats() bool {
	return v == VisitStatusPending || v == VisitStatusConfirmed
}

func (v VisitStatus) CanTransitionTo(next VisitStatus) bool {
	for _, candidate := range visitTransitions[v] {
		if candidate == next {
			return true
		}
	}
	return false
}

func ParseVisitStatus(value string) (VisitStatus, error) {
	for _, candidate := range validVisitStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid visit status %q", value)
}

// VisitPurpose is the declared reason for a farm visit.
type VisitPurpose string

const (
	VisitPurposeTour         VisitPurpose = "tour"
	VisitPurposePurchase     VisitPurpose = "purchase"
	VisitPurposeConsultation VisitPurpose = "consultation"
	VisitPurposeInspection   VisitPurpose = "inspection"
	VisitPurposeOther        VisitPurpose = "other"
)

var validVisitPurposes = []VisitPurpose{
	VisitPurposeTour,
	VisitPurposePurchase,
	VisitPurposeConsultation,
	VisitPurposeInspection,
	VisitPurposeOther,
}

func (p VisitPurpose) IsValid() bool {
	for _, candidate := range validVisitPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParseVisitPurpose(value string) (VisitPurpose, error) {
	for _, candidate := range validVisitPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid visit purpose %q", value)
}
