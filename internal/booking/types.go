package booking

// TimeSlot is a fixed reservation period offered by the restaurant,
// provided by the backend once per session.
type TimeSlot struct {
	ID        int
	StartTime string // "18:00"
	EndTime   string // "19:30"
}

// FormattedRange returns the slot label, e.g. "18:00 - 19:30".
func (ts TimeSlot) FormattedRange() string {
	return ts.StartTime + " - " + ts.EndTime
}

// Settings are the system settings the flow needs, immutable per session.
type Settings struct {
	MaxAdvanceBookingDays int
}

// Stage is the explicit state of the booking flow. A single tagged stage
// replaces the web client's pile of independent booleans, so impossible
// combinations (a chosen slot without a date, a submit while slots are
// still loading) cannot be represented.
type Stage int

const (
	StageIdle Stage = iota
	StageSlotsLoading
	StageReady
	StageConfirming
	StageSubmitting
	StageConfirmed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageSlotsLoading:
		return "slots_loading"
	case StageReady:
		return "ready"
	case StageConfirming:
		return "confirming"
	case StageSubmitting:
		return "submitting"
	case StageConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}
