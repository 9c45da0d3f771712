package domain

import "time"

// UsefulLifeYears is the replacement policy for every asset kind.
const UsefulLifeYears = 3

const (
	criticalDays = 90
	warningDays  = 180
)

// LifecycleStatus is the urgency band derived from remaining useful life.
type LifecycleStatus string

const (
	StatusNormal   LifecycleStatus = "normal"
	StatusWarning  LifecycleStatus = "warning"
	StatusCritical LifecycleStatus = "critical"
	StatusExpired  LifecycleStatus = "expired"
)

// LifecycleStatuses lists every status from least to most urgent.
var LifecycleStatuses = []LifecycleStatus{StatusNormal, StatusWarning, StatusCritical, StatusExpired}

// Description returns the wording used in reports.
func (s LifecycleStatus) Description() string {
	switch s {
	case StatusExpired:
		return "end of life reached"
	case StatusCritical:
		return "near end of life"
	case StatusWarning:
		return "approaching end of life"
	default:
		return "in service"
	}
}

// Lifecycle is the classification of one asset at a point in time.
type Lifecycle struct {
	EndOfLife     time.Time       `json:"endOfLife"`
	Remaining     time.Duration   `json:"-"`
	RemainingDays int             `json:"remainingDays"`
	Status        LifecycleStatus `json:"status"`
}

// EndOfLife returns purchaseDate plus UsefulLifeYears.
func EndOfLife(purchaseDate time.Time) time.Time {
	return purchaseDate.AddDate(UsefulLifeYears, 0, 0)
}

// Classify maps the remaining life at now to a status band.
// Bands: remaining <= 0 expired; under 90 whole days critical; under 180 warning; otherwise normal.
// Exactly 90 days is warning and exactly 180 is normal.
func Classify(purchaseDate, now time.Time) Lifecycle {
	eol := EndOfLife(purchaseDate)
	remaining := eol.Sub(now)
	days := int(remaining / (24 * time.Hour))

	var status LifecycleStatus
	switch {
	case remaining <= 0:
		status = StatusExpired
	case days < criticalDays:
		status = StatusCritical
	case days < warningDays:
		status = StatusWarning
	default:
		status = StatusNormal
	}

	return Lifecycle{
		EndOfLife:     eol,
		Remaining:     remaining,
		RemainingDays: days,
		Status:        status,
	}
}
