package models

import "time"

// BoundType identifies which kind of entity a schedule governs. Closed set.
type BoundType string

const (
	BoundTypeMenu  BoundType = "MENU"
	BoundTypeVenue BoundType = "VENUE"
)

// Valid reports whether bt is one of the known bound types.
func (bt BoundType) Valid() bool {
	return bt == BoundTypeMenu || bt == BoundTypeVenue
}

// DayWindow is one weekday's open/close window. DayOfWeek follows time.Weekday
// numbering (0 = Sunday). Times are wall-clock "HH:MM" in the schedule's zone;
// a CloseTime numerically before OpenTime means the window crosses midnight
// into the following day. When IsOpen is false the times are retained as UI
// defaults only and are never consulted during evaluation.
type DayWindow struct {
	DayOfWeek int    `bson:"dayOfWeek" json:"dayOfWeek"`
	IsOpen    bool   `bson:"isOpen" json:"isOpen"`
	OpenTime  string `bson:"openTime" json:"openTime"`
	CloseTime string `bson:"closeTime" json:"closeTime"`
}

// WeeklyPattern holds exactly seven day windows, one per weekday. Construct
// through schedule.NewWeeklyPattern so the invariants are checked atomically;
// replace the whole pattern on edit, never a single day.
type WeeklyPattern struct {
	Days []DayWindow `bson:"days" json:"dailySchedules"`
}

// Window returns the entry for the given weekday (0-6).
func (p WeeklyPattern) Window(dayOfWeek int) DayWindow {
	for _, d := range p.Days {
		if d.DayOfWeek == dayOfWeek {
			return d
		}
	}
	return DayWindow{DayOfWeek: dayOfWeek}
}

// Schedule is the aggregate root: a recurring weekly availability pattern
// bound to a single venue or menu of one restaurant. Never hard-deleted;
// deactivation is the terminal administrative state.
type Schedule struct {
	ID            string        `bson:"id" json:"id"`
	Name          string        `bson:"name" json:"name"`
	Description   string        `bson:"description,omitempty" json:"description,omitempty"`
	BoundType     BoundType     `bson:"boundType" json:"type"`
	BoundEntityID string        `bson:"boundEntityId" json:"entityId"`
	RestaurantID  string        `bson:"restaurantId" json:"restaurant"`
	Timezone      string        `bson:"timezone" json:"timezone"`
	WeeklyPattern WeeklyPattern `bson:"weeklyPattern" json:"weeklyPattern"`
	EffectiveFrom time.Time     `bson:"effectiveFrom" json:"effectiveFrom"`
	EffectiveTo   *time.Time    `bson:"effectiveTo,omitempty" json:"effectiveTo,omitempty"`
	IsActive      bool          `bson:"isActive" json:"isActive"`
	Version       int           `bson:"version" json:"version"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// BindingKey is the (boundType, boundEntityId) pair a schedule governs.
// At most one active schedule may exist per key.
type BindingKey struct {
	BoundType     BoundType
	BoundEntityID string
}

// Binding returns the schedule's binding key.
func (s *Schedule) Binding() BindingKey {
	return BindingKey{BoundType: s.BoundType, BoundEntityID: s.BoundEntityID}
}

// ScheduleStatus is the evaluated open/closed answer for one schedule at a
// given instant, as served by the status endpoint and the Redis cache.
type ScheduleStatus struct {
	Open           bool       `json:"open"`
	NextTransition *time.Time `json:"nextTransition"`
}
