package models

import "time"

// ScheduleRequest is the administrative create payload. It mirrors the wire
// shape of the legacy client: "type" plus exactly one of "menu"/"venue", and
// the per-day list under "dailySchedules". The singular "dailySchedule" spelling
// that older servers persisted is still accepted on ingestion; Windows()
// normalizes it. Responses always use the plural.
type ScheduleRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Type        BoundType `json:"type" binding:"required"`
	Restaurant  string    `json:"restaurant" binding:"required"`
	Menu        string    `json:"menu"`
	Venue       string    `json:"venue"`

	DailySchedules    []DayWindow `json:"dailySchedules"`
	DailySchedulesOld []DayWindow `json:"dailySchedule"`
	Timezone          string      `json:"timezone"`
	EffectiveFrom     time.Time   `json:"effectiveFrom" binding:"required"`
	EffectiveTo       *time.Time  `json:"effectiveTo"`

	// Replace requests that an existing active schedule for the same binding
	// be deactivated atomically instead of failing the create with a conflict.
	Replace bool `json:"replace"`
}

// Windows returns the canonical per-day list, falling back to the legacy
// singular field when the plural one is absent.
func (r ScheduleRequest) Windows() []DayWindow {
	if len(r.DailySchedules) > 0 {
		return r.DailySchedules
	}
	return r.DailySchedulesOld
}

// EntityID returns the id matching the declared bound type.
func (r ScheduleRequest) EntityID() string {
	if r.Type == BoundTypeMenu {
		return r.Menu
	}
	return r.Venue
}

// SchedulePatch carries the updatable fields of a schedule. Nil means
// "leave unchanged"; the manager merges the patch onto the stored schedule
// and re-validates the merged whole before persisting.
type SchedulePatch struct {
	Name              *string     `json:"name"`
	Description       *string     `json:"description"`
	DailySchedules    []DayWindow `json:"dailySchedules"`
	DailySchedulesOld []DayWindow `json:"dailySchedule"`
	Timezone          *string     `json:"timezone"`
	EffectiveFrom     *time.Time  `json:"effectiveFrom"`
	EffectiveTo       *time.Time  `json:"effectiveTo"`
	ClearEffectiveTo  bool        `json:"clearEffectiveTo"`
	IsActive          *bool       `json:"isActive"`
}

// Windows returns the patch's per-day list, honoring the legacy field name.
// Empty means the pattern is untouched.
func (p SchedulePatch) Windows() []DayWindow {
	if len(p.DailySchedules) > 0 {
		return p.DailySchedules
	}
	return p.DailySchedulesOld
}
