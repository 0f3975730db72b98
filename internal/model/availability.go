package model

// AvailabilitySlotInput is one entry of the weekly schedule save payload:
// the flat (day, time, available) form the schedule editor submits. The full
// set replaces the doctor's previous template.
type AvailabilitySlotInput struct {
	DayOfWeek   int    `json:"day_of_week" binding:"min=0,max=6"`
	Time        string `json:"time" binding:"required,timeofday"`
	IsAvailable bool   `json:"is_available"`
}

type UpdateAvailabilityRequest struct {
	Slots []AvailabilitySlotInput `json:"slots" binding:"required,dive"`
}
