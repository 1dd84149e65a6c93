package scheduling

import (
	"fmt"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"

	"github.com/google/uuid"
)

const (
	minSlotIntervalMinutes  int32 = 5
	maxSlotIntervalMinutes  int32 = 60
	slotIntervalStepMinutes int32 = 5
)

type Doctor struct {
	ID        int64     `json:"-" dbfield:"id"`
	UserID    int64     `json:"-" dbfield:"user_id"`
	UUID      uuid.UUID `json:"uuid" dbfield:"uuid"`
	Name      string    `json:"name" dbfield:"name"`
	Email     string    `json:"email" dbfield:"email"`
	Specialty string    `json:"specialty" dbfield:"specialty"`
}

type Patient struct {
	ID     int64     `json:"-" dbfield:"id"`
	UserID int64     `json:"-" dbfield:"user_id"`
	UUID   uuid.UUID `json:"uuid" dbfield:"uuid"`
	Name   string    `json:"name" dbfield:"name"`
	Email  string    `json:"email" dbfield:"email"`
}

// Actor identifies who is performing an operation. It is resolved once at the
// HTTP boundary and carries the matching profile for the role, so the core never
// has to probe the user for one.
type Actor struct {
	Role    auth.Role
	Doctor  *Doctor
	Patient *Patient
}

// ScheduleWindow is a doctor-declared open interval on a specific date during
// which appointments may be placed. The interval is half-open, [start, end).
type ScheduleWindow struct {
	ID           int64     `json:"-" dbfield:"id"`
	UUID         uuid.UUID `json:"uuid" dbfield:"uuid"`
	DoctorID     int64     `json:"-" dbfield:"doctor_id"`
	WorkDate     time.Time `json:"work_date" dbfield:"work_date"`
	StartTime    TimeOfDay `json:"start_time" dbfield:"start_time"`
	EndTime      TimeOfDay `json:"end_time" dbfield:"end_time"`
	SlotInterval int32     `json:"slot_interval" dbfield:"slot_interval"`
}

// Slots returns the ordered slot start times derived from the window.
//
// A start time is kept as long as it is strictly before the end time, so when
// the range is not an exact multiple of the interval the last slot overruns the
// end rather than being dropped. Same window, same sequence, always.
func (w ScheduleWindow) Slots() []TimeOfDay {
	slots := make([]TimeOfDay, 0)
	if w.SlotInterval <= 0 {
		return slots
	}
	for current := w.StartTime; current < w.EndTime; current += TimeOfDay(w.SlotInterval) {
		slots = append(slots, current)
	}
	return slots
}

// Contains checks if the given time falls within the window's range.
func (w ScheduleWindow) Contains(t TimeOfDay) bool {
	return w.StartTime <= t && t < w.EndTime
}

// Overlaps checks if the window's range touches the given range. Boundaries
// count as overlapping, so adjacent windows are rejected too.
func (w ScheduleWindow) Overlaps(start TimeOfDay, end TimeOfDay) bool {
	return w.StartTime <= end && w.EndTime >= start
}

// WindowRequest is the payload doctors submit to publish or change an
// availability window.
type WindowRequest struct {
	WorkDate     string `json:"work_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	SlotInterval int32  `json:"slot_interval"`
}

// Validate checks the request and returns the window it describes.
func (r WindowRequest) Validate() (*ScheduleWindow, error) {
	if r.WorkDate == "" {
		return nil, apierrors.NewValidationError("work_date", "required")
	}
	if r.StartTime == "" {
		return nil, apierrors.NewValidationError("start_time", "required")
	}
	if r.EndTime == "" {
		return nil, apierrors.NewValidationError("end_time", "required")
	}
	workDate, err := time.Parse("2006-01-02", r.WorkDate)
	if err != nil {
		return nil, apierrors.NewValidationError("work_date", "must use the format YYYY-MM-DD")
	}
	startTime, err := ParseTimeOfDay(r.StartTime)
	if err != nil {
		return nil, apierrors.NewValidationError("start_time", "must use the format HH:MM")
	}
	endTime, err := ParseTimeOfDay(r.EndTime)
	if err != nil {
		return nil, apierrors.NewValidationError("end_time", "must use the format HH:MM")
	}
	if r.SlotInterval%slotIntervalStepMinutes != 0 {
		return nil, apierrors.NewValidationError("slot_interval", "the appointment duration must be a multiple of 5 minutes")
	}
	if r.SlotInterval < minSlotIntervalMinutes || r.SlotInterval > maxSlotIntervalMinutes {
		return nil, apierrors.NewValidationError("slot_interval", "the appointment duration must be between 5 and 60 minutes")
	}
	if endTime < startTime {
		return nil, apierrors.NewValidationError("end_time", "end time is before start time")
	}
	duration := int32(endTime - startTime)
	if r.SlotInterval > duration {
		return nil, apierrors.NewValidationError("slot_interval", "the interval is longer than the specified time range")
	}
	if duration%r.SlotInterval != 0 {
		suggestedEnd := startTime + TimeOfDay((duration/r.SlotInterval)*r.SlotInterval)
		return nil, apierrors.NewValidationError("end_time", fmt.Sprintf("the interval does not fit within the specified time range, suggested end time: %s", suggestedEnd))
	}
	return &ScheduleWindow{
		WorkDate:     workDate,
		StartTime:    startTime,
		EndTime:      endTime,
		SlotInterval: r.SlotInterval,
	}, nil
}

// Appointment is a patient's claim on one slot of a doctor's schedule.
type Appointment struct {
	ID          int64     `json:"-" dbfield:"id"`
	UUID        uuid.UUID `json:"uuid" dbfield:"uuid"`
	DoctorID    int64     `json:"-" dbfield:"doctor_id"`
	Doctor      *Doctor   `json:"doctor,omitempty"`
	PatientID   int64     `json:"-" dbfield:"patient_id"`
	Patient     *Patient  `json:"patient,omitempty"`
	Date        time.Time `json:"date" dbfield:"date"`
	Time        TimeOfDay `json:"time" dbfield:"time"`
	Notes       string    `json:"notes" dbfield:"notes"`
	IsConfirmed bool      `json:"is_confirmed" dbfield:"is_confirmed"`
}

// StartsAt combines the appointment's date and time.
func (a Appointment) StartsAt() time.Time {
	return a.Time.At(a.Date)
}

// AppointmentRequest is the payload patients submit to book a slot. The date
// uses the locale format the schedule screens render, e.g. "Jun. 1, 2025".
type AppointmentRequest struct {
	DoctorUUID string `json:"doctor_uuid"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Notes      string `json:"notes"`
}

// Validate checks if the given request carries all the data needed to book.
func (a AppointmentRequest) Validate() error {
	if a.DoctorUUID == "" || a.Date == "" || a.Time == "" {
		return apierrors.NewValidationError("appointment", "missing data")
	}
	return nil
}

// NotesRequest is the payload doctors submit to annotate an appointment.
type NotesRequest struct {
	Notes string `json:"notes"`
}

// Slot is one bookable opportunity derived from a window. It is a view
// artifact, recomputed on every read, never persisted.
type Slot struct {
	Time    TimeOfDay `json:"time"`
	IsTaken bool      `json:"is_taken"`
	IsPast  bool      `json:"is_past"`
}

// DaySchedule holds the slots of a single calendar date.
type DaySchedule struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

// DoctorSchedule holds a doctor's week, always seven consecutive days sorted
// ascending, with an empty slot list for days without a window.
type DoctorSchedule struct {
	Doctor *Doctor       `json:"doctor"`
	Days   []DaySchedule `json:"days"`
}

// WeekSchedule is the reconciled weekly view over all doctors, with markers to
// page to the adjacent weeks.
type WeekSchedule struct {
	StartOfWeek  string           `json:"start_of_week"`
	EndOfWeek    string           `json:"end_of_week"`
	PreviousWeek string           `json:"previous_week"`
	NextWeek     string           `json:"next_week"`
	Doctors      []DoctorSchedule `json:"doctors"`
}

// AppointmentsOverview splits a patient's appointments around the current moment.
type AppointmentsOverview struct {
	Upcoming []*Appointment `json:"upcoming"`
	Past     []*Appointment `json:"past"`
}
