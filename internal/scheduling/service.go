// Package scheduling contains handlers, services and structures used to manage doctor
// availability and appointment booking.
package scheduling

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/configs"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"
	"clinic-booking/internal/metrics"

	"github.com/google/uuid"
)

// Reader determines the methods available to read schedules and appointments.
type Reader interface {

	// GetWeekSchedule returns, for every doctor, the reconciled schedule of the week
	// starting at the given date. A zero start falls back to the current week.
	GetWeekSchedule(ctx context.Context, startOfWeek time.Time) (*WeekSchedule, error)

	// ListPatientAppointments returns the acting patient's appointments split into
	// upcoming and past.
	ListPatientAppointments(ctx context.Context, actor Actor) (*AppointmentsOverview, error)

	// ListDoctorWindows returns the acting doctor's availability windows.
	ListDoctorWindows(ctx context.Context, actor Actor) ([]*ScheduleWindow, error)
}

// Booker determines the methods used to manage the appointment lifecycle.
type Booker interface {

	// CreateAppointment validates and books a slot for the acting patient.
	CreateAppointment(ctx context.Context, actor Actor, request AppointmentRequest) (*Appointment, error)

	// ConfirmAppointment marks the acting patient's appointment as confirmed.
	ConfirmAppointment(ctx context.Context, actor Actor, appointmentUUID uuid.UUID) (*Appointment, error)

	// UpdateAppointmentNotes replaces the notes of an appointment assigned to the acting doctor.
	UpdateAppointmentNotes(ctx context.Context, actor Actor, appointmentUUID uuid.UUID, notes string) (*Appointment, error)

	// DeleteAppointment removes an appointment on behalf of its patient, its doctor or
	// an administrator.
	DeleteAppointment(ctx context.Context, actor Actor, appointmentUUID uuid.UUID) error
}

// Planner determines the methods doctors use to publish availability.
type Planner interface {

	// CreateWindow publishes a new availability window for the acting doctor.
	CreateWindow(ctx context.Context, actor Actor, request WindowRequest) (*ScheduleWindow, error)

	// UpdateWindow changes one of the acting doctor's windows in place.
	UpdateWindow(ctx context.Context, actor Actor, windowUUID uuid.UUID, request WindowRequest) (*ScheduleWindow, error)

	// DeleteWindow removes one of the acting doctor's windows.
	DeleteWindow(ctx context.Context, actor Actor, windowUUID uuid.UUID) error
}

// Maintainer determines the scheduled maintenance operations.
type Maintainer interface {

	// SendDailyReminders notifies every confirmed appointment dated the day after the
	// reference date and returns how many reminders went out. A zero reference falls
	// back to the current date.
	SendDailyReminders(ctx context.Context, referenceDate time.Time) (int, error)

	// PurgeOldSchedules removes availability windows older than the configured
	// retention horizon and returns how many were removed.
	PurgeOldSchedules(ctx context.Context) (int64, error)
}

// Service determines the methods used to manage the clinic schedule.
type Service interface {
	Reader
	Booker
	Planner
	Maintainer

	// ResolveActor resolves the authenticated user into the actor passed to every
	// other operation, loading the profile matching its role.
	ResolveActor(ctx context.Context, user auth.User) (*Actor, error)
}

type defaultService struct {
	repository Repository
	config     configs.Config
	logger     *log.Logger
	clock      Clock
	notifier   Notifier
}

// ServiceOption determines the Functional Options used to create a new Service.
type ServiceOption func(service *defaultService)

// WithClock replaces the source of "now", used by tests to pin the reference time.
func WithClock(clock Clock) ServiceOption {
	return func(service *defaultService) {
		service.clock = clock
	}
}

// WithNotifier replaces the notification sink.
func WithNotifier(notifier Notifier) ServiceOption {
	return func(service *defaultService) {
		service.notifier = notifier
	}
}

// NewService creates a new scheduling service.
func NewService(config configs.Config, dbConn database.Connection, logger *log.Logger, opts ...ServiceOption) Service {
	service := &defaultService{
		config:     config,
		repository: newRepository(dbConn),
		logger:     logger,
		clock:      systemClock{},
	}
	service.notifier = newLogNotifier(logger)
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (d defaultService) ResolveActor(ctx context.Context, user auth.User) (*Actor, error) {
	switch user.Role {
	case auth.DoctorRole:
		doctor, err := d.repository.FindDoctorByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("an unexpected error occurred: %w", err)
		}
		if doctor == nil {
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorNotFound), apierrors.WithHTTPStatusCode(http.StatusForbidden))
		}
		return &Actor{Role: user.Role, Doctor: doctor}, nil
	case auth.PatientRole:
		patient, err := d.repository.FindPatientByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("an unexpected error occurred: %w", err)
		}
		if patient == nil {
			return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrPatientNotFound), apierrors.WithHTTPStatusCode(http.StatusForbidden))
		}
		return &Actor{Role: user.Role, Patient: patient}, nil
	case auth.AdminRole:
		return &Actor{Role: user.Role}, nil
	}
	return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrUnknownRole), apierrors.WithHTTPStatusCode(http.StatusForbidden))
}

// dateOnly drops the time portion of the given moment.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// slotKey identifies one claimable slot. Appointments are projected down to this
// key so occupancy lookups never hit the database per slot.
type slotKey struct {
	doctorID int64
	date     string
	time     TimeOfDay
}

func newSlotKey(doctorID int64, date time.Time, at TimeOfDay) slotKey {
	return slotKey{doctorID: doctorID, date: date.Format("2006-01-02"), time: at}
}

func (d defaultService) GetWeekSchedule(ctx context.Context, startOfWeek time.Time) (*WeekSchedule, error) {
	now := d.clock.Now()
	if startOfWeek.IsZero() {
		startOfWeek = now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
	}
	startOfWeek = dateOnly(startOfWeek)
	endOfWeek := startOfWeek.AddDate(0, 0, 6)
	doctors, err := d.repository.ListDoctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	doctorIDs := make([]int64, 0, len(doctors))
	for _, doctor := range doctors {
		doctorIDs = append(doctorIDs, doctor.ID)
	}
	windows, err := d.repository.ListWindowsByRange(ctx, doctorIDs, startOfWeek, endOfWeek)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointments, err := d.repository.ListAppointmentsByRange(ctx, doctorIDs, startOfWeek, endOfWeek)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	taken := make(map[slotKey]struct{}, len(appointments))
	for _, appointment := range appointments {
		taken[newSlotKey(appointment.DoctorID, appointment.Date, appointment.Time)] = struct{}{}
	}
	windowsByDoctor := make(map[int64][]*ScheduleWindow, len(doctors))
	for _, window := range windows {
		windowsByDoctor[window.DoctorID] = append(windowsByDoctor[window.DoctorID], window)
	}
	schedules := make([]DoctorSchedule, 0, len(doctors))
	for _, doctor := range doctors {
		days := reconcileWeek(doctor.ID, windowsByDoctor[doctor.ID], taken, startOfWeek, now)
		schedules = append(schedules, DoctorSchedule{Doctor: doctor, Days: days})
	}
	return &WeekSchedule{
		StartOfWeek:  startOfWeek.Format("2006-01-02"),
		EndOfWeek:    endOfWeek.Format("2006-01-02"),
		PreviousWeek: startOfWeek.AddDate(0, 0, -7).Format("2006-01-02"),
		NextWeek:     startOfWeek.AddDate(0, 0, 7).Format("2006-01-02"),
		Doctors:      schedules,
	}, nil
}

// reconcileWeek merges the doctor's window slots with the taken-slot lookup over the
// seven days starting at startOfWeek. Every day of the week is present, sorted
// ascending, and days without a window carry an empty slot list. The same "now" is
// used for the whole pass.
func reconcileWeek(doctorID int64, windows []*ScheduleWindow, taken map[slotKey]struct{}, startOfWeek time.Time, now time.Time) []DaySchedule {
	slotsByDate := make(map[string][]Slot)
	for _, window := range windows {
		dateKey := window.WorkDate.Format("2006-01-02")
		for _, at := range window.Slots() {
			_, isTaken := taken[newSlotKey(doctorID, window.WorkDate, at)]
			slotsByDate[dateKey] = append(slotsByDate[dateKey], Slot{
				Time:    at,
				IsTaken: isTaken,
				IsPast:  at.At(window.WorkDate).Before(now),
			})
		}
	}
	days := make([]DaySchedule, 0, 7)
	for dayNum := 0; dayNum < 7; dayNum++ {
		date := startOfWeek.AddDate(0, 0, dayNum)
		dateKey := date.Format("2006-01-02")
		slots := slotsByDate[dateKey]
		if slots == nil {
			slots = []Slot{}
		}
		days = append(days, DaySchedule{Date: dateKey, Slots: slots})
	}
	return days
}

func (d defaultService) ListPatientAppointments(ctx context.Context, actor Actor) (*AppointmentsOverview, error) {
	if actor.Patient == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyPatientCanListOwnVisits), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	appointments, err := d.repository.ListAppointmentsByPatient(ctx, actor.Patient.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	now := d.clock.Now()
	overview := &AppointmentsOverview{Upcoming: make([]*Appointment, 0), Past: make([]*Appointment, 0)}
	for _, appointment := range appointments {
		if appointment.StartsAt().Before(now) {
			overview.Past = append(overview.Past, appointment)
			continue
		}
		overview.Upcoming = append(overview.Upcoming, appointment)
	}
	// past visits are shown most recent first
	sort.Slice(overview.Past, func(i, j int) bool {
		return overview.Past[i].StartsAt().After(overview.Past[j].StartsAt())
	})
	return overview, nil
}

func (d defaultService) ListDoctorWindows(ctx context.Context, actor Actor) ([]*ScheduleWindow, error) {
	if actor.Doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyDoctorCanManageSchedule), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	windows, err := d.repository.ListWindowsByDoctor(ctx, actor.Doctor.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return windows, nil
}

// validateSlot enforces the booking invariant: the requested time must fall inside a
// published window of the doctor and no other live appointment may claim it. The
// update path passes its own id as excludeID to step over its prior identity.
// Containment is checked against the window range, not against slot boundaries.
func (d defaultService) validateSlot(ctx context.Context, doctorID int64, date time.Time, at TimeOfDay, excludeID int64) error {
	windows, err := d.repository.ListWindowsByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		return fmt.Errorf("an unexpected error occurred: %w", err)
	}
	available := false
	for _, window := range windows {
		if window.Contains(at) {
			available = true
			break
		}
	}
	if !available {
		return apierrors.NewValidationError("appointment", string(ErrDoctorNotAvailable))
	}
	count, err := d.repository.CountAppointmentsAt(ctx, doctorID, date, at, excludeID)
	if err != nil {
		return fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if count > 0 {
		return apierrors.NewValidationError("appointment", string(ErrAppointmentOverlaps))
	}
	return nil
}

// notify reports the event to the notification sink. Failures are logged and
// swallowed, they never change the outcome of the operation that triggered them.
func (d defaultService) notify(ctx context.Context, event Event, appointment Appointment) {
	if err := d.notifier.Notify(ctx, event, appointment); err != nil {
		logging.PrintlnWarn(d.logger, fmt.Sprint("could not notify ", event, " for appointment ", appointment.UUID, ": ", err))
	}
}

func (d defaultService) CreateAppointment(ctx context.Context, actor Actor, request AppointmentRequest) (*Appointment, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	if actor.Patient == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyPatientCanBook), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	doctorUUID, err := uuid.Parse(request.DoctorUUID)
	if err != nil {
		return nil, apierrors.NewValidationError("doctor_uuid", string(ErrInvalidIdentifier))
	}
	date, err := ParseAppointmentDate(request.Date)
	if err != nil {
		return nil, err
	}
	at, err := ParseTimeOfDay(request.Time)
	if err != nil {
		return nil, apierrors.NewValidationError("time", err.Error())
	}
	doctor, err := d.repository.FindDoctorByUUID(ctx, doctorUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrDoctorNotFound), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	if err = d.validateSlot(ctx, doctor.ID, date, at, 0); err != nil {
		return nil, err
	}
	appointment := Appointment{
		UUID:      uuid.New(),
		DoctorID:  doctor.ID,
		Doctor:    doctor,
		PatientID: actor.Patient.ID,
		Patient:   actor.Patient,
		Date:      date,
		Time:      at,
		Notes:     request.Notes,
	}
	if err = d.repository.InsertAppointment(ctx, appointment); err != nil {
		// two requests raced past the pre-check, the unique constraint on
		// (doctor, date, time) is the actual guarantee
		if database.IsUniqueViolation(err) {
			return nil, apierrors.NewValidationError("appointment", string(ErrAppointmentOverlaps))
		}
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	metrics.IncAppointmentsCreated()
	d.notify(ctx, EventAppointmentCreated, appointment)
	return &appointment, nil
}

func (d defaultService) ConfirmAppointment(ctx context.Context, actor Actor, appointmentUUID uuid.UUID) (*Appointment, error) {
	if actor.Patient == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyPatientCanConfirm), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil || appointment.PatientID != actor.Patient.ID {
		return nil, apierrors.NewNotFoundError("appointment")
	}
	// re-confirming an already confirmed appointment is a no-op write and
	// produces a duplicate notification
	if err = d.repository.ConfirmAppointment(ctx, appointment.ID); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.IsConfirmed = true
	d.notify(ctx, EventAppointmentConfirmed, *appointment)
	return appointment, nil
}

func (d defaultService) UpdateAppointmentNotes(ctx context.Context, actor Actor, appointmentUUID uuid.UUID, notes string) (*Appointment, error) {
	if actor.Doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyDoctorCanAddNotes), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if appointment == nil || appointment.DoctorID != actor.Doctor.ID {
		return nil, apierrors.NewNotFoundError("appointment")
	}
	if err = d.repository.UpdateAppointmentNotes(ctx, appointment.ID, notes); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	appointment.Notes = notes
	d.notify(ctx, EventNoteAdded, *appointment)
	return appointment, nil
}

func (d defaultService) DeleteAppointment(ctx context.Context, actor Actor, appointmentUUID uuid.UUID) error {
	appointment, err := d.repository.FindAppointmentByUUID(ctx, appointmentUUID)
	if err != nil {
		return fmt.Errorf("an unexpected error occurred: %w", err)
	}
	allowed := actor.Role == auth.AdminRole ||
		(actor.Patient != nil && appointment != nil && actor.Patient.ID == appointment.PatientID) ||
		(actor.Doctor != nil && appointment != nil && actor.Doctor.ID == appointment.DoctorID)
	if appointment == nil || !allowed {
		return apierrors.NewNotFoundError("appointment")
	}
	if err = d.repository.DeleteAppointment(ctx, appointment.ID); err != nil {
		return fmt.Errorf("an unexpected error occurred: %w", err)
	}
	metrics.IncAppointmentsDeleted()
	d.notify(ctx, EventAppointmentDeleted, *appointment)
	return nil
}

func (d defaultService) CreateWindow(ctx context.Context, actor Actor, request WindowRequest) (*ScheduleWindow, error) {
	if actor.Doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyDoctorCanManageSchedule), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	window, err := request.Validate()
	if err != nil {
		return nil, err
	}
	count, err := d.repository.CountOverlappingWindows(ctx, actor.Doctor.ID, window.WorkDate, window.StartTime, window.EndTime, 0)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if count > 0 {
		return nil, apierrors.NewValidationError("schedule", string(ErrScheduleOverlaps))
	}
	window.UUID = uuid.New()
	window.DoctorID = actor.Doctor.ID
	if err = d.repository.InsertWindow(ctx, *window); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apierrors.NewValidationError("schedule", string(ErrScheduleOverlaps))
		}
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return window, nil
}

func (d defaultService) UpdateWindow(ctx context.Context, actor Actor, windowUUID uuid.UUID, request WindowRequest) (*ScheduleWindow, error) {
	if actor.Doctor == nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyDoctorCanManageSchedule), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	existing, err := d.repository.FindWindowByUUID(ctx, windowUUID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if existing == nil || existing.DoctorID != actor.Doctor.ID {
		return nil, apierrors.NewNotFoundError("schedule window")
	}
	window, err := request.Validate()
	if err != nil {
		return nil, err
	}
	count, err := d.repository.CountOverlappingWindows(ctx, actor.Doctor.ID, window.WorkDate, window.StartTime, window.EndTime, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if count > 0 {
		return nil, apierrors.NewValidationError("schedule", string(ErrScheduleOverlaps))
	}
	window.ID = existing.ID
	window.UUID = existing.UUID
	window.DoctorID = existing.DoctorID
	if err = d.repository.UpdateWindow(ctx, *window); err != nil {
		return nil, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return window, nil
}

func (d defaultService) DeleteWindow(ctx context.Context, actor Actor, windowUUID uuid.UUID) error {
	if actor.Doctor == nil {
		return apierrors.NewAPIError(apierrors.WithDetail(ErrOnlyDoctorCanManageSchedule), apierrors.WithHTTPStatusCode(http.StatusForbidden))
	}
	existing, err := d.repository.FindWindowByUUID(ctx, windowUUID)
	if err != nil {
		return fmt.Errorf("an unexpected error occurred: %w", err)
	}
	if existing == nil || existing.DoctorID != actor.Doctor.ID {
		return apierrors.NewNotFoundError("schedule window")
	}
	if err = d.repository.DeleteWindow(ctx, existing.ID); err != nil {
		return fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return nil
}

func (d defaultService) SendDailyReminders(ctx context.Context, referenceDate time.Time) (int, error) {
	if referenceDate.IsZero() {
		referenceDate = d.clock.Now()
	}
	tomorrow := dateOnly(referenceDate).AddDate(0, 0, 1)
	appointments, err := d.repository.ListConfirmedAppointmentsByDate(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	sent := 0
	for _, appointment := range appointments {
		// one failed reminder must not block the rest of the batch
		if err := d.notifier.Notify(ctx, EventReminderDue, *appointment); err != nil {
			logging.PrintlnError(d.logger, fmt.Sprint("could not send reminder for appointment ", appointment.UUID, ": ", err))
			continue
		}
		metrics.IncRemindersSent()
		sent++
	}
	return sent, nil
}

func (d defaultService) PurgeOldSchedules(ctx context.Context) (int64, error) {
	cutoff := dateOnly(d.clock.Now()).AddDate(0, 0, -int(d.config.ScheduleRetentionDays()))
	purged, err := d.repository.DeleteWindowsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("an unexpected error occurred: %w", err)
	}
	return purged, nil
}
