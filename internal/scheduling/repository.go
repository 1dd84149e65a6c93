package scheduling

import (
	"context"
	"fmt"
	"time"

	"clinic-booking/internal/database"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	findDoctorByUUIDQuery    = "SELECT id, uuid, user_id, name, email, specialty FROM tb_doctor WHERE uuid = $1"
	findDoctorByUserIDQuery  = "SELECT id, uuid, user_id, name, email, specialty FROM tb_doctor WHERE user_id = $1"
	listDoctorsQuery         = "SELECT id, uuid, user_id, name, email, specialty FROM tb_doctor ORDER BY name"
	findPatientByUserIDQuery = "SELECT id, uuid, user_id, name, email FROM tb_patient WHERE user_id = $1"

	insertWindowQuery               = "INSERT INTO tb_schedule_window (uuid, doctor_id, work_date, start_time, end_time, slot_interval) VALUES ($1, $2, $3, $4, $5, $6)"
	updateWindowQuery               = "UPDATE tb_schedule_window SET work_date = $1, start_time = $2, end_time = $3, slot_interval = $4, modified_at = now() WHERE id = $5"
	deleteWindowQuery               = "DELETE FROM tb_schedule_window WHERE id = $1"
	findWindowByUUIDQuery           = "SELECT id, uuid, doctor_id, work_date, start_time, end_time, slot_interval FROM tb_schedule_window WHERE uuid = $1"
	listWindowsByDoctorQuery        = "SELECT id, uuid, doctor_id, work_date, start_time, end_time, slot_interval FROM tb_schedule_window WHERE doctor_id = $1 ORDER BY work_date, start_time"
	listWindowsByDoctorAndDateQuery = "SELECT id, uuid, doctor_id, work_date, start_time, end_time, slot_interval FROM tb_schedule_window WHERE doctor_id = $1 AND work_date = $2 ORDER BY start_time"
	listWindowsByRangeQuery         = "SELECT id, uuid, doctor_id, work_date, start_time, end_time, slot_interval FROM tb_schedule_window WHERE doctor_id = ANY($1) AND work_date BETWEEN $2 AND $3 ORDER BY doctor_id, work_date, start_time"
	countOverlappingWindowsQuery    = "SELECT count(id) FROM tb_schedule_window WHERE doctor_id = $1 AND work_date = $2 AND start_time <= $3 AND end_time >= $4 AND id <> $5"
	deleteWindowsBeforeQuery        = "DELETE FROM tb_schedule_window WHERE work_date < $1"

	insertAppointmentQuery               = "INSERT INTO tb_appointment (uuid, doctor_id, patient_id, date, time, notes) VALUES ($1, $2, $3, $4, $5, $6)"
	findAppointmentByUUIDQuery           = "SELECT id, uuid, doctor_id, patient_id, date, time, notes, is_confirmed FROM tb_appointment WHERE uuid = $1"
	listAppointmentsByRangeQuery         = "SELECT id, uuid, doctor_id, patient_id, date, time, notes, is_confirmed FROM tb_appointment WHERE doctor_id = ANY($1) AND date BETWEEN $2 AND $3 ORDER BY doctor_id, date, time"
	listAppointmentsByPatientQuery       = "SELECT id, uuid, doctor_id, patient_id, date, time, notes, is_confirmed FROM tb_appointment WHERE patient_id = $1 ORDER BY date, time"
	listConfirmedAppointmentsByDateQuery = "SELECT id, uuid, doctor_id, patient_id, date, time, notes, is_confirmed FROM tb_appointment WHERE is_confirmed = true AND date = $1 ORDER BY doctor_id, time"
	countAppointmentsAtQuery             = "SELECT count(id) FROM tb_appointment WHERE doctor_id = $1 AND date = $2 AND time = $3 AND id <> $4"
	confirmAppointmentQuery              = "UPDATE tb_appointment SET is_confirmed = true, modified_at = now() WHERE id = $1"
	updateAppointmentNotesQuery          = "UPDATE tb_appointment SET notes = $1, modified_at = now() WHERE id = $2"
	deleteAppointmentQuery               = "DELETE FROM tb_appointment WHERE id = $1"
)

// Repository provides access to scheduling data.
type Repository interface {

	// FindDoctorByUUID finds a doctor by its UUID.
	FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error)

	// FindDoctorByUserID finds a doctor by its user ID.
	FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error)

	// ListDoctors lists every registered doctor.
	ListDoctors(ctx context.Context) ([]*Doctor, error)

	// FindPatientByUserID finds a patient by its user ID.
	FindPatientByUserID(ctx context.Context, userID int64) (*Patient, error)

	// InsertWindow inserts a new availability window.
	InsertWindow(ctx context.Context, window ScheduleWindow) error

	// UpdateWindow updates an availability window in place.
	UpdateWindow(ctx context.Context, window ScheduleWindow) error

	// DeleteWindow removes the given availability window.
	DeleteWindow(ctx context.Context, id int64) error

	// FindWindowByUUID finds an availability window by its UUID.
	FindWindowByUUID(ctx context.Context, uuid uuid.UUID) (*ScheduleWindow, error)

	// ListWindowsByDoctor lists all the doctor's availability windows.
	ListWindowsByDoctor(ctx context.Context, doctorID int64) ([]*ScheduleWindow, error)

	// ListWindowsByDoctorAndDate lists the doctor's availability windows on the given date.
	ListWindowsByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]*ScheduleWindow, error)

	// ListWindowsByRange lists, in one batched query, the availability windows of the
	// given doctors intersecting the given date range.
	ListWindowsByRange(ctx context.Context, doctorIDs []int64, start time.Time, end time.Time) ([]*ScheduleWindow, error)

	// CountOverlappingWindows counts the doctor's windows on the given date whose range
	// touches [start, end], ignoring the window identified by excludeID.
	CountOverlappingWindows(ctx context.Context, doctorID int64, date time.Time, start TimeOfDay, end TimeOfDay, excludeID int64) (int64, error)

	// DeleteWindowsBefore purges every window dated before the given cutoff and
	// returns how many were removed.
	DeleteWindowsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// InsertAppointment inserts a new appointment.
	InsertAppointment(ctx context.Context, appointment Appointment) error

	// FindAppointmentByUUID finds an appointment by its UUID.
	FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error)

	// ListAppointmentsByRange lists, in one batched query, the appointments of the
	// given doctors intersecting the given date range.
	ListAppointmentsByRange(ctx context.Context, doctorIDs []int64, start time.Time, end time.Time) ([]*Appointment, error)

	// ListAppointmentsByPatient lists the patient's appointments ordered by date and time.
	ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]*Appointment, error)

	// ListConfirmedAppointmentsByDate lists every confirmed appointment on the given date.
	ListConfirmedAppointmentsByDate(ctx context.Context, date time.Time) ([]*Appointment, error)

	// CountAppointmentsAt counts the live appointments claiming the given doctor, date and
	// time, ignoring the appointment identified by excludeID.
	CountAppointmentsAt(ctx context.Context, doctorID int64, date time.Time, at TimeOfDay, excludeID int64) (int64, error)

	// ConfirmAppointment marks the given appointment as confirmed.
	ConfirmAppointment(ctx context.Context, id int64) error

	// UpdateAppointmentNotes replaces the notes of the given appointment.
	UpdateAppointmentNotes(ctx context.Context, id int64, notes string) error

	// DeleteAppointment removes the given appointment.
	DeleteAppointment(ctx context.Context, id int64) error
}

type defaultRepository struct {
	dbConn database.Connection
}

// NewRepository creates a new Repository.
func newRepository(dbConn database.Connection) Repository {
	return &defaultRepository{dbConn: dbConn}
}

func (d defaultRepository) FindDoctorByUUID(ctx context.Context, uuid uuid.UUID) (*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findDoctorByUUIDQuery, uuid)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctor := new(Doctor)
	for rows.Next() {
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		if doctor.ID > 0 {
			return doctor, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) FindDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findDoctorByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctor := new(Doctor)
	for rows.Next() {
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		if doctor.ID > 0 {
			return doctor, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listDoctorsQuery)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	doctors := make([]*Doctor, 0)
	for rows.Next() {
		doctor := new(Doctor)
		if err = database.TransformRow(rows, doctor); err != nil {
			return nil, err
		}
		doctors = append(doctors, doctor)
	}
	return doctors, nil
}

func (d defaultRepository) FindPatientByUserID(ctx context.Context, userID int64) (*Patient, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findPatientByUserIDQuery, userID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	patient := new(Patient)
	for rows.Next() {
		if err = database.TransformRow(rows, patient); err != nil {
			return nil, err
		}
		if patient.ID > 0 {
			return patient, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) InsertWindow(ctx context.Context, window ScheduleWindow) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	params := make([]interface{}, 6)
	params[0] = window.UUID
	params[1] = window.DoctorID
	params[2] = window.WorkDate
	params[3] = window.StartTime
	params[4] = window.EndTime
	params[5] = window.SlotInterval
	result, err := d.dbConn.DB().ExecContext(ctx, insertWindowQuery, params...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("schedule window not inserted")
	}
	return nil
}

func (d defaultRepository) UpdateWindow(ctx context.Context, window ScheduleWindow) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	params := make([]interface{}, 5)
	params[0] = window.WorkDate
	params[1] = window.StartTime
	params[2] = window.EndTime
	params[3] = window.SlotInterval
	params[4] = window.ID
	result, err := d.dbConn.DB().ExecContext(ctx, updateWindowQuery, params...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("schedule window not updated")
	}
	return nil
}

func (d defaultRepository) DeleteWindow(ctx context.Context, id int64) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	_, err := d.dbConn.DB().ExecContext(ctx, deleteWindowQuery, id)
	return err
}

func (d defaultRepository) FindWindowByUUID(ctx context.Context, uuid uuid.UUID) (*ScheduleWindow, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findWindowByUUIDQuery, uuid)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	window := new(ScheduleWindow)
	for rows.Next() {
		if err = database.TransformRow(rows, window); err != nil {
			return nil, err
		}
		if window.ID > 0 {
			return window, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) ListWindowsByDoctor(ctx context.Context, doctorID int64) ([]*ScheduleWindow, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listWindowsByDoctorQuery, doctorID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	windows := make([]*ScheduleWindow, 0)
	for rows.Next() {
		window := new(ScheduleWindow)
		if err = database.TransformRow(rows, window); err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (d defaultRepository) ListWindowsByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]*ScheduleWindow, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listWindowsByDoctorAndDateQuery, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	windows := make([]*ScheduleWindow, 0)
	for rows.Next() {
		window := new(ScheduleWindow)
		if err = database.TransformRow(rows, window); err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (d defaultRepository) ListWindowsByRange(ctx context.Context, doctorIDs []int64, start time.Time, end time.Time) ([]*ScheduleWindow, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listWindowsByRangeQuery, pq.Array(doctorIDs), start, end)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	windows := make([]*ScheduleWindow, 0)
	for rows.Next() {
		window := new(ScheduleWindow)
		if err = database.TransformRow(rows, window); err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}
	return windows, nil
}

func (d defaultRepository) CountOverlappingWindows(ctx context.Context, doctorID int64, date time.Time, start TimeOfDay, end TimeOfDay, excludeID int64) (int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	row := d.dbConn.DB().QueryRowContext(ctx, countOverlappingWindowsQuery, doctorID, date, end, start, excludeID)
	if row.Err() != nil {
		return 0, row.Err()
	}
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (d defaultRepository) DeleteWindowsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, deleteWindowsBeforeQuery, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d defaultRepository) InsertAppointment(ctx context.Context, appointment Appointment) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	params := make([]interface{}, 6)
	params[0] = appointment.UUID
	params[1] = appointment.DoctorID
	params[2] = appointment.PatientID
	params[3] = appointment.Date
	params[4] = appointment.Time
	params[5] = appointment.Notes
	result, err := d.dbConn.DB().ExecContext(ctx, insertAppointmentQuery, params...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment not inserted")
	}
	return nil
}

func (d defaultRepository) FindAppointmentByUUID(ctx context.Context, uuid uuid.UUID) (*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, findAppointmentByUUIDQuery, uuid)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointment := new(Appointment)
	for rows.Next() {
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		if appointment.ID > 0 {
			return appointment, nil
		}
	}
	return nil, nil
}

func (d defaultRepository) ListAppointmentsByRange(ctx context.Context, doctorIDs []int64, start time.Time, end time.Time) ([]*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listAppointmentsByRangeQuery, pq.Array(doctorIDs), start, end)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointments := make([]*Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, nil
}

func (d defaultRepository) ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listAppointmentsByPatientQuery, patientID)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointments := make([]*Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, nil
}

func (d defaultRepository) ListConfirmedAppointmentsByDate(ctx context.Context, date time.Time) ([]*Appointment, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	rows, err := d.dbConn.DB().QueryContext(ctx, listConfirmedAppointmentsByDateQuery, date)
	if err != nil {
		return nil, err
	}
	defer database.CloseRows(rows)
	appointments := make([]*Appointment, 0)
	for rows.Next() {
		appointment := new(Appointment)
		if err = database.TransformRow(rows, appointment); err != nil {
			return nil, err
		}
		appointments = append(appointments, appointment)
	}
	return appointments, nil
}

func (d defaultRepository) CountAppointmentsAt(ctx context.Context, doctorID int64, date time.Time, at TimeOfDay, excludeID int64) (int64, error) {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	row := d.dbConn.DB().QueryRowContext(ctx, countAppointmentsAtQuery, doctorID, date, at, excludeID)
	if row.Err() != nil {
		return 0, row.Err()
	}
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (d defaultRepository) ConfirmAppointment(ctx context.Context, id int64) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, confirmAppointmentQuery, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment not confirmed")
	}
	return nil
}

func (d defaultRepository) UpdateAppointmentNotes(ctx context.Context, id int64, notes string) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	result, err := d.dbConn.DB().ExecContext(ctx, updateAppointmentNotesQuery, notes, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("appointment notes not updated")
	}
	return nil
}

func (d defaultRepository) DeleteAppointment(ctx context.Context, id int64) error {
	ctx, cancel := d.dbConn.CreateContext(ctx)
	defer cancel()
	_, err := d.dbConn.DB().ExecContext(ctx, deleteAppointmentQuery, id)
	return err
}
