package scheduling

import (
	"context"
	"fmt"
	"log"

	"clinic-booking/internal/logging"
)

// Event identifies a booking lifecycle change worth telling the participants about.
type Event string

const (
	EventAppointmentCreated   Event = "appointment_created"
	EventAppointmentConfirmed Event = "appointment_confirmed"
	EventNoteAdded            Event = "note_added"
	EventAppointmentDeleted   Event = "appointment_deleted"
	EventReminderDue          Event = "reminder_due"
)

// Notifier delivers lifecycle notifications. Delivery is fire-and-forget: a
// failure is reported to the caller, which logs it and moves on, it never
// changes the outcome of the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, event Event, appointment Appointment) error
}

// logNotifier is the default sink. It writes the message that an email gateway
// would deliver to the shared logger.
type logNotifier struct {
	logger *log.Logger
}

func newLogNotifier(logger *log.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n logNotifier) Notify(ctx context.Context, event Event, appointment Appointment) error {
	date := appointment.Date.Format("2006-01-02")
	var message string
	switch event {
	case EventAppointmentCreated:
		message = fmt.Sprintf("appointment booked on %s at %s", date, appointment.Time)
	case EventAppointmentConfirmed:
		message = fmt.Sprintf("appointment on %s at %s confirmed", date, appointment.Time)
	case EventNoteAdded:
		message = fmt.Sprintf("a note has been added to the appointment on %s at %s", date, appointment.Time)
	case EventAppointmentDeleted:
		message = fmt.Sprintf("appointment on %s at %s has been cancelled", date, appointment.Time)
	case EventReminderDue:
		message = fmt.Sprintf("reminder: upcoming appointment on %s at %s", date, appointment.Time)
	default:
		message = fmt.Sprintf("appointment on %s at %s changed", date, appointment.Time)
	}
	logging.PrintlnInfo(n.logger, fmt.Sprint("notification ", event, ": ", message))
	return nil
}
