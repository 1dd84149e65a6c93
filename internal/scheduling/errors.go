package scheduling

type Error string

const (
	ErrDoctorNotFound              Error = "doctor not found"
	ErrPatientNotFound             Error = "patient not found"
	ErrUnknownRole                 Error = "unknown role"
	ErrAppointmentNotFound         Error = "appointment not found"
	ErrWindowNotFound              Error = "schedule window not found"
	ErrInvalidIdentifier           Error = "invalid identifier"
	ErrInvalidWeekReference        Error = "invalid week reference - e.g. 2025-06-02"
	ErrOnlyPatientCanBook          Error = "only a patient can book an appointment"
	ErrOnlyPatientCanConfirm       Error = "only a patient can confirm an appointment"
	ErrOnlyDoctorCanAddNotes       Error = "only a doctor can add notes to an appointment"
	ErrOnlyDoctorCanManageSchedule Error = "only a doctor can manage a schedule"
	ErrOnlyPatientCanListOwnVisits Error = "only a patient can list its appointments"
	ErrDoctorNotAvailable          Error = "the doctor is not available at the selected date and time"
	ErrAppointmentOverlaps         Error = "overlaps with an existing one"
	ErrScheduleOverlaps            Error = "the specified schedule overlaps with an existing one"
)

func (e Error) Error() string {
	return string(e)
}
