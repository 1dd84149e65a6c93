package scheduling

import (
	"fmt"
	"strings"
	"time"

	"clinic-booking/internal/apierrors"
)

// appointmentDateLayouts are the locale-formatted dates the booking screens
// submit, e.g. "Jun. 1, 2025", "Jun 1, 2025" and "June 1, 2025".
var appointmentDateLayouts = []string{"Jan. 2, 2006", "Jan 2, 2006", "January 2, 2006"}

// ParseAppointmentDate parses an inbound appointment date, trying each accepted
// layout in order. Anything else is rejected as a validation error.
func ParseAppointmentDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range appointmentDateLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, apierrors.NewValidationError("date", fmt.Sprintf("non-valid date format: '%s'", trimmed))
}
