package scheduling

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"clinic-booking/internal/apierrors"
	"clinic-booking/internal/auth"
	"clinic-booking/internal/configs"
	"clinic-booking/internal/database"
	"clinic-booking/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type httpHandler struct {
	authorizer auth.Authorizer
	service    Service
	logger     *log.Logger
}

// Setup setups the routes handled by the scheduling context.
func Setup(router *chi.Mux, logger *log.Logger, authorizer auth.Authorizer, config configs.Config, dbConn database.Connection) {
	handler := &httpHandler{logger: logger, authorizer: authorizer, service: NewService(config, dbConn, logger)}

	// protected routes, for any authenticated user
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Get("/api/v1/schedule", handler.GetWeekSchedule)
	})

	// protected routes, only for patients
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.PatientRole))
		group.Get("/api/v1/appointments", handler.ListAppointments)
		group.Post("/api/v1/appointments", handler.CreateAppointment)
		group.Post("/api/v1/appointments/{appointmentUUID}/confirm", handler.ConfirmAppointment)
	})

	// protected routes, only for doctors
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.DoctorRole))
		group.Get("/api/v1/schedule/windows", handler.ListWindows)
		group.Post("/api/v1/schedule/windows", handler.CreateWindow)
		group.Put("/api/v1/schedule/windows/{windowUUID}", handler.UpdateWindow)
		group.Delete("/api/v1/schedule/windows/{windowUUID}", handler.DeleteWindow)
		group.Put("/api/v1/appointments/{appointmentUUID}/notes", handler.UpdateNotes)
	})

	// protected routes, cancellation is open to every side of the appointment
	router.Group(func(group chi.Router) {
		group.Use(auth.JwtValidator(authorizer))
		group.Use(auth.AllowedRole(authorizer, auth.PatientRole, auth.DoctorRole, auth.AdminRole))
		group.Delete("/api/v1/appointments/{appointmentUUID}", handler.DeleteAppointment)
	})
}

// parseUUIDParameter parses a UUID parameter into a valid UUID.
func (h httpHandler) parseUUIDParameter(parName string, r *http.Request) (uuid.UUID, error) {
	zeroUUID := uuid.UUID{}
	uuidPar := chi.URLParam(r, parName)
	if uuidPar == "" {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidIdentifier), apierrors.WithHTTPStatusCode(http.StatusNotFound))
	}
	parsedUUID, err := uuid.Parse(uuidPar)
	if err != nil {
		return zeroUUID, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidIdentifier), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	return parsedUUID, nil
}

// parseWeekParameter parses the optional week query parameter. An absent week
// means the current one.
func (h httpHandler) parseWeekParameter(r *http.Request) (time.Time, error) {
	var zeroTime time.Time
	week := r.URL.Query().Get("week")
	if week == "" {
		return zeroTime, nil
	}
	date, err := time.Parse("2006-01-02", week)
	if err != nil {
		return zeroTime, apierrors.NewAPIError(apierrors.WithDetail(ErrInvalidWeekReference), apierrors.WithHTTPStatusCode(http.StatusBadRequest))
	}
	return date, nil
}

// resolveActor loads the authenticated user and resolves the profile acting on
// the request.
func (h httpHandler) resolveActor(r *http.Request) (*Actor, error) {
	user, err := h.authorizer.GetAuthenticatedUser(r.Context())
	if err != nil {
		return nil, apierrors.NewAPIError(apierrors.WithDetail(err), apierrors.WithHTTPStatusCode(http.StatusUnauthorized))
	}
	return h.service.ResolveActor(r.Context(), user)
}

// writeError logs the given error and translates it into the matching HTTP response.
func (h httpHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
	switch v := err.(type) {
	case *apierrors.APIError:
		w.WriteHeader(v.HTTPStatusCode())
		_ = json.NewEncoder(w).Encode(err)
		return
	case *apierrors.ValidationError:
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(err)
		return
	case *apierrors.NotFoundError:
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(err)
		return
	}
	w.WriteHeader(http.StatusInternalServerError)
}

func (h httpHandler) GetWeekSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startOfWeek, err := h.parseWeekParameter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	schedule, err := h.service.GetWeekSchedule(ctx, startOfWeek)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(schedule)
}

func (h httpHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	overview, err := h.service.ListPatientAppointments(ctx, *actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(overview)
}

func (h httpHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appointmentRequest := new(AppointmentRequest)
	if err = json.NewDecoder(r.Body).Decode(appointmentRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	appointment, err := h.service.CreateAppointment(ctx, *actor, *appointmentRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	appointment, err := h.service.ConfirmAppointment(ctx, *actor, appointmentUUID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	notesRequest := new(NotesRequest)
	if err = json.NewDecoder(r.Body).Decode(notesRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	appointment, err := h.service.UpdateAppointmentNotes(ctx, *actor, appointmentUUID, notesRequest.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(appointment)
}

func (h httpHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	appointmentUUID, err := h.parseUUIDParameter("appointmentUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.service.DeleteAppointment(ctx, *actor, appointmentUUID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h httpHandler) ListWindows(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	windows, err := h.service.ListDoctorWindows(ctx, *actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(windows)
}

func (h httpHandler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	windowRequest := new(WindowRequest)
	if err = json.NewDecoder(r.Body).Decode(windowRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	window, err := h.service.CreateWindow(ctx, *actor, *windowRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(window)
}

func (h httpHandler) UpdateWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	windowUUID, err := h.parseUUIDParameter("windowUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	windowRequest := new(WindowRequest)
	if err = json.NewDecoder(r.Body).Decode(windowRequest); err != nil {
		logging.PrintlnError(h.logger, fmt.Sprint(r.Context().Value(middleware.RequestIDKey), " ", err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	window, err := h.service.UpdateWindow(ctx, *actor, windowUUID, *windowRequest)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	_ = json.NewEncoder(w).Encode(window)
}

func (h httpHandler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	windowUUID, err := h.parseUUIDParameter("windowUUID", r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	actor, err := h.resolveActor(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err = h.service.DeleteWindow(ctx, *actor, windowUUID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
