package scheduling

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"clinic-booking/internal/auth"
	"clinic-booking/internal/configs"
	"clinic-booking/internal/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type emptyWriter struct{}

func (e emptyWriter) Write(p []byte) (n int, err error) {
	return 0, nil
}

var logger = log.New(&emptyWriter{}, "", log.LstdFlags)

type mockAuthorizer struct {
	mockValidateToken        func(ctx context.Context, token string) (*auth.User, error)
	mockRefreshTokens        func(ctx context.Context, tokens auth.Tokens) (*auth.Tokens, error)
	mockGetAuthenticatedUser func(ctx context.Context) (auth.User, error)
}

func (m mockAuthorizer) ValidateToken(ctx context.Context, token string) (*auth.User, error) {
	return m.mockValidateToken(ctx, token)
}

func (m mockAuthorizer) RefreshTokens(ctx context.Context, tokens auth.Tokens) (*auth.Tokens, error) {
	return m.mockRefreshTokens(ctx, tokens)
}

func (m mockAuthorizer) GetAuthenticatedUser(ctx context.Context) (auth.User, error) {
	return m.mockGetAuthenticatedUser(ctx)
}

func patientColumns() []string {
	return []string{"id", "uuid", "user_id", "name", "email"}
}

func withFindPatientByUserIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findPatientByUserIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindDoctorByUserIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByUserIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withFindDoctorByUUIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findDoctorByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListDoctorsResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDoctorsQuery)).WillReturnRows(rows)
	}
}

func withListDoctorsError() mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listDoctorsQuery)).WillReturnError(sql.ErrConnDone)
	}
}

func withListWindowsByRangeResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listWindowsByRangeQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListAppointmentsByRangeResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listAppointmentsByRangeQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withListWindowsByDoctorAndDateResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listWindowsByDoctorAndDateQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withCountAppointmentsAtResult(count int64) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countAppointmentsAtQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
	}
}

func withInsertAppointmentResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(insertAppointmentQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withFindAppointmentByUUIDResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(findAppointmentByUUIDQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withConfirmAppointmentResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(confirmAppointmentQuery)).WithArgs(sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withUpdateAppointmentNotesResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(updateAppointmentNotesQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withDeleteAppointmentResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(deleteAppointmentQuery)).WithArgs(sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func withListAppointmentsByPatientResult(rows *sqlmock.Rows) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(listAppointmentsByPatientQuery)).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)
	}
}

func withCountOverlappingWindowsResult(count int64) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectQuery(regexp.QuoteMeta(countOverlappingWindowsQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
	}
}

func withInsertWindowResult(result driver.Result) mock.DBResultOption {
	return func(dbConn mock.Connection) {
		dbConn.SQLMock.ExpectExec(regexp.QuoteMeta(insertWindowQuery)).WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnResult(result)
	}
}

func mockPatientUser() *auth.User {
	return &auth.User{
		ID:    1,
		UUID:  uuid.UUID{},
		Email: "patient@clinic.com",
		Role:  auth.PatientRole,
	}
}

func mockDoctorUser() *auth.User {
	return &auth.User{
		ID:    2,
		UUID:  uuid.UUID{},
		Email: "doctor@clinic.com",
		Role:  auth.DoctorRole,
	}
}

func mockAdminUser() *auth.User {
	return &auth.User{
		ID:    3,
		UUID:  uuid.UUID{},
		Email: "admin@clinic.com",
		Role:  auth.AdminRole,
	}
}

func mockAuthorizerFor(user *auth.User) mockAuthorizer {
	return mockAuthorizer{
		mockValidateToken: func(ctx context.Context, token string) (*auth.User, error) {
			return user, nil
		},
		mockGetAuthenticatedUser: func(ctx context.Context) (auth.User, error) {
			return *user, nil
		},
	}
}

func TestGetWeekSchedule(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
		week          string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should get the week schedule",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withListDoctorsResult(sqlmock.NewRows(doctorColumns()).AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withListWindowsByRangeResult(sqlmock.NewRows(windowColumns()).AddRow(1, uuid.UUID{}, 1, time.Date(2031, 6, 3, 0, 0, 0, 0, time.Local), "08:00:00", "09:00:00", 30)),
					withListAppointmentsByRangeResult(sqlmock.NewRows(appointmentColumns())),
				},
				week: "2031-06-02",
			},
			want: http.StatusOK,
		},
		{
			name: "should get the current week schedule when no week is given",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withListDoctorsResult(sqlmock.NewRows(doctorColumns())),
					withListWindowsByRangeResult(sqlmock.NewRows(windowColumns())),
					withListAppointmentsByRangeResult(sqlmock.NewRows(appointmentColumns())),
				},
			},
			want: http.StatusOK,
		},
		{
			name: "should not get the week schedule because the week reference is wrong",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				week:     "June 2031",
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not get the week schedule due to a database error",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withListDoctorsError(),
				},
				week: "2031-06-02",
			},
			want: http.StatusInternalServerError,
		},
		{
			name: "should not get the week schedule without a token",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
			},
			want: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			target := "/api/v1/schedule"
			if tt.args.week != "" {
				target = fmt.Sprintf("%s?week=%s", target, url.QueryEscape(tt.args.week))
			}
			req := httptest.NewRequest("GET", target, nil)

			if tt.args.tokens != nil {
				req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestCreateAppointment(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	doctorUUID := uuid.New()
	windowDate := time.Date(2031, 6, 2, 0, 0, 0, 0, time.UTC)
	type args struct {
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
		request       AppointmentRequest
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should book a free slot",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindDoctorByUUIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, doctorUUID, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withListWindowsByDoctorAndDateResult(sqlmock.NewRows(windowColumns()).AddRow(1, uuid.UUID{}, 1, windowDate, "10:00:00", "12:00:00", 20)),
					withCountAppointmentsAtResult(0),
					withInsertAppointmentResult(sqlmock.NewResult(1, 1)),
				},
				request: AppointmentRequest{DoctorUUID: doctorUUID.String(), Date: "Jun. 2, 2031", Time: "10:40"},
			},
			want: http.StatusCreated,
		},
		{
			name: "should not book a slot that is already taken",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindDoctorByUUIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, doctorUUID, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withListWindowsByDoctorAndDateResult(sqlmock.NewRows(windowColumns()).AddRow(1, uuid.UUID{}, 1, windowDate, "10:00:00", "12:00:00", 20)),
					withCountAppointmentsAtResult(1),
				},
				request: AppointmentRequest{DoctorUUID: doctorUUID.String(), Date: "Jun. 2, 2031", Time: "10:20"},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not book a slot outside the doctor's availability",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindDoctorByUUIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, doctorUUID, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withListWindowsByDoctorAndDateResult(sqlmock.NewRows(windowColumns())),
				},
				request: AppointmentRequest{DoctorUUID: doctorUUID.String(), Date: "Jun. 2, 2031", Time: "15:00"},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not book a slot because no doctor with given UUID was found",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindDoctorByUUIDResult(sqlmock.NewRows(doctorColumns())),
				},
				request: AppointmentRequest{DoctorUUID: doctorUUID.String(), Date: "Jun. 2, 2031", Time: "10:40"},
			},
			want: http.StatusNotFound,
		},
		{
			name: "should not book a slot because the request misses data",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
				},
				request: AppointmentRequest{DoctorUUID: doctorUUID.String(), Date: "Jun. 2, 2031"},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not book a slot because doctors cannot book",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockDoctorUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				request:  AppointmentRequest{DoctorUUID: doctorUUID.String(), Date: "Jun. 2, 2031", Time: "10:40"},
			},
			want: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			body := new(bytes.Buffer)
			_ = json.NewEncoder(body).Encode(tt.args.request)
			req := httptest.NewRequest("POST", "/api/v1/appointments", body)

			if tt.args.tokens != nil {
				req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestConfirmAppointment(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	appointmentUUID := uuid.New()
	appointmentDate := time.Date(2031, 6, 2, 0, 0, 0, 0, time.Local)
	type args struct {
		mockAuth        mockAuthorizer
		dbConn          mock.Connection
		dbMockOptions   []mock.DBResultOption
		tokens          *auth.Tokens
		appointmentUUID string
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should confirm the patient's appointment",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindAppointmentByUUIDResult(sqlmock.NewRows(appointmentColumns()).AddRow(1, appointmentUUID, 1, 1, appointmentDate, "10:00:00", "", false)),
					withConfirmAppointmentResult(sqlmock.NewResult(0, 1)),
				},
				appointmentUUID: appointmentUUID.String(),
			},
			want: http.StatusOK,
		},
		{
			name: "should not confirm an appointment of another patient",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindAppointmentByUUIDResult(sqlmock.NewRows(appointmentColumns()).AddRow(1, appointmentUUID, 1, 9, appointmentDate, "10:00:00", "", false)),
				},
				appointmentUUID: appointmentUUID.String(),
			},
			want: http.StatusNotFound,
		},
		{
			name: "should not confirm an appointment because the given UUID is wrong",
			args: args{
				dbConn:          mock.MustCreateConnectionMock(),
				mockAuth:        mockAuthorizerFor(mockPatientUser()),
				tokens:          auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				appointmentUUID: "not-a-uuid",
			},
			want: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/appointments/%s/confirm", tt.args.appointmentUUID), nil)

			if tt.args.tokens != nil {
				req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestUpdateNotes(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	appointmentUUID := uuid.New()
	appointmentDate := time.Date(2031, 6, 2, 0, 0, 0, 0, time.Local)
	type args struct {
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should update the notes of an assigned appointment",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockDoctorUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withFindAppointmentByUUIDResult(sqlmock.NewRows(appointmentColumns()).AddRow(1, appointmentUUID, 1, 1, appointmentDate, "10:00:00", "", true)),
					withUpdateAppointmentNotesResult(sqlmock.NewResult(0, 1)),
				},
			},
			want: http.StatusOK,
		},
		{
			name: "should not update the notes of an appointment assigned to another doctor",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockDoctorUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withFindAppointmentByUUIDResult(sqlmock.NewRows(appointmentColumns()).AddRow(1, appointmentUUID, 9, 1, appointmentDate, "10:00:00", "", true)),
				},
			},
			want: http.StatusNotFound,
		},
		{
			name: "should not update the notes because patients cannot annotate",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
			},
			want: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			body := new(bytes.Buffer)
			_ = json.NewEncoder(body).Encode(NotesRequest{Notes: "bring previous exams"})
			req := httptest.NewRequest("PUT", fmt.Sprintf("/api/v1/appointments/%s/notes", appointmentUUID), body)

			if tt.args.tokens != nil {
				req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestDeleteAppointment(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	appointmentUUID := uuid.New()
	appointmentDate := time.Date(2031, 6, 2, 0, 0, 0, 0, time.Local)
	type args struct {
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should let the patient cancel its own appointment",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindAppointmentByUUIDResult(sqlmock.NewRows(appointmentColumns()).AddRow(1, appointmentUUID, 1, 1, appointmentDate, "10:00:00", "", true)),
					withDeleteAppointmentResult(sqlmock.NewResult(0, 1)),
				},
			},
			want: http.StatusNoContent,
		},
		{
			name: "should let an administrator cancel any appointment",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockAdminUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockAdminUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindAppointmentByUUIDResult(sqlmock.NewRows(appointmentColumns()).AddRow(1, appointmentUUID, 1, 1, appointmentDate, "10:00:00", "", true)),
					withDeleteAppointmentResult(sqlmock.NewResult(0, 1)),
				},
			},
			want: http.StatusNoContent,
		},
		{
			name: "should not let a patient cancel an appointment of another patient",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withFindAppointmentByUUIDResult(sqlmock.NewRows(appointmentColumns()).AddRow(1, appointmentUUID, 1, 9, appointmentDate, "10:00:00", "", true)),
				},
			},
			want: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req := httptest.NewRequest("DELETE", fmt.Sprintf("/api/v1/appointments/%s", appointmentUUID), nil)

			if tt.args.tokens != nil {
				req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestListAppointments(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should list the patient's appointments",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withListAppointmentsByPatientResult(sqlmock.NewRows(appointmentColumns()).
						AddRow(1, uuid.New(), 1, 1, time.Date(2021, 6, 2, 0, 0, 0, 0, time.Local), "10:00:00", "", true).
						AddRow(2, uuid.New(), 1, 1, time.Date(2031, 6, 2, 0, 0, 0, 0, time.Local), "10:00:00", "", false)),
				},
			},
			want: http.StatusOK,
		},
		{
			name: "should list no appointments for a new patient",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindPatientByUserIDResult(sqlmock.NewRows(patientColumns()).AddRow(1, uuid.UUID{}, 1, "Jane Roe", "patient@clinic.com")),
					withListAppointmentsByPatientResult(sqlmock.NewRows(appointmentColumns())),
				},
			},
			want: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			req := httptest.NewRequest("GET", "/api/v1/appointments", nil)

			if tt.args.tokens != nil {
				req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}

func TestCreateWindow(t *testing.T) {
	config := configs.MustLoad("./../../test/testdata/config_valid.json")
	type args struct {
		mockAuth      mockAuthorizer
		dbConn        mock.Connection
		dbMockOptions []mock.DBResultOption
		tokens        *auth.Tokens
		request       WindowRequest
	}
	tests := []struct {
		name string
		args args
		want int
	}{
		{
			name: "should publish a new availability window",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockDoctorUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withCountOverlappingWindowsResult(0),
					withInsertWindowResult(sqlmock.NewResult(1, 1)),
				},
				request: WindowRequest{WorkDate: "2031-06-02", StartTime: "08:00", EndTime: "12:00", SlotInterval: 30},
			},
			want: http.StatusCreated,
		},
		{
			name: "should not publish a window overlapping an existing one",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockDoctorUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
					withCountOverlappingWindowsResult(1),
				},
				request: WindowRequest{WorkDate: "2031-06-02", StartTime: "08:00", EndTime: "12:00", SlotInterval: 30},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not publish a window with an invalid interval",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockDoctorUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockDoctorUser()),
				dbMockOptions: []mock.DBResultOption{
					withFindDoctorByUserIDResult(sqlmock.NewRows(doctorColumns()).AddRow(1, uuid.UUID{}, 2, "John Doe", "doctor@clinic.com", "Cardiology")),
				},
				request: WindowRequest{WorkDate: "2031-06-02", StartTime: "08:00", EndTime: "12:00", SlotInterval: 17},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "should not publish a window because patients cannot manage schedules",
			args: args{
				dbConn:   mock.MustCreateConnectionMock(),
				mockAuth: mockAuthorizerFor(mockPatientUser()),
				tokens:   auth.MustGenerateTokens(context.TODO(), config.PrivateKey(), *mockPatientUser()),
				request:  WindowRequest{WorkDate: "2031-06-02", StartTime: "08:00", EndTime: "12:00", SlotInterval: 30},
			},
			want: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := chi.NewRouter()
			Setup(router, logger, tt.args.mockAuth, config, tt.args.dbConn)

			mock.MockDBResults(tt.args.dbConn, tt.args.dbMockOptions...)

			body := new(bytes.Buffer)
			_ = json.NewEncoder(body).Encode(tt.args.request)
			req := httptest.NewRequest("POST", "/api/v1/schedule/windows", body)

			if tt.args.tokens != nil {
				req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", tt.args.tokens.AccessToken))
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			response := recorder.Result()

			if response.StatusCode != tt.want {
				t.Errorf("response status is incorrect, got %d, want %d", recorder.Code, tt.want)
			}
		})
	}
}
