package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nirmitee/clinic-api/internal/domain"
	"github.com/nirmitee/clinic-api/internal/security"
)

// seedDoctor provisions an active doctor directly in the store, the way the
// seeder binary does, then logs in through the API.
func seedDoctor(t *testing.T, env *testEnv, userName, email string) string {
	t.Helper()
	hash, err := security.HashPassword("doctorpass1")
	require.NoError(t, err)
	now := time.Now().UTC()
	doc := &domain.User{
		UserName:    userName,
		Email:       email,
		Password:    hash,
		Role:        domain.RoleDoctor,
		Status:      domain.StatusActive,
		EmailVerify: &now,
	}
	require.NoError(t, env.Store.CreateUser(context.Background(), doc))

	_, out := env.do(t, "POST", "/api/v1/login", `{"userName":"`+userName+`","password":"doctorpass1"}`, nil)
	require.Equal(t, 200, out.Meta.Code)
	return out.Meta.Token
}

func createAppointment(t *testing.T, env *testEnv, token, title string) domain.Appointment {
	t.Helper()
	_, out := env.do(t, "POST", "/api/v1/appointments",
		`{"title":"`+title+`","date":"2026-09-01T00:00:00Z","startTime":"10:00","endTime":"10:30"}`, bearer(token))
	require.Equal(t, 200, out.Meta.Code)

	var appt domain.Appointment
	require.NoError(t, json.Unmarshal(out.Data, &appt))
	require.False(t, appt.ID.IsZero())
	return appt
}

func listAppointments(t *testing.T, env *testEnv, token string) []domain.Appointment {
	t.Helper()
	w, out := env.do(t, "GET", "/api/v1/appointments", "", bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 200, out.Meta.Code)

	var list []domain.Appointment
	require.NoError(t, json.Unmarshal(out.Data, &list))
	return list
}

func TestPatientSeesOnlyOwnAppointments(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerVerifyLogin(t, "alice", "alice@example.com", "secret123")
	bob := env.registerVerifyLogin(t, "bob", "bob@example.com", "secret123")

	createAppointment(t, env, alice, "checkup")
	createAppointment(t, env, bob, "followup")

	list := listAppointments(t, env, alice)
	require.Len(t, list, 1)
	require.Equal(t, "checkup", list[0].Title)
	require.Nil(t, list[0].Patient, "patient view is not populated")
}

func TestDoctorSeesAllAppointmentsPopulated(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerVerifyLogin(t, "alice", "alice@example.com", "secret123")
	bob := env.registerVerifyLogin(t, "bob", "bob@example.com", "secret123")
	doctor := seedDoctor(t, env, "drwho", "drwho@example.com")

	createAppointment(t, env, alice, "checkup")
	createAppointment(t, env, bob, "followup")

	list := listAppointments(t, env, doctor)
	require.Len(t, list, 2)
	for _, a := range list {
		require.NotNil(t, a.Patient)
		require.NotEmpty(t, a.Patient.UserName)
		require.NotEmpty(t, a.Patient.Email)
	}
}

func TestUpdateAppointmentScoping(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerVerifyLogin(t, "alice", "alice@example.com", "secret123")
	bob := env.registerVerifyLogin(t, "bob", "bob@example.com", "secret123")
	doctor := seedDoctor(t, env, "drwho", "drwho@example.com")

	appt := createAppointment(t, env, alice, "checkup")
	patch := `{"title":"renamed"}`

	// Another patient cannot touch it, and learns nothing beyond not-found.
	_, out := env.do(t, "PUT", "/api/v1/appointments/"+appt.ID.Hex(), patch, bearer(bob))
	require.Equal(t, 400, out.Meta.Code)
	require.Equal(t, msg("appointmentNotFound"), out.Meta.Message)

	// The owner can.
	_, out = env.do(t, "PUT", "/api/v1/appointments/"+appt.ID.Hex(), `{"title":"renamed by owner"}`, bearer(alice))
	require.Equal(t, 200, out.Meta.Code)
	require.Equal(t, "renamed by owner", listAppointments(t, env, alice)[0].Title)

	// So can any doctor.
	_, out = env.do(t, "PUT", "/api/v1/appointments/"+appt.ID.Hex(), `{"startTime":"11:00"}`, bearer(doctor))
	require.Equal(t, 200, out.Meta.Code)
	require.Equal(t, "11:00", listAppointments(t, env, alice)[0].StartTime)
}

func TestUpdateAppointmentUnknownID(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerVerifyLogin(t, "alice", "alice@example.com", "secret123")

	_, out := env.do(t, "PUT", "/api/v1/appointments/"+primitive.NewObjectID().Hex(),
		`{"title":"x"}`, bearer(alice))
	require.Equal(t, 400, out.Meta.Code)
	require.Equal(t, msg("appointmentNotFound"), out.Meta.Message)

	w, out := env.do(t, "PUT", "/api/v1/appointments/not-an-id", `{"title":"x"}`, bearer(alice))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 400, out.Code)
	require.Equal(t, msg("validationError"), out.Message)
}

// A token whose role claim is outside the known set authenticates but gets
// the closed scope: it can neither list nor modify anything.
func TestUnknownRoleFailsClosed(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerVerifyLogin(t, "alice", "alice@example.com", "secret123")
	appt := createAppointment(t, env, alice, "checkup")

	env.registerVerifyLogin(t, "mallet", "mallet@example.com", "secret123")
	rogue := env.Store.userByEmail(t, "mallet@example.com")

	odd, err := security.MakeUserToken(env.Secret, rogue.ID.Hex(), domain.Role(9), time.Hour)
	require.NoError(t, err)
	require.NoError(t, env.Store.SetToken(context.Background(), rogue.ID, odd))

	list := listAppointments(t, env, odd)
	require.Empty(t, list)

	_, out := env.do(t, "PUT", "/api/v1/appointments/"+appt.ID.Hex(), `{"title":"pwned"}`, bearer(odd))
	require.Equal(t, 400, out.Meta.Code)
	require.Equal(t, msg("appointmentNotFound"), out.Meta.Message)
	require.Equal(t, "checkup", listAppointments(t, env, alice)[0].Title)
}
