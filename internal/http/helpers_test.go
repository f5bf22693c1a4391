package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/nirmitee/clinic-api/internal/config"
	"github.com/nirmitee/clinic-api/internal/domain"
	api "github.com/nirmitee/clinic-api/internal/http"
	"github.com/nirmitee/clinic-api/internal/queue"
	"github.com/nirmitee/clinic-api/internal/storage"
)

// fakeStore is an in-memory stand-in for the document store, implementing
// the narrow interfaces the handlers consume.
type fakeStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
	appts map[primitive.ObjectID]*domain.Appointment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: map[primitive.ObjectID]*domain.User{},
		appts: map[primitive.ObjectID]*domain.Appointment{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) CreateUser(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) FindUserByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ident := strings.ToLower(strings.TrimSpace(identifier))
	for _, u := range f.users {
		if u.Email == ident || u.UserName == ident {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByUserName(ctx context.Context, userName string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserName == userName {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByEmailAndOTP(ctx context.Context, email, otp string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email && u.OTP != "" && u.OTP == otp {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeStore) SetOTP(ctx context.Context, id primitive.ObjectID, otp string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.OTP = otp
		u.CodeExpiry = &expiry
	}
	return nil
}

func (f *fakeStore) MarkEmailVerified(ctx context.Context, id primitive.ObjectID, when time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.EmailVerify = &when
		u.Status = domain.StatusActive
		u.OTP = ""
		u.CodeExpiry = nil
	}
	return nil
}

func (f *fakeStore) SetToken(ctx context.Context, id primitive.ObjectID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Token = token
	}
	return nil
}

func (f *fakeStore) ClearTokenByUserName(ctx context.Context, userName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserName == userName {
			u.Token = ""
		}
	}
	return nil
}

func (f *fakeStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string, clearOTP bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Password = hash
		if clearOTP {
			u.OTP = ""
			u.CodeExpiry = nil
		}
	}
	return nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch domain.ProfilePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		if patch.FirstName != nil {
			u.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			u.LastName = *patch.LastName
		}
		if patch.Image != nil {
			u.Image = *patch.Image
		}
	}
	return nil
}

func (f *fakeStore) CreateAppointment(ctx context.Context, a *domain.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = primitive.NewObjectID()
	cp := *a
	f.appts[a.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateAppointment(ctx context.Context, filter bson.M, patch domain.AppointmentPatch) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched int64
	for _, a := range f.appts {
		if !f.matches(a, filter) {
			continue
		}
		matched++
		if patch.Title != nil {
			a.Title = *patch.Title
		}
		if patch.Date != nil {
			a.Date = *patch.Date
		}
		if patch.StartTime != nil {
			a.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			a.EndTime = *patch.EndTime
		}
	}
	return matched, nil
}

func (f *fakeStore) FindAppointments(ctx context.Context, filter bson.M, populate bool) ([]domain.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Appointment{}
	for _, a := range f.appts {
		if !f.matches(a, filter) {
			continue
		}
		cp := *a
		if populate {
			if owner, ok := f.users[a.UserID]; ok {
				cp.Patient = &domain.PatientRef{ID: owner.ID, UserName: owner.UserName, Email: owner.Email}
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// matches interprets the filters the Role Gate produces: optional userId
// scoping, optional _id (the fail-closed NilObjectID matches nothing).
func (f *fakeStore) matches(a *domain.Appointment, filter bson.M) bool {
	if v, ok := filter["userId"]; ok {
		if id, ok := v.(primitive.ObjectID); !ok || a.UserID != id {
			return false
		}
	}
	if v, ok := filter["_id"]; ok {
		if id, ok := v.(primitive.ObjectID); !ok || a.ID != id || id.IsZero() {
			return false
		}
	}
	return true
}

// userByEmail reads the backing record directly; tests use it to fetch the
// issued OTP the way a user would read their inbox.
func (f *fakeStore) userByEmail(t *testing.T, email string) domain.User {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return *u
		}
	}
	t.Fatalf("no user with email %s", email)
	return domain.User{}
}

func (f *fakeStore) expireOTP(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			past := time.Now().Add(-time.Minute)
			u.CodeExpiry = &past
		}
	}
}

func (f *fakeStore) setStatus(email string, st domain.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			u.Status = st
		}
	}
}

type testEnv struct {
	Store  *fakeStore
	Router *gin.Engine
	Secret string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		AppName:       "nirmitee",
		JWTSecret:     "test_secret_key",
		TokenTTLHours: 24,
		OTPLength:     4,
		OTPTTLMinutes: 10,
	}
	fs := newFakeStore()
	h := api.NewHandler(cfg, fs, fs, queue.NewNoop(), nil, storage.NoopStore{}, zap.NewNop())
	return &testEnv{Store: fs, Router: api.NewRouter(h), Secret: cfg.JWTSecret}
}

// envelope decodes both response forms: the {data, meta} envelope and the
// legacy flat {code, message}.
type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Token   string `json:"token"`
	} `json:"meta"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *testEnv) do(t *testing.T, method, path, body string, hdr map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	var req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	e.Router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// registerVerifyLogin walks a user through the whole activation flow and
// returns the session token.
func (e *testEnv) registerVerifyLogin(t *testing.T, userName, email, password string) string {
	t.Helper()

	_, env := e.do(t, "POST", "/api/v1/register",
		`{"firstName":"A","lastName":"B","userName":"`+userName+`","email":"`+email+`","password":"`+password+`"}`, nil)
	if env.Meta.Code != 200 {
		t.Fatalf("register: %+v", env)
	}

	otp := e.Store.userByEmail(t, email).OTP
	_, env = e.do(t, "POST", "/api/v1/verify-email", `{"email":"`+email+`","otp":"`+otp+`"}`, nil)
	if env.Meta.Code != 200 {
		t.Fatalf("verify: %+v", env)
	}

	_, env = e.do(t, "POST", "/api/v1/login", `{"userName":"`+userName+`","password":"`+password+`"}`, nil)
	if env.Meta.Code != 200 || env.Meta.Token == "" {
		t.Fatalf("login: %+v", env)
	}
	return env.Meta.Token
}
