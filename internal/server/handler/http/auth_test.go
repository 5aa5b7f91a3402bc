package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/models"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	existsReturn bool
	existsErr    error
	registerErr  error

	registered  string
	displayName string
}

func (f *fakeAuthService) UserExists(ctx context.Context, login string) (bool, error) {
	return f.existsReturn, f.existsErr
}

func (f *fakeAuthService) RegisterUser(ctx context.Context, login, displayName string) error {
	f.registered, f.displayName = login, displayName
	return f.registerErr
}

type fakeCerts struct {
	err error
}

func (f fakeCerts) IssueClientCertificate(login string, _ time.Duration) ([]byte, []byte, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return []byte("CERT " + login), []byte("KEY " + login), nil
}

type fakeTokens struct {
	enabled bool
	err     error
}

func (f fakeTokens) Enabled() bool { return f.enabled }

func (f fakeTokens) Issue(login string) (string, time.Time, error) {
	return "token-" + login, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), f.err
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		certs          fakeCerts
		tokens         fakeTokens
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "empty login",
			body:           `{"login":"  "}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "UserExists error",
			body:           `{"login":"alice@example.com"}`,
			service:        &fakeAuthService{existsErr: errors.New("db error")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "User already exists",
			body:           `{"login":"bob@example.com"}`,
			service:        &fakeAuthService{existsReturn: true},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "user already exists",
		},
		{
			name:           "certificate failure",
			body:           `{"login":"charlie@example.com"}`,
			service:        &fakeAuthService{},
			certs:          fakeCerts{err: errors.New("no ca")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "failed to generate certificate",
		},
		{
			name:           "save failure",
			body:           `{"login":"dave@example.com"}`,
			service:        &fakeAuthService{registerErr: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "login taken between check and insert",
			body:           `{"login":"dora@example.com"}`,
			service:        &fakeAuthService{registerErr: models.ErrAlreadyExists},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "user already exists",
		},
		{
			name:           "token failure",
			body:           `{"login":"erin@example.com"}`,
			service:        &fakeAuthService{},
			tokens:         fakeTokens{enabled: true, err: errors.New("sign")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "failed to issue token",
		},
		{
			name:           "success without tokens",
			body:           `{"login":"frank@example.com","display_name":"Frank"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"cert":"CERT frank@example.com"`,
		},
		{
			name:           "success with token",
			body:           `{"login":"gina@example.com"}`,
			service:        &fakeAuthService{},
			tokens:         fakeTokens{enabled: true},
			expectedCode:   http.StatusCreated,
			expectedSubstr: `"token":"token-gina@example.com"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{AuthService: tt.service, Certs: tt.certs, Tokens: tt.tokens, Log: zap.NewNop()}
			h.Register(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}

			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_RegisterStoresDisplayName(t *testing.T) {
	svc := &fakeAuthService{}
	h := &AuthHandler{AuthService: svc, Certs: fakeCerts{}, Log: zap.NewNop()}

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/register",
		bytes.NewBufferString(`{"login":" alice@example.com ","display_name":"Alice"}`)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201", rec.Code)
	}
	if svc.registered != "alice@example.com" || svc.displayName != "Alice" {
		t.Errorf("registered = %q/%q; want alice@example.com/Alice", svc.registered, svc.displayName)
	}
}

// countingCerts records every login it signs for.
type countingCerts struct {
	mu     sync.Mutex
	signed []string
}

func (c *countingCerts) IssueClientCertificate(login string, _ time.Duration) ([]byte, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signed = append(c.signed, login)
	return []byte("CERT " + login), []byte("KEY " + login), nil
}

func TestAuthHandler_RegisterTakenLoginGetsNoCertificate(t *testing.T) {
	certs := &countingCerts{}
	h := &AuthHandler{
		AuthService: &fakeAuthService{registerErr: models.ErrAlreadyExists},
		Certs:       certs,
		Tokens:      fakeTokens{enabled: true},
		Log:         zap.NewNop(),
	}

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest("POST", "/register",
		bytes.NewBufferString(`{"login":"alice@example.com","display_name":"Mallory"}`)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d; want 409", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("CERT")) || bytes.Contains(rec.Body.Bytes(), []byte("token-")) {
		t.Errorf("body leaked credentials: %q", rec.Body.String())
	}
	if len(certs.signed) != 0 {
		t.Errorf("signed certificates for %v; want none", certs.signed)
	}
}

// racingAuthStore lets every caller pass UserExists before any of them
// inserts, then lets only the first insert win.
type racingAuthStore struct {
	checked sync.WaitGroup

	mu    sync.Mutex
	users map[string]string
}

func (s *racingAuthStore) UserExists(_ context.Context, login string) (bool, error) {
	s.checked.Done()
	s.checked.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[login]
	return ok, nil
}

func (s *racingAuthStore) RegisterUser(_ context.Context, login, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[login]; ok {
		return models.ErrAlreadyExists
	}
	s.users[login] = displayName
	return nil
}

func TestAuthHandler_ConcurrentRegistrationIssuesOneCertificate(t *testing.T) {
	store := &racingAuthStore{users: map[string]string{}}
	store.checked.Add(2)
	certs := &countingCerts{}
	h := &AuthHandler{AuthService: store, Certs: certs, Log: zap.NewNop()}

	names := []string{"Alice", "Mallory"}
	codes := make([]int, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			body := `{"login":"alice@example.com","display_name":"` + name + `"}`
			h.Register(rec, httptest.NewRequest("POST", "/register", bytes.NewBufferString(body)))
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	created, conflicts := 0, 0
	winner := ""
	for i, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
			winner = names[i]
		case http.StatusConflict:
			conflicts++
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	if created != 1 || conflicts != 1 {
		t.Fatalf("codes = %v; want one 201 and one 409", codes)
	}
	if len(certs.signed) != 1 {
		t.Errorf("signed %d certificates; want 1", len(certs.signed))
	}
	if got := store.users["alice@example.com"]; got != winner {
		t.Errorf("stored display name = %q; want %q", got, winner)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	peer := func(cn string) *tls.ConnectionState {
		return &tls.ConnectionState{PeerCertificates: []*x509.Certificate{{Subject: pkix.Name{CommonName: cn}}}}
	}

	tests := []struct {
		name         string
		tlsState     *tls.ConnectionState
		service      *fakeAuthService
		tokens       TokenIssuer
		expectedCode int
		expectedJSON map[string]string
	}{
		{
			name:         "no TLS",
			service:      &fakeAuthService{},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "empty peer certs",
			tlsState:     &tls.ConnectionState{},
			service:      &fakeAuthService{},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "UserExists error",
			tlsState:     peer("dave"),
			service:      &fakeAuthService{existsErr: errors.New("db fail")},
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "User not found",
			tlsState:     peer("erin"),
			service:      &fakeAuthService{existsReturn: false},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Successful login",
			tlsState:     peer("frank"),
			service:      &fakeAuthService{existsReturn: true},
			expectedCode: http.StatusOK,
			expectedJSON: map[string]string{"user": "frank"},
		},
		{
			name:         "Successful login with token",
			tlsState:     peer("gina"),
			service:      &fakeAuthService{existsReturn: true},
			tokens:       fakeTokens{enabled: true},
			expectedCode: http.StatusOK,
			expectedJSON: map[string]string{"user": "gina", "token": "token-gina"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/login", nil)
			req.TLS = tt.tlsState

			h := &AuthHandler{AuthService: tt.service, Tokens: tt.tokens, Log: zap.NewNop()}
			h.Login(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("%s: expected status %d, got %d", tt.name, tt.expectedCode, res.StatusCode)
			}

			if tt.expectedJSON != nil {
				var payload map[string]any
				if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
					t.Fatalf("failed to decode JSON: %v", err)
				}
				for k, v := range tt.expectedJSON {
					if payload[k] != v {
						t.Errorf("expected %s=%q, got %v", k, v, payload[k])
					}
				}
			}
		})
	}
}
