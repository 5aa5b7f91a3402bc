// Package http provides the chi handlers of the HealthMate API.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/healthmate/internal/middleware"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// UserExists checks whether a user with the given login exists.
	UserExists(ctx context.Context, login string) (bool, error)
	// RegisterUser registers a new user with the given login and display name.
	RegisterUser(ctx context.Context, login, displayName string) error
}

// CertIssuer signs owner client certificates.
type CertIssuer interface {
	IssueClientCertificate(login string, validity time.Duration) (certPEM, keyPEM []byte, err error)
}

// TokenIssuer issues bearer tokens for authenticated owners.
type TokenIssuer interface {
	Enabled() bool
	Issue(login string) (string, time.Time, error)
}

// AuthHandler handles HTTP requests for user registration and login.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Certs signs the client certificate returned on registration.
	Certs CertIssuer
	// Tokens is optional; when enabled, register and login also return a
	// bearer token.
	Tokens TokenIssuer
	// CertValidity is the lifetime of issued certificates.
	CertValidity time.Duration
	Log          *zap.Logger
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	// Login is the owner id, usually an email address.
	Login string `json:"login"`
	// DisplayName is shown on reports. Optional.
	DisplayName string `json:"display_name"`
}

// Credentials is returned by Register and Login.
type Credentials struct {
	User      string     `json:"user"`
	Cert      string     `json:"cert,omitempty"`
	Key       string     `json:"key,omitempty"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Register handles user registration requests.
// It expects a JSON body with a non-empty "login" field. A new user gets a
// client certificate signed by the CA whose CN is the login, plus a bearer
// token when token auth is enabled. Existing logins are rejected with 409.
// The login is stored before the certificate is signed, so only the request
// that wins the insert receives credentials.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Login) == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	login := strings.TrimSpace(req.Login)

	exists, err := h.AuthService.UserExists(r.Context(), login)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if exists {
		http.Error(w, "user already exists", http.StatusConflict)
		return
	}

	if err := h.AuthService.RegisterUser(r.Context(), login, req.DisplayName); err != nil {
		writeError(w, h.Log, err)
		return
	}

	certPEM, keyPEM, err := h.Certs.IssueClientCertificate(login, h.CertValidity)
	if err != nil {
		h.Log.Error("failed to issue client certificate", zap.String("login", login), zap.Error(err))
		http.Error(w, "failed to generate certificate", http.StatusInternalServerError)
		return
	}

	creds := Credentials{User: login, Cert: string(certPEM), Key: string(keyPEM)}
	if !h.attachToken(w, &creds) {
		return
	}
	writeJSON(w, http.StatusCreated, creds)
}

// Login handles certificate-based login requests.
// The CommonName of the presented client certificate is the login. A known
// user receives a fresh bearer token when token auth is enabled.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	login := middleware.OwnerFromCertificate(r)
	if login == "" {
		http.Error(w, "client certificate required", http.StatusUnauthorized)
		return
	}

	exists, err := h.AuthService.UserExists(r.Context(), login)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if !exists {
		http.Error(w, "user not found", http.StatusForbidden)
		return
	}

	creds := Credentials{User: login}
	if !h.attachToken(w, &creds) {
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

func (h *AuthHandler) attachToken(w http.ResponseWriter, creds *Credentials) bool {
	if h.Tokens == nil || !h.Tokens.Enabled() {
		return true
	}
	token, exp, err := h.Tokens.Issue(creds.User)
	if err != nil {
		h.Log.Error("failed to issue token", zap.String("login", creds.User), zap.Error(err))
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return false
	}
	creds.Token = token
	creds.ExpiresAt = &exp
	return true
}
