package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/taskflow-hq/taskflow-api/internal/models"
	"github.com/taskflow-hq/taskflow-api/internal/store"
)

var (
	ErrMalformedToken = errors.New("malformed identity token")
)

// SessionRecorder persists the most recent session pointer.
type SessionRecorder interface {
	SaveSessionUserID(id string) error
}

// AuthService handles the first-party identity exchange: it decodes the
// signed identity token's payload segment and finds or creates the matching
// user. The signature is never validated here; the token comes from the
// identity provider and the core only reads the decoded claims.
type AuthService struct {
	board    *BoardService
	sessions SessionRecorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(board *BoardService, sessions SessionRecorder) *AuthService {
	return &AuthService{board: board, sessions: sessions}
}

// ExchangeToken resolves an identity token to a user, creating the user on
// first sign-in, and records the session pointer.
func (s *AuthService) ExchangeToken(credential string) (*models.User, error) {
	profile, err := decodeIdentityToken(credential)
	if err != nil {
		log.Printf("auth: rejected token: %v", err)
		return nil, ErrMalformedToken
	}

	user := s.board.Authenticate(*profile)
	s.recordSession(user.ID)
	return &user, nil
}

// Logout clears the persisted session pointer.
func (s *AuthService) Logout() {
	s.recordSession("")
}

func (s *AuthService) recordSession(id string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SaveSessionUserID(id); err != nil {
		log.Printf("auth: failed to record session pointer: %v", err)
	}
}

// decodeIdentityToken extracts the base64url-encoded JSON payload segment
// of a compact token. At least sub, name, email and picture are expected;
// only email is required to resolve the account.
func decodeIdentityToken(credential string) (*store.IdentityProfile, error) {
	parts := strings.Split(credential, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("expected a compact token, got %d segment(s)", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, fmt.Errorf("payload segment is not base64url: %w", err)
	}

	var profile store.IdentityProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, fmt.Errorf("payload segment is not JSON: %w", err)
	}
	if profile.Email == "" {
		return nil, errors.New("payload has no email claim")
	}
	return &profile, nil
}
