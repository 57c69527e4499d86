// Package session owns the single live client-side session: login, logout,
// forced expiry and rehydration from durable storage. It is the one source
// of truth for role-gated decisions; no screen keeps its own copy.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DipuTony/trulyhelp-portal/internal/common"
)

// CredentialStorage persists the bearer credential across process restarts.
// A nil storage disables rehydration but never breaks login/logout.
type CredentialStorage interface {
	SaveCredential(ctx context.Context, token string) error
	LoadCredential(ctx context.Context) (string, error)
	ClearCredential(ctx context.Context) error
}

// Store holds the current session. Constructed once and injected into the
// gateway and the guard; never accessed through a package-level singleton.
type Store struct {
	baseURL string
	client  *http.Client
	storage CredentialStorage

	mu      sync.Mutex
	session Session
	gen     uint64 // bumped on every login/logout/expire
	notice  string
}

func NewStore(baseURL string, storage CredentialStorage) *Store {
	return &Store{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		storage: storage,
		session: Session{Status: StatusAnonymous},
	}
}

type loginResponse struct {
	Token string `json:"token"`

	// The backend reports the verification flag at the top level on a 403
	// and nested in the user object on success.
	EmailVerifyStatus *bool `json:"emailVerifyStatus"`

	User struct {
		UserID            string `json:"userId"`
		Name              string `json:"name"`
		Email             string `json:"email"`
		Role              string `json:"role"`
		EmailVerifyStatus *bool  `json:"emailVerifyStatus"`
	} `json:"user"`
}

// explicitlyUnverified reports whether either verification flag is present
// and false. A 403 body without the flag is not an unverified account.
func (r loginResponse) explicitlyUnverified() bool {
	if r.EmailVerifyStatus != nil {
		return !*r.EmailVerifyStatus
	}
	if r.User.EmailVerifyStatus != nil {
		return !*r.User.EmailVerifyStatus
	}
	return false
}

// Login authenticates against the backend and replaces the live session on
// success. Unverified accounts are reported distinctly so the screen can
// offer a resend-verification action.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Session{}, common.NewTransportError(err, nil)
	}
	defer resp.Body.Close()

	var body loginResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	switch {
	case resp.StatusCode == http.StatusOK:
		if decodeErr != nil {
			return Session{}, fmt.Errorf("malformed login response: %w", decodeErr)
		}
	case resp.StatusCode == http.StatusForbidden && decodeErr == nil && body.explicitlyUnverified():
		return Session{}, &common.AuthenticationError{
			Reason:  common.ReasonEmailUnverified,
			Message: "email address is not verified",
		}
	case resp.StatusCode >= http.StatusInternalServerError:
		return Session{}, common.NewTransportError(fmt.Errorf("login returned %d", resp.StatusCode), nil)
	default:
		return Session{}, &common.AuthenticationError{
			Reason:  common.ReasonInvalidCredentials,
			Message: "invalid email or password",
		}
	}

	verified := body.User.EmailVerifyStatus != nil && *body.User.EmailVerifyStatus
	sess := Session{
		Identity: Identity{
			UserID:        body.User.UserID,
			Name:          body.User.Name,
			Email:         body.User.Email,
			Role:          ParseRole(body.User.Role),
			EmailVerified: verified,
		},
		Credential: body.Token,
		Status:     StatusActive,
	}

	s.mu.Lock()
	s.session = sess
	s.gen++
	s.notice = ""
	s.mu.Unlock()

	if s.storage != nil {
		if err := s.storage.SaveCredential(ctx, body.Token); err != nil {
			log.Printf("could not persist credential: %v", err)
		}
	}

	return sess, nil
}

// ResendVerification asks the backend to re-send the verification mail. It
// needs no live session.
func (s *Store) ResendVerification(ctx context.Context, email string) error {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/resend-verification", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return common.NewTransportError(err, nil)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend verification returned %d", resp.StatusCode)
	}
	return nil
}

// Logout clears the session. Idempotent, and deliberately has no network
// dependency: it must work with the backend unreachable.
func (s *Store) Logout() {
	s.mu.Lock()
	s.session = Session{Status: StatusAnonymous}
	s.gen++
	s.notice = ""
	s.mu.Unlock()

	if s.storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.storage.ClearCredential(ctx); err != nil {
			log.Printf("could not clear persisted credential: %v", err)
		}
	}
}

// Credential returns the live bearer token and its generation. The gateway
// records the generation with each outbound request so a 401 can be matched
// back to the credential that caused it.
func (s *Store) Credential() (string, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.Status != StatusActive {
		return "", s.gen, false
	}
	return s.session.Credential, s.gen, true
}

// ExpireIfCurrent performs the forced-expiry transition, but only if gen
// still identifies the live credential. Concurrent 401s from parallel
// requests all carry the same generation, so exactly one of them wins and
// the rest are no-ops. Reports whether this call performed the expiry.
func (s *Store) ExpireIfCurrent(gen uint64, notice string) bool {
	s.mu.Lock()
	expired := s.session.Status == StatusActive && gen == s.gen
	if expired {
		s.session = Session{Status: StatusExpired}
		s.gen++
		s.notice = notice
	}
	s.mu.Unlock()

	if expired && s.storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.storage.ClearCredential(ctx); err != nil {
			log.Printf("could not clear persisted credential: %v", err)
		}
	}
	return expired
}

// Expire forces the session out unconditionally, e.g. from an explicit
// "sign out everywhere" action. Same terminal state as ExpireIfCurrent.
func (s *Store) Expire(notice string) {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.ExpireIfCurrent(gen, notice)
}

// Notice returns the pending user-visible message set by a forced expiry,
// empty when there is none.
func (s *Store) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Current returns an immutable snapshot of the session.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Restore rehydrates the session from durable storage on process start. The
// credential is not validated remotely; the first authorized call does that
// lazily. A token whose exp claim has already passed is discarded.
func (s *Store) Restore(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	token, err := s.storage.LoadCredential(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	identity, ok := identityFromToken(token)
	if !ok {
		if err := s.storage.ClearCredential(ctx); err != nil {
			log.Printf("could not clear stale credential: %v", err)
		}
		return errors.New("persisted credential is stale")
	}

	s.mu.Lock()
	s.session = Session{Identity: identity, Credential: token, Status: StatusActive}
	s.gen++
	s.mu.Unlock()
	return nil
}

// identityFromToken decodes the JWT claims without verifying the signature;
// the backend remains the authority and rejects bad tokens on first use.
func identityFromToken(token string) (Identity, bool) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Identity{}, false
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, false
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		return Identity{}, false
	}

	str := func(key string) string {
		if v, ok := claims[key].(string); ok {
			return v
		}
		return ""
	}
	verified := false
	if v, ok := claims["emailVerifyStatus"].(bool); ok {
		verified = v
	}

	id := Identity{
		UserID:        str("userId"),
		Name:          str("name"),
		Email:         str("email"),
		Role:          ParseRole(str("role")),
		EmailVerified: verified,
	}
	if id.UserID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			id.UserID = sub
		}
	}
	return id, id.UserID != ""
}
