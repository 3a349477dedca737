package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldops/internal/model"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Service struct {
	repo   *Repo
	logger *zap.Logger

	cookieName string
	sessionTTL time.Duration
}

func NewService(repo *Repo, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:       repo,
		logger:     logger,
		cookieName: "fieldops_session",
		sessionTTL: 7 * 24 * time.Hour,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return ErrInvalidEmail
	}
	if strings.ToLower(addr.Address) != email {
		return ErrInvalidEmail
	}
	return nil
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateSalt() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func generateToken() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b[:]), nil
}

// SeedAdmin ensures a user exists for the configured admin email. The
// password is only applied on first creation so a changed config value
// never silently rewrites an existing account.
func (s *Service) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	salt, err := generateSalt()
	if err != nil {
		return err
	}
	u := model.User{
		ID:           "user_" + uuid.NewString(),
		Email:        email,
		Name:         "Admin",
		PasswordHash: hashPassword(password, salt),
		Salt:         salt,
	}
	if _, err := s.repo.CreateUser(ctx, u); err != nil {
		return err
	}
	s.logger.Info("seeded admin user", zap.String("email", email))
	return nil
}

// Login checks the credentials and opens a session. The returned token
// is the only place the raw session token ever exists; the store keeps
// its hash.
func (s *Service) Login(ctx context.Context, email, password string, now time.Time) (model.User, string, time.Time, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return model.User{}, "", time.Time{}, err
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return model.User{}, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, "", time.Time{}, err
	}

	want := []byte(u.PasswordHash)
	got := []byte(hashPassword(password, u.Salt))
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return model.User{}, "", time.Time{}, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return model.User{}, "", time.Time{}, err
	}
	exp := now.Add(s.sessionTTL)
	sess := model.Session{
		ID:        "sess_" + uuid.NewString(),
		UserID:    u.ID,
		TokenHash: hashToken(token),
		LastSeen:  now,
		ExpiresAt: exp,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return model.User{}, "", time.Time{}, err
	}
	return u, token, exp, nil
}

func (s *Service) AuthenticateRequest(r *http.Request, now time.Time) (model.User, model.Session, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return model.User{}, model.Session{}, false
	}
	ctx := r.Context()

	sess, err := s.repo.GetSessionByTokenHash(ctx, hashToken(cookie.Value))
	if err != nil {
		return model.User{}, model.Session{}, false
	}
	if now.After(sess.ExpiresAt) {
		_ = s.repo.DeleteSession(ctx, sess.ID)
		return model.User{}, model.Session{}, false
	}

	u, err := s.repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		_ = s.repo.DeleteSession(ctx, sess.ID)
		return model.User{}, model.Session{}, false
	}

	// Best-effort last-seen update, throttled to reduce writes.
	if now.Sub(sess.LastSeen) >= 5*time.Minute {
		_ = s.repo.TouchSession(ctx, sess.ID, now)
		sess.LastSeen = now
	}

	return u, sess, true
}

func (s *Service) RevokeSessionForRequest(r *http.Request) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	_ = s.repo.DeleteSessionByTokenHash(r.Context(), hashToken(cookie.Value))
}

func (s *Service) shouldUseSecureCookie(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FIELDOPS_COOKIE_SECURE"))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAPI rejects unauthenticated requests with a JSON 401 before
// the wrapped handler can touch anything.
func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, sess, ok := s.AuthenticateRequest(r, time.Now())
		if !ok {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
			return
		}
		ctx := withSessionContext(withUserContext(r.Context(), u), sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
