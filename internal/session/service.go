package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/querycache"
)

const meResource = "me"

// BackendAPI is the slice of the backend client the session service uses.
type BackendAPI interface {
	PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error)
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

type Service struct {
	client BackendAPI
	cache  *querycache.Cache
	config internal.SessionConfig
	meTTL  time.Duration
	logger *slog.Logger
}

func NewService(client BackendAPI, cache *querycache.Cache, config internal.SessionConfig, meTTL time.Duration, logger *slog.Logger) *Service {
	if meTTL <= 0 {
		meTTL = 30 * time.Second
	}
	return &Service{
		client: client,
		cache:  cache,
		config: config,
		meTTL:  meTTL,
		logger: logger,
	}
}

type loginResult struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type sessionClaims struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	BackendToken string `json:"btk"`
	jwt.RegisteredClaims
}

// Login authenticates against the backend credentials endpoint. On success
// it returns the session and a signed cookie value; on failure the error
// carries the server's message verbatim so the UI can show it.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*Session, string, error) {
	if err := dto.Validate(); err != nil {
		return nil, "", err
	}

	envelope, err := s.client.PostJSON(ctx, "/api/login", map[string]string{
		"email":    dto.Email,
		"password": dto.Password,
	})
	if err != nil {
		s.logger.Warn("login rejected", "email", dto.Email, "error", err)
		return nil, "", err
	}

	var result loginResult
	if err := json.Unmarshal(envelope.Data, &result); err != nil {
		return nil, "", internal.NewInternalError("failed to decode login response", err)
	}
	if result.Token == "" {
		return nil, "", internal.ErrInvalidCredentials
	}

	sess := &Session{
		UserID: result.User.ID,
		Email:  result.User.Email,
		Name:   result.User.DisplayName(),
		Role:   result.User.Role,
		Token:  result.Token,
	}

	cookieValue, err := s.sign(sess)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to sign session", err)
	}

	// a fresh sign-in must not see a previous operator's cached profile
	s.cache.Invalidate(meResource)

	s.logger.Info("operator signed in", "user_id", sess.UserID, "role", sess.Role)
	return sess, cookieValue, nil
}

func (s *Service) sign(sess *Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email:        sess.Email,
		Name:         sess.Name,
		Role:         sess.Role,
		BackendToken: sess.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

// Authenticate parses and verifies a session cookie value.
func (s *Service) Authenticate(cookieValue string) (*Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(cookieValue, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, internal.ErrInvalidSession
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrSessionExpired
		}
		return nil, internal.ErrInvalidSession
	}

	return &Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
		Token:  claims.BackendToken,
	}, nil
}

// CurrentUser is the shared "who am I" provider. The profile is fetched from
// /api/me through the query cache so a page render issues at most one call
// no matter how many components need the operator's identity.
func (s *Service) CurrentUser(ctx context.Context) (*Profile, error) {
	sess, ok := FromContext(ctx)
	if !ok {
		return nil, internal.ErrInvalidSession
	}

	value, err := s.cache.Get(ctx, meResource, sess.UserID, s.meTTL, func(ctx context.Context) (any, error) {
		var response struct {
			Data Profile `json:"data"`
		}
		if err := s.client.GetJSON(ctx, "/api/me", nil, &response); err != nil {
			return nil, err
		}
		return &response.Data, nil
	})
	if err != nil {
		return nil, err
	}

	profile, ok := value.(*Profile)
	if !ok {
		return nil, internal.NewInternalError("unexpected cached profile type", nil)
	}
	return profile, nil
}

// CookieName exposes the configured cookie name for the handler.
func (s *Service) CookieName() string {
	return s.config.CookieName
}

func (s *Service) CookieSecure() bool {
	return s.config.CookieSecure
}

func (s *Service) CookieTTL() time.Duration {
	return s.config.TTL
}
