package session_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docuflow/records-console/internal"
	"github.com/docuflow/records-console/internal/backend"
	"github.com/docuflow/records-console/internal/querycache"
	"github.com/docuflow/records-console/internal/session"
)

func TestSessionService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Service Suite")
}

// mockBackend implements session.BackendAPI
type mockBackend struct {
	loginEnvelope *backend.Envelope
	loginErr      error
	meProfile     session.Profile
	meErr         error
	meCalls       int
	postCalls     int
}

func (m *mockBackend) PostJSON(ctx context.Context, path string, payload any) (*backend.Envelope, error) {
	m.postCalls++
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginEnvelope, nil
}

func (m *mockBackend) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	m.meCalls++
	if m.meErr != nil {
		return m.meErr
	}
	data, err := json.Marshal(map[string]any{"data": m.meProfile})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func loginEnvelope(token string) *backend.Envelope {
	data, _ := json.Marshal(map[string]any{
		"token": token,
		"user": map[string]any{
			"id":         "42",
			"first_name": "Dana",
			"last_name":  "Cruz",
			"email":      "dana@example.com",
			"role":       "admin",
		},
	})
	return &backend.Envelope{Status: "success", Data: data}
}

var _ = Describe("Session Service", func() {
	var (
		mock    *mockBackend
		cache   *querycache.Cache
		service *session.Service
		logger  *slog.Logger
		config  internal.SessionConfig
	)

	BeforeEach(func() {
		mock = &mockBackend{loginEnvelope: loginEnvelope("backend-token")}
		cache = querycache.New()
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		config = internal.SessionConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			CookieName: "records_console_session",
			TTL:        time.Hour,
		}
		service = session.NewService(mock, cache, config, time.Minute, logger)
	})

	Describe("Login", func() {
		It("signs a cookie that authenticates back to the same session", func() {
			sess, cookieValue, err := service.Login(context.Background(), session.LoginDTO{
				Email:    "dana@example.com",
				Password: "secret123",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(sess.UserID).To(Equal("42"))
			Expect(sess.Token).To(Equal("backend-token"))

			parsed, err := service.Authenticate(cookieValue)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed.UserID).To(Equal("42"))
			Expect(parsed.Email).To(Equal("dana@example.com"))
			Expect(parsed.Name).To(Equal("Dana Cruz"))
			Expect(parsed.Role).To(Equal("admin"))
			Expect(parsed.Token).To(Equal("backend-token"))
		})

		It("rejects the form before calling the backend when fields are missing", func() {
			_, _, err := service.Login(context.Background(), session.LoginDTO{})
			Expect(err).To(HaveOccurred())
			Expect(mock.postCalls).To(BeZero())
		})

		It("passes the backend rejection through", func() {
			mock.loginErr = internal.NewExternalError("Invalid email or password", 401, nil)

			_, cookieValue, err := service.Login(context.Background(), session.LoginDTO{
				Email:    "dana@example.com",
				Password: "wrong-password",
			})

			Expect(err).To(HaveOccurred())
			Expect(cookieValue).To(BeEmpty())
		})

		It("fails when the backend answers without a token", func() {
			mock.loginEnvelope = &backend.Envelope{Status: "success", Data: json.RawMessage(`{"user":{"id":"42"}}`)}

			_, _, err := service.Login(context.Background(), session.LoginDTO{
				Email:    "dana@example.com",
				Password: "secret123",
			})

			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})
	})

	Describe("Authenticate", func() {
		It("rejects garbage cookie values", func() {
			_, err := service.Authenticate("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidSession))
		})

		It("rejects an expired session distinctly", func() {
			expired := internal.SessionConfig{Secret: config.Secret, CookieName: config.CookieName, TTL: -time.Hour}
			expiredService := session.NewService(mock, cache, expired, time.Minute, logger)

			_, expiredCookie, err := expiredService.Login(context.Background(), session.LoginDTO{
				Email:    "dana@example.com",
				Password: "secret123",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate(expiredCookie)
			Expect(err).To(MatchError(internal.ErrSessionExpired))
		})

		It("rejects a cookie signed with a different secret", func() {
			other := session.NewService(mock, cache, internal.SessionConfig{
				Secret:     "ffffffffffffffffffffffffffffffff",
				CookieName: config.CookieName,
				TTL:        time.Hour,
			}, time.Minute, logger)

			_, foreignCookie, err := other.Login(context.Background(), session.LoginDTO{
				Email:    "dana@example.com",
				Password: "secret123",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate(foreignCookie)
			Expect(err).To(MatchError(internal.ErrInvalidSession))
		})
	})

	Describe("CurrentUser", func() {
		var ctx context.Context

		BeforeEach(func() {
			mock.meProfile = session.Profile{
				ID:        "42",
				FirstName: "Dana",
				LastName:  "Cruz",
				Role:      "admin",
				Position:  &session.ProfilePosition{ID: 7, SectionHead: true},
			}
			ctx = session.WithSession(context.Background(), &session.Session{UserID: "42", Token: "backend-token"})
		})

		It("requires a session in the context", func() {
			_, err := service.CurrentUser(context.Background())
			Expect(err).To(MatchError(internal.ErrInvalidSession))
		})

		It("fetches the profile once and caches it", func() {
			first, err := service.CurrentUser(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := service.CurrentUser(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(mock.meCalls).To(Equal(1))
			Expect(first).To(Equal(second))
			Expect(first.IsSectionHead()).To(BeTrue())
		})

		It("refetches after a sign-in invalidates the cached profile", func() {
			_, err := service.CurrentUser(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, _, err = service.Login(context.Background(), session.LoginDTO{
				Email:    "dana@example.com",
				Password: "secret123",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CurrentUser(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.meCalls).To(Equal(2))
		})
	})
})
