package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// sensitiveFields are form field names whose values must never reach logs
var sensitiveFields = []string{
	"password",
	"password_confirmation",
	"new_password",
	"token",
	"authorization",
	"secret",
	"credential",
	"session",
}

func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			statusCode := ww.statusCode
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			logLevel := slog.LevelInfo
			if statusCode >= 400 && statusCode < 500 {
				logLevel = slog.LevelWarn
			} else if statusCode >= 500 {
				logLevel = slog.LevelError
			}

			logger.Log(r.Context(), logLevel, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", filterSensitiveQuery(r.URL.Query()),
				"form", filteredForm(r),
				"status_code", statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// statusWriter captures the response status for logging. The body is never
// captured: pages are HTML and file downloads can be large.
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.statusCode = code
	sw.ResponseWriter.WriteHeader(code)
}

// filteredForm returns the submitted form fields with sensitive values
// masked. Multipart bodies are skipped entirely; they carry file contents.
func filteredForm(r *http.Request) map[string]string {
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		return nil
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return map[string]string{"_body": "[MULTIPART]"}
	}
	if r.PostForm == nil {
		return nil
	}

	filtered := make(map[string]string, len(r.PostForm))
	for name, values := range r.PostForm {
		if isSensitiveField(name) {
			filtered[name] = "[FILTERED]"
		} else {
			filtered[name] = strings.Join(values, ", ")
		}
	}
	return filtered
}

func filterSensitiveQuery(query url.Values) string {
	filtered := url.Values{}
	for name, values := range query {
		if isSensitiveField(name) {
			filtered.Set(name, "[FILTERED]")
		} else {
			filtered[name] = values
		}
	}
	return filtered.Encode()
}

func isSensitiveField(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}
