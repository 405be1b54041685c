package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"novaforge-store/internal/token"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			logger := zap.NewNop()
			tokens := token.NewService("test-secret", 60, 30)
			middleware := AuthMiddleware(tokens, logger)

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			path := "/" + pathSuffix
			if path == "/" {
				path = "/test"
			}

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ExpiredTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("expired tokens are rejected with 401", prop.ForAll(
		func(email string, role string) bool {
			logger := zap.NewNop()
			// Zero session lifetime makes every issued token expired.
			issuer := token.NewService("test-secret", 0, 30)
			verifier := token.NewService("test-secret", 60, 30)
			middleware := AuthMiddleware(verifier, logger)

			tokenString, err := issuer.IssueSession(uuid.New(), email, role)
			if err != nil {
				return false
			}

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.OneConstOf("user", "admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidTokensAllowProcessing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid tokens allow request processing", prop.ForAll(
		func(email string, role string) bool {
			logger := zap.NewNop()
			tokens := token.NewService("test-secret", 60, 30)
			middleware := AuthMiddleware(tokens, logger)
			userID := uuid.New()

			tokenString, err := tokens.IssueSession(userID, email, role)
			if err != nil {
				return false
			}

			handlerCalled := false
			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true

				ctxUserID, ok1 := GetUserID(r.Context())
				ctxEmail, ok2 := GetUserEmail(r.Context())
				ctxRole, ok3 := GetUserRole(r.Context())

				if !ok1 || !ok2 || !ok3 {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}
				if ctxUserID != userID || ctxEmail != email || ctxRole != role {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}

				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tokenString)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return handlerCalled && w.Code == http.StatusOK
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.OneConstOf("user", "admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_InvalidTokenFormatRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("invalid token formats are rejected", prop.ForAll(
		func(invalidToken string) bool {
			logger := zap.NewNop()
			tokens := token.NewService("test-secret", 60, 30)
			middleware := AuthMiddleware(tokens, logger)

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+invalidToken)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNonSessionTokensRejected(t *testing.T) {
	logger := zap.NewNop()
	tokens := token.NewService("test-secret", 60, 30)
	middleware := AuthMiddleware(tokens, logger)

	resetToken, err := tokens.IssuePasswordReset(uuid.New())
	if err != nil {
		t.Fatalf("IssuePasswordReset failed: %v", err)
	}

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+resetToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("A password reset token must not open a session, got %d", w.Code)
	}
}

func TestRequireAdminEnforcesRole(t *testing.T) {
	logger := zap.NewNop()
	tokens := token.NewService("test-secret", 60, 30)
	auth := AuthMiddleware(tokens, logger)
	admin := RequireAdmin(logger)

	handler := auth(admin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	cases := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"user", http.StatusForbidden},
	}

	for _, tc := range cases {
		tokenString, err := tokens.IssueSession(uuid.New(), "user@example.com", tc.role)
		if err != nil {
			t.Fatalf("IssueSession failed: %v", err)
		}

		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Errorf("Role %q: expected %d, got %d", tc.role, tc.want, w.Code)
		}
	}
}
