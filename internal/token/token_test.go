package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_SessionTokenRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("issued session tokens verify and carry their claims", prop.ForAll(
		func(email string, role string) bool {
			service := NewService("test-secret", 60, 30)
			userID := uuid.New()

			tokenString, err := service.IssueSession(userID, email, role)
			if err != nil {
				t.Logf("FAIL: Issue failed: %v", err)
				return false
			}

			claims, err := service.VerifySession(tokenString)
			if err != nil {
				t.Logf("FAIL: Verify failed: %v", err)
				return false
			}

			if claims.UserID != userID || claims.Email != email || claims.Role != role {
				t.Logf("FAIL: Claims mismatch")
				return false
			}

			if claims.ExpiresAt == nil || time.Now().After(claims.ExpiresAt.Time) {
				t.Logf("FAIL: Token missing or past expiry")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.OneConstOf("user", "admin"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_TokenKindsDoNotCrossVerify(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a token of one kind never verifies as another", prop.ForAll(
		func(email string) bool {
			service := NewService("test-secret", 60, 30)
			userID := uuid.New()

			sessionToken, err := service.IssueSession(userID, email, "user")
			if err != nil {
				return false
			}
			resetToken, err := service.IssuePasswordReset(userID)
			if err != nil {
				return false
			}
			confirmToken, err := service.IssueEmailConfirmation("Name", email, "hash", "600123123", uuid.New())
			if err != nil {
				return false
			}

			if _, err := service.VerifyPasswordReset(sessionToken); err != ErrTokenInvalid {
				t.Logf("FAIL: Session token accepted as reset token")
				return false
			}
			if _, err := service.VerifyEmailConfirmation(sessionToken); err != ErrTokenInvalid {
				t.Logf("FAIL: Session token accepted as confirmation token")
				return false
			}
			if _, err := service.VerifySession(resetToken); err != ErrTokenInvalid {
				t.Logf("FAIL: Reset token accepted as session token")
				return false
			}
			if _, err := service.VerifySession(confirmToken); err != ErrTokenInvalid {
				t.Logf("FAIL: Confirmation token accepted as session token")
				return false
			}

			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestEmailConfirmationRoundTrip(t *testing.T) {
	service := NewService("test-secret", 60, 30)
	roleID := uuid.New()

	tokenString, err := service.IssueEmailConfirmation("Ana", "ana@example.com", "$2a$10$fakehash", "600111222", roleID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := service.VerifyEmailConfirmation(tokenString)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.Name != "Ana" || claims.Email != "ana@example.com" || claims.Phone != "600111222" {
		t.Errorf("Claims mismatch: %+v", claims)
	}
	if claims.PasswordHash != "$2a$10$fakehash" {
		t.Errorf("Password hash not carried through")
	}
	if claims.RoleID != roleID {
		t.Errorf("Role ID mismatch")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	// Zero-minute lifetimes make freshly issued tokens already expired.
	service := NewService("test-secret", 0, 0)

	tokenString, err := service.IssueSession(uuid.New(), "user@example.com", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := service.VerifySession(tokenString); err != ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	issuer := NewService("secret-one", 60, 30)
	verifier := NewService("secret-two", 60, 30)

	tokenString, err := issuer.IssueSession(uuid.New(), "user@example.com", "user")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.VerifySession(tokenString); err != ErrTokenInvalid {
		t.Errorf("Expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	service := NewService("test-secret", 60, 30)

	for _, s := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := service.VerifySession(s); err != ErrTokenInvalid {
			t.Errorf("Expected ErrTokenInvalid for %q, got %v", s, err)
		}
	}
}
