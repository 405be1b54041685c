package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
)

// Claim kinds. Each issued token carries exactly one kind and can only be
// verified as that kind.
const (
	kindSession           = "session"
	kindEmailConfirmation = "email_confirmation"
	kindPasswordReset     = "password_reset"
)

// SessionClaims authenticates an active login session.
type SessionClaims struct {
	Kind   string    `json:"kind"`
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// EmailConfirmationClaims carries the full pending-registration payload.
// No user row exists until the token is redeemed: the account lives inside
// this token while the confirmation email is in flight. The password is
// already bcrypt-hashed when the token is issued.
type EmailConfirmationClaims struct {
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Phone        string    `json:"phone"`
	RoleID       uuid.UUID `json:"role_id"`
	jwt.RegisteredClaims
}

// PasswordResetClaims authorizes a single password reset for a user.
type PasswordResetClaims struct {
	Kind   string    `json:"kind"`
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed, time-bound claim sets. Stateless.
type Service struct {
	secret     []byte
	sessionTTL time.Duration
	confirmTTL time.Duration
	resetTTL   time.Duration
}

// NewService creates a token service. Session and reset lifetimes are given
// in minutes; confirmation links live for 24 hours.
func NewService(secret string, sessionExpiryMinutes, resetExpiryMinutes int) *Service {
	return &Service{
		secret:     []byte(secret),
		sessionTTL: time.Duration(sessionExpiryMinutes) * time.Minute,
		confirmTTL: 24 * time.Hour,
		resetTTL:   time.Duration(resetExpiryMinutes) * time.Minute,
	}
}

// IssueSession creates a session token for an authenticated user. The
// subject is the user's email.
func (s *Service) IssueSession(userID uuid.UUID, email, role string) (string, error) {
	claims := &SessionClaims{
		Kind:   kindSession,
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return s.sign(claims)
}

// IssueEmailConfirmation wraps a pending registration into a token to be
// embedded in the confirmation link.
func (s *Service) IssueEmailConfirmation(name, email, passwordHash, phone string, roleID uuid.UUID) (string, error) {
	claims := &EmailConfirmationClaims{
		Kind:         kindEmailConfirmation,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		RoleID:       roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.confirmTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return s.sign(claims)
}

// IssuePasswordReset creates a short-lived token for resetting a password.
func (s *Service) IssuePasswordReset(userID uuid.UUID) (string, error) {
	claims := &PasswordResetClaims{
		Kind:   kindPasswordReset,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return s.sign(claims)
}

// VerifySession validates a session token and returns its claims.
func (s *Service) VerifySession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindSession {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyEmailConfirmation validates a confirmation token and returns the
// pending registration it carries.
func (s *Service) VerifyEmailConfirmation(tokenString string) (*EmailConfirmationClaims, error) {
	claims := &EmailConfirmationClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindEmailConfirmation || claims.Email == "" || claims.PasswordHash == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyPasswordReset validates a reset token and returns its claims.
func (s *Service) VerifyPasswordReset(tokenString string) (*PasswordResetClaims, error) {
	claims := &PasswordResetClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindPasswordReset || claims.UserID == uuid.Nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s *Service) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *Service) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
