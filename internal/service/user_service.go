package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/mailer"
	"novaforge-store/internal/repository"
	"novaforge-store/internal/token"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactiveUser       = errors.New("user account is inactive")
)

// UpdateUserParams carries the mutable profile fields of a user.
type UpdateUserParams struct {
	Name   string
	Email  string
	Phone  string
	RoleID uuid.UUID
	Active bool
}

// UserService defines the interface for user business logic. Registration
// is a two-step flow: Register emails a confirmation link carrying the
// pending account inside a signed token; ConfirmEmail redeems it and only
// then creates the user row.
type UserService interface {
	Register(ctx context.Context, name, email, password, phone string, roleID uuid.UUID) error
	ConfirmEmail(ctx context.Context, tokenString string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (sessionToken string, user *domain.User, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.User, int, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, tokenString, newPassword string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error
}

type userService struct {
	userRepo    repository.UserRepository
	roleRepo    repository.RoleRepository
	tokens      *token.Service
	mail        mailer.Mailer
	frontendURL string
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tokens *token.Service,
	mail mailer.Mailer,
	frontendURL string,
) UserService {
	return &userService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		tokens:      tokens,
		mail:        mail,
		frontendURL: frontendURL,
	}
}

// Register starts a pending registration: it validates the payload, wraps
// it into an email-confirmation token and mails the confirmation link. No
// user row is written until the link is followed.
func (s *userService) Register(ctx context.Context, name, email, password, phone string, roleID uuid.UUID) error {
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && err != repository.ErrUserNotFound {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return repository.ErrUserAlreadyExists
	}

	if _, err := s.roleRepo.FindByID(ctx, roleID); err != nil {
		return err
	}

	// Hash before the password enters the token; the plaintext never
	// leaves this function.
	passwordHash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	confirmToken, err := s.tokens.IssueEmailConfirmation(name, email, passwordHash, phone, roleID)
	if err != nil {
		return fmt.Errorf("failed to issue confirmation token: %w", err)
	}

	confirmURL := fmt.Sprintf("%s/confirm-email?token=%s", s.frontendURL, confirmToken)
	if err := s.mail.SendConfirmationEmail(name, email, confirmURL); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}

	return nil
}

// ConfirmEmail redeems a confirmation token and creates the user account.
func (s *userService) ConfirmEmail(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokens.VerifyEmailConfirmation(tokenString)
	if err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.FindByEmail(ctx, claims.Email)
	if err != nil && err != repository.ErrUserNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, repository.ErrUserAlreadyExists
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         claims.Name,
		Email:        claims.Email,
		PasswordHash: claims.PasswordHash,
		Phone:        claims.Phone,
		RoleID:       claims.RoleID,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user and returns a session token
func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !user.Active {
		return "", nil, ErrInactiveUser
	}

	role, err := s.roleRepo.FindByID(ctx, user.RoleID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve user role: %w", err)
	}

	sessionToken, err := s.tokens.IssueSession(user.ID, user.Email, role.Name)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return sessionToken, user, nil
}

// GetByID retrieves a user by ID
func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List retrieves users with pagination
func (s *userService) List(ctx context.Context, page, pageSize int) ([]*domain.User, int, error) {
	return s.userRepo.List(ctx, page, pageSize)
}

// Update modifies a user's profile
func (s *userService) Update(ctx context.Context, id uuid.UUID, params UpdateUserParams) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.roleRepo.FindByID(ctx, params.RoleID); err != nil {
		return nil, err
	}

	user.Name = params.Name
	user.Email = params.Email
	user.Phone = params.Phone
	user.RoleID = params.RoleID
	user.Active = params.Active
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes a user account
func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}

// RequestPasswordReset emails a short-lived reset link to the user.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	resetToken, err := s.tokens.IssuePasswordReset(user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, resetToken)
	if err := s.mail.SendPasswordResetEmail(user.Name, user.Email, resetURL); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}

	return nil
}

// ResetPassword redeems a reset token and replaces the user's password.
func (s *userService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims, err := s.tokens.VerifyPasswordReset(tokenString)
	if err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, claims.UserID, passwordHash)
}

// ChangePassword replaces the password of an authenticated user
func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, passwordHash)
}

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}
