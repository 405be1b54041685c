package transport

import (
	"errors"
	"net/http"
	"strconv"

	"novaforge-store/internal/domain"
	"novaforge-store/internal/middleware"
	"novaforge-store/internal/repository"
	"novaforge-store/internal/service"
	"novaforge-store/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"required,es_phone"`
	RoleID   string `json:"role_id" validate:"required,uuid"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        UserProfile `json:"user"`
}

// UpdateUserRequest represents the admin user update payload
type UpdateUserRequest struct {
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required,es_phone"`
	RoleID string `json:"role_id" validate:"required,uuid"`
	Active bool   `json:"active"`
}

// ForgotPasswordRequest represents the password reset request payload
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents the password reset confirmation payload
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordRequest represents the authenticated password change payload
type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UserProfile represents user profile data
type UserProfile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	RoleID string `json:"role_id"`
	Active bool   `json:"active"`
}

// UserListResponse represents a page of users
type UserListResponse struct {
	Users    []UserProfile `json:"users"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func toUserProfile(user *domain.User) UserProfile {
	return UserProfile{
		ID:     user.ID.String(),
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
		RoleID: user.RoleID.String(),
		Active: user.Active,
	}
}

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userService service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes
func (h *UserHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", h.Register)
		r.Get("/confirm-email", h.ConfirmEmail)
		r.Post("/login", h.Login)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/profile", h.GetProfile)
			r.Put("/password", h.ChangePassword)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.Put("/{id}", h.UpdateUser)
			r.Delete("/{id}", h.DeleteUser)
		})
	})
}

// Register handles user registration. No account is created yet; the
// user receives an email with a confirmation link first.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Registration validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	if err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone, roleID); err != nil {
		h.logger.Error("Registration failed", zap.Error(err))

		if errors.Is(err, repository.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		if errors.Is(err, repository.ErrRoleNotFound) {
			middleware.RespondWithError(w, http.StatusBadRequest, "role not found")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to register user")
		return
	}

	h.logger.Info("Registration pending confirmation", zap.String("email", req.Email))
	middleware.RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "confirmation email sent",
	})
}

// ConfirmEmail redeems the confirmation token and creates the account
func (h *UserHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing token")
		return
	}

	user, err := h.userService.ConfirmEmail(r.Context(), tokenString)
	if err != nil {
		h.logger.Debug("Email confirmation failed", zap.Error(err))

		if errors.Is(err, token.ErrTokenInvalid) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to confirm email")
		return
	}

	h.logger.Info("User confirmed and created", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, toUserProfile(user))
}

// Login handles user authentication
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, user, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debug("Login failed", zap.Error(err))

		if errors.Is(err, service.ErrInvalidCredentials) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if errors.Is(err, service.ErrInactiveUser) {
			middleware.RespondWithError(w, http.StatusForbidden, "account is inactive")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to login")
		return
	}

	response := LoginResponse{
		AccessToken: accessToken,
		User:        toUserProfile(user),
	}

	h.logger.Info("User logged in successfully", zap.String("user_id", user.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// GetProfile handles getting the authenticated user's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Error("User ID not found in context")
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get user profile", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get user profile")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(user))
}

// ForgotPassword starts the password reset flow. The response does not
// reveal whether the address is registered.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			h.logger.Error("Password reset request failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to request password reset")
			return
		}
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset link has been sent",
	})
}

// ResetPassword redeems a reset token and sets a new password
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		h.logger.Debug("Password reset failed", zap.Error(err))

		if errors.Is(err, token.ErrTokenInvalid) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ChangePassword sets a new password for the authenticated user
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userService.ChangePassword(r.Context(), userID, req.NewPassword); err != nil {
		h.logger.Error("Password change failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ListUsers handles listing users with pagination (admin only)
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	users, total, err := h.userService.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	profiles := make([]UserProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, toUserProfile(user))
	}

	middleware.RespondWithJSON(w, http.StatusOK, UserListResponse{
		Users:    profiles,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetUser handles getting a user by ID (admin only)
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("Failed to get user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(user))
}

// UpdateUser handles updating a user (admin only)
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req UpdateUserRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	user, err := h.userService.Update(r.Context(), id, service.UpdateUserParams{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		RoleID: roleID,
		Active: req.Active,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		h.logger.Error("Failed to update user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toUserProfile(user))
}

// DeleteUser handles deleting a user (admin only)
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("Failed to delete user", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parsePagination reads page and page_size query parameters, applying
// defaults and caps shared by all list endpoints.
func parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = 20

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}
