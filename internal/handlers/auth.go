package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/portfolio/internal/apperrors"
	"github.com/nkiryanov/portfolio/internal/handlers/render"
	"github.com/nkiryanov/portfolio/internal/handlers/userctx"
	"github.com/nkiryanov/portfolio/internal/logger"
	"github.com/nkiryanov/portfolio/internal/models"
)

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	// and apperrors.ErrPasswordTooShort or apperrors.ErrPasswordTooLong for unacceptable password
	Register(ctx context.Context, username string, password string) (models.Session, error)

	// Login user with username and password
	// Has to return apperrors.ErrInvalidCredentials whatever check failed
	Login(ctx context.Context, username string, password string) (models.Session, error)

	// Has to return apperrors.ErrUserNotFound if user not found
	Profile(ctx context.Context, userID uuid.UUID) (models.User, error)

	// Get request and return identity if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.Identity, error)
}

// Public user projection: never has password hash
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

type SessionResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

type AuthHandler struct {
	authService authService
	logger      logger.Logger
}

func NewAuth(auth authService, l logger.Logger) *AuthHandler {
	return &AuthHandler{authService: auth, logger: l}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,notblank,min=2,max=50"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}

	data, err := render.BindAndValidate[RegisterRequest](w, r)
	if err != nil {
		return
	}

	session, err := h.authService.Register(r.Context(), data.Username, data.Password)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		render.Conflict(w, "Username already taken")
		return
	case errors.Is(err, apperrors.ErrPasswordTooShort), errors.Is(err, apperrors.ErrPasswordTooLong):
		render.ValidationError(w, "Password must be 6 to 72 bytes long")
		return
	default:
		h.logger.Error("register failed", "username", data.Username, "error", err)
		render.InternalError(w)
		return
	}

	render.JSONWithStatus(w, SessionResponse{
		Message: "User registered successfully",
		User:    newUserResponse(session.User),
		Token:   session.Token.Value,
	}, http.StatusCreated)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	// No length rules here: they would tell which usernames or passwords can't exist
	type LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	session, err := h.authService.Login(r.Context(), data.Username, data.Password)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		h.logger.Warn("login failed", "username", data.Username)
		render.InvalidCredentials(w)
		return
	default:
		h.logger.Error("login failed", "username", data.Username, "error", err)
		render.InternalError(w)
		return
	}

	render.JSON(w, SessionResponse{
		Message: "Login successful",
		User:    newUserResponse(session.User),
		Token:   session.Token.Value,
	})
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	type ProfileResponse struct {
		User UserResponse `json:"user"`
	}

	identity, ok := userctx.FromContext(r.Context())
	if !ok {
		h.logger.Error("profile requested without identity in context")
		render.InternalError(w)
		return
	}

	user, err := h.authService.Profile(r.Context(), identity.UserID)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		render.NotFound(w, "User not found")
		return
	default:
		h.logger.Error("profile lookup failed", "user_id", identity.UserID, "error", err)
		render.InternalError(w)
		return
	}

	render.JSON(w, ProfileResponse{User: newUserResponse(user)})
}
