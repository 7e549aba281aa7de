package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"carfest-ticketing/internal/logger"
	"carfest-ticketing/internal/models"
	"carfest-ticketing/internal/utils"
)

type AdminDBLayer interface {
	GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
}

type SessionWriter interface {
	SessionStore
	Put(ctx context.Context, sessionID string, session Session, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type Handler struct {
	DB         AdminDBLayer
	Sessions   SessionWriter
	Logger     *logger.Logger
	JWTSecret  string
	SessionTTL time.Duration
}

// Login verifies credentials and issues a session token backed by a
// server-side session record.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	admin, err := h.DB.GetAdminByEmail(r.Context(), req.Email)
	if err != nil {
		h.Logger.LogSecurity("LOGIN_FAILED", "Unknown account: "+req.Email)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Login failed", "invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		h.Logger.LogSecurity("LOGIN_FAILED", "Bad password for "+req.Email)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Login failed", "invalid credentials"))
		return
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := IssueToken(h.JWTSecret, admin.AdminID, admin.Role, sessionID, h.SessionTTL)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Login failed", "could not issue token"))
		return
	}

	session := Session{AdminID: admin.AdminID, Role: admin.Role, ExpiresAt: expiresAt}
	if err := h.Sessions.Put(r.Context(), sessionID, session, h.SessionTTL); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Login failed", "could not store session"))
		return
	}

	h.Logger.Info("AUTH", "Session opened for "+admin.Email)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged in", models.LoginResponse{
		Token:     token,
		Role:      admin.Role,
		ExpiresAt: expiresAt,
	}))
}

// Logout revokes the server-side session; the JWT becomes useless even
// before its expiry.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenString, err := ExtractTokenFromRequest(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Logout failed", err.Error()))
		return
	}

	claims, err := ParseToken(h.JWTSecret, tokenString)
	if err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Logout failed", "invalid token"))
		return
	}

	if err := h.Sessions.Delete(r.Context(), claims.SessionID); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Logout failed", "could not revoke session"))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged out", nil))
}

// HashPassword wraps bcrypt for account provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
