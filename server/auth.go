package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/dayboard/internal/logger"
	"github.com/existflow/dayboard/internal/model"
)

// sessionTTL is how long a login stays valid
const sessionTTL = 30 * 24 * time.Hour

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// handleRegister handles user registration. The first account, and any
// account named in ADMIN_SUBJECTS, may edit.
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	// Validate
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username, email, and password required"})
	}

	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Failed to hash password", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	ctx := c.Request().Context()
	var existing int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&existing); err != nil {
		logger.Error("Failed to count users", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	user := model.User{
		ID:           s.db.NewID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsAdmin:      existing == 0 || s.admins[req.Username],
	}

	// Insert user
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, username, email, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		user.ID, user.Username, user.Email, user.PasswordHash, user.IsAdmin, s.db.Now(),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "username or email already exists"})
		}
		logger.Error("Failed to create user", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	// Create session
	token, expiresAt, err := s.createSession(ctx, user.ID)
	if err != nil {
		logger.Error("Failed to create session", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("User registered", logger.F("username", user.Username), logger.F("admin", user.IsAdmin))

	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    user.ID,
	})
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := c.Request().Context()

	// Find user
	var userID, passwordHash string
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT id, password_hash FROM users WHERE username = ?`),
		strings.TrimSpace(req.Username),
	).Scan(&userID, &passwordHash)

	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	// Check password
	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	// Create session
	token, expiresAt, err := s.createSession(ctx, userID)
	if err != nil {
		logger.Error("Failed to create session", logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	logger.Info("User logged in", logger.F("username", req.Username))

	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    userID,
	})
}

// handleLogout ends the session of the presented token
func (s *Server) handleLogout(c echo.Context) error {
	p, _ := principalOf(c)
	if !p.viaJWT {
		token := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if _, err := s.db.ExecContext(c.Request().Context(),
			s.db.Rebind(`DELETE FROM sessions WHERE token = ?`), token); err != nil {
			logger.Error("Failed to delete session", logger.F("error", err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	p, _ := principalOf(c)
	if p.viaJWT {
		return c.JSON(http.StatusOK, map[string]any{
			"id":       p.UserID,
			"username": p.Name,
			"email":    "",
			"is_admin": p.Admin,
		})
	}

	var username, email string
	var isAdmin bool
	err := s.db.QueryRowContext(c.Request().Context(), s.db.Rebind(`
		SELECT username, email, is_admin FROM users WHERE id = ?`),
		p.UserID,
	).Scan(&username, &email, &isAdmin)

	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":       p.UserID,
		"username": username,
		"email":    email,
		"is_admin": isAdmin,
	})
}

// createSession creates a new session for a user
func (s *Server) createSession(ctx context.Context, userID string) (string, time.Time, error) {
	// Generate token
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(tokenBytes)

	expiresAt := s.clock().Add(sessionTTL).UTC()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO sessions (token, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`),
		token, userID, expiresAt.Format(time.RFC3339Nano), s.db.Now(),
	)

	return token, expiresAt, err
}

// lookupSession resolves a session token
func (s *Server) lookupSession(ctx context.Context, token string) (Principal, error) {
	var (
		sess     model.Session
		expires  string
		username string
		isAdmin  bool
	)
	err := s.db.QueryRowContext(ctx, s.db.Rebind(`
		SELECT s.user_id, s.expires_at, u.username, u.is_admin
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`),
		token,
	).Scan(&sess.UserID, &expires, &username, &isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return Principal{}, errors.New("invalid token")
	}
	if err != nil {
		return Principal{}, err
	}

	sess.ExpiresAt, err = time.Parse(time.RFC3339Nano, expires)
	if err != nil || sess.ExpiredAt(s.clock()) {
		return Principal{}, errors.New("token expired")
	}

	return Principal{UserID: sess.UserID, Name: username, Admin: isAdmin || s.admins[username]}, nil
}
