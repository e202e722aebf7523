package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tenant-platform/internal/auth"
	"tenant-platform/pkg/logger"
	"tenant-platform/prometheus"
)

// AuthHandler serves the two-phase login protocol and session management.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login is step one: credentials in, pending 2FA token out. The code
// travels out-of-band by email.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	pendingToken, err := h.svc.BeginLogin(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Error("Invalid credentials", zap.String("username", req.Username))
			prometheus.RecordAuthError("invalid_credentials")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid username or password"})
		}
		log.Error("Failed to begin login", zap.Error(err))
		prometheus.RecordAuthError("login_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	log.Info("Two-factor challenge issued", zap.String("username", req.Username))
	return c.JSON(http.StatusOK, echo.Map{
		"message":       "A verification code has been sent to your email",
		"pending_token": pendingToken,
	})
}

// Verify2FA is step two: pending token plus code in, session out.
func (h *AuthHandler) Verify2FA(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		PendingToken string `json:"pending_token"`
		Code         string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse verification request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	result, err := h.svc.Verify(c.Request().Context(), req.PendingToken, req.Code,
		c.RealIP(), c.Request().UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNoPendingChallenge):
			// Marker gone: the caller restarts at credential entry.
			prometheus.TwoFactorVerifyCounter.WithLabelValues("no_challenge").Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no pending login, please log in again"})
		case errors.Is(err, auth.ErrInvalidCode):
			// Marker kept: the caller may retry with another code.
			prometheus.TwoFactorVerifyCounter.WithLabelValues("invalid").Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired code"})
		}
		log.Error("Failed to verify code", zap.Error(err))
		prometheus.RecordAuthError("verify_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}

	prometheus.TwoFactorVerifyCounter.WithLabelValues("ok").Inc()
	log.Info("User logged in",
		zap.String("username", result.User.Username),
		zap.String("ip", c.RealIP()))

	return c.JSON(http.StatusOK, echo.Map{
		"token": result.Token,
		"user": map[string]interface{}{
			"id":       result.User.ID,
			"username": result.User.Username,
			"email":    result.User.Email,
		},
	})
}

// Register creates a new user account.
func (h *AuthHandler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username, email and password are required"})
	}

	user, err := h.svc.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			prometheus.RecordAuthError("username_already_exists")
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already registered"})
		}
		log.Error("Failed to register user", zap.Error(err))
		prometheus.RecordAuthError("registration_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	log.Info("User registered", zap.String("username", user.Username))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User registered successfully",
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout closes the caller's session. Already-closed sessions are not an
// error; the caller ends up logged out either way.
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromEcho(c)

	userID, _ := c.Get("user_id").(uint)
	sessionKey, _ := c.Get("session_key").(string)

	if err := h.svc.Logout(c.Request().Context(), userID, sessionKey); err != nil {
		log.Error("Failed to log out", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	log.Info("User logged out", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// LogoutAll closes every session of the caller across all devices.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	log := logger.FromEcho(c)

	userID, _ := c.Get("user_id").(uint)

	if err := h.svc.LogoutAll(c.Request().Context(), userID); err != nil {
		log.Error("Failed to log out everywhere", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	log.Info("User logged out of all devices", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out of all devices"})
}

// SessionLogs returns the caller's login history, newest first.
func (h *AuthHandler) SessionLogs(c echo.Context) error {
	log := logger.FromEcho(c)

	userID, _ := c.Get("user_id").(uint)

	sessions, err := h.svc.History(c.Request().Context(), userID)
	if err != nil {
		log.Error("Failed to retrieve session logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sessions"})
	}

	return c.JSON(http.StatusOK, echo.Map{"sessions": sessions})
}
