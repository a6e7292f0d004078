package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/api/middleware"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

// CookieOptions controls the token cookie written on sign-in.
type CookieOptions struct {
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieOptions
}

func NewAuthHandler(authService ports.AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

type signUpRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
}

// SignUp creates a new user account with the "user" role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      409   {object}  api.ErrorResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return &domain.ValidationError{Details: []string{"body: must be a valid JSON object"}}
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{Message: "User registered", User: user})
}

// SignIn authenticates a user, sets the token cookie and returns the token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      401   {object}  api.ErrorResponse
// @Failure      429   {object}  api.ErrorResponse
// @Router       /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return &domain.ValidationError{Details: []string{"body: must be a valid JSON object"}}
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, user, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(h.tokenCookie(token.Value, token.ExpiresAt))
	return c.JSON(http.StatusOK, authResponse{
		Message: "User signed in successfully",
		User:    user,
		Token:   token.Value,
	})
}

// SignOut revokes the current token and clears the cookie.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authResponse
// @Failure      401  {object}  api.ErrorResponse
// @Router       /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	if err := h.authService.SignOut(c.Request().Context(), token); err != nil {
		return err
	}

	c.SetCookie(h.tokenCookie("", time.Unix(0, 0)))
	return c.JSON(http.StatusOK, authResponse{Message: "User signed out successfully"})
}

func (h *AuthHandler) tokenCookie(value string, expires time.Time) *http.Cookie {
	maxAge := int(time.Until(expires).Seconds())
	if value == "" || maxAge <= 0 {
		maxAge = -1
	}
	return &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
