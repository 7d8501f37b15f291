package auth

import (
	"net/http"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/httpio"

	"github.com/labstack/echo/v4"
)

// ContextAccountKey is where the session middleware stores the *Account of
// the caller.
const ContextAccountKey = "account"

// AccountFrom returns the authenticated account of the request.
func AccountFrom(c echo.Context) (*Account, error) {
	account, ok := c.Get(ContextAccountKey).(*Account)
	if !ok || account == nil {
		return nil, apperr.Unauthorized("Not authorized, no token")
	}
	return account, nil
}

type AuthHandler struct {
	service *UserService
}

func NewAuthHandler(service *UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	if err := h.service.RequestSignup(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"msg":   "OTP sent to email. Please verify to complete registration.",
		"email": NormalizeEmail(req.Email),
	})
}

func (h *AuthHandler) VerifyOtp(c echo.Context) error {
	var req VerifyOtpRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.service.ConfirmSignup(c.Request().Context(), req.Email, req.Otp)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"msg":   "Registration successful!",
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *AuthHandler) ResendOtp(c echo.Context) error {
	var req EmailRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ResendSignupOtp(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "New OTP sent to email"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var cred Credential
	if err := httpio.Bind(c, &cred); err != nil {
		return err
	}
	result, err := h.service.Login(c.Request().Context(), cred)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"msg":   "Login successful",
		"token": result.Token,
		"user":  result.User,
	})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req EmailRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	if err := h.service.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"msg":   "OTP sent to email for password reset",
		"email": NormalizeEmail(req.Email),
	})
}

func (h *AuthHandler) VerifyResetOtp(c echo.Context) error {
	var req VerifyOtpRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	resetToken, err := h.service.ConfirmPasswordReset(c.Request().Context(), req.Email, req.Otp)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"msg":        "OTP verified. You can now reset your password.",
		"resetToken": resetToken,
	})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := httpio.Bind(c, &req); err != nil {
		return err
	}
	if err := h.service.ChangePassword(c.Request().Context(), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "Password reset successful. You can now login."})
}

func (h *AuthHandler) Me(c echo.Context) error {
	account, err := AccountFrom(c)
	if err != nil {
		return err
	}
	profile, err := h.service.Profile(c.Request().Context(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
