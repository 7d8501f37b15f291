package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/notification"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventRecorder counts workflow outcomes.
type EventRecorder interface {
	AuthEvent(event string, err error)
}

// Settings are the workflow knobs taken from configuration.
type Settings struct {
	StudentEmailDomain string
	OTPTTL             time.Duration
}

// UserService runs the OTP-gated registration, login and password reset
// workflow.
type UserService struct {
	settings Settings
	accounts AccountStore
	pending  Ledger
	resets   Ledger
	tokens   *TokenService
	sender   notification.Sender
	guard    ReplayGuard
	events   EventRecorder
	log      *zap.Logger

	now     func() time.Time
	newCode func() string
}

func NewUserService(
	settings Settings,
	accounts AccountStore,
	pending Ledger,
	resets Ledger,
	tokens *TokenService,
	sender notification.Sender,
	guard ReplayGuard,
	events EventRecorder,
	log *zap.Logger,
) *UserService {
	return &UserService{
		settings: settings,
		accounts: accounts,
		pending:  pending,
		resets:   resets,
		tokens:   tokens,
		sender:   sender,
		guard:    guard,
		events:   events,
		log:      log,
		now:      time.Now,
		newCode:  generateCode,
	}
}

const (
	msgEmailExists         = "Email already exists"
	msgInvalidOtp          = "Invalid OTP"
	msgOtpExpired          = "OTP expired"
	msgAlreadyRegistered   = "User already registered"
	msgInvalidCredentials  = "Invalid credentials"
	msgNoAccount           = "No account found with this email"
	msgInvalidResetOtp     = "Invalid or expired OTP"
	msgInvalidResetToken   = "Invalid or expired reset token"
	msgUserNotFound        = "User not found"
	msgNoPending           = "No pending verification found"
	msgVerificationMailErr = "Failed to send verification email. Check server logs."
	msgResetMailErr        = "Failed to send password reset email. Check server logs."
	msgSessionInvalid      = "Not authorized, token failed"
)

func internalError(err error) error {
	return apperr.Wrap(apperr.ErrInternal, "Server error", err)
}

// RequestSignup stores a pending registration for email and mails its code.
// Any earlier pending registration for the same email is discarded.
func (s *UserService) RequestSignup(ctx context.Context, req SignupRequest) (err error) {
	defer func() { s.events.AuthEvent("signup", err) }()

	email := NormalizeEmail(req.Email)
	candidate, err := NewCandidate(req.Name, req.Password, req.Role)
	if err != nil {
		return err
	}
	if err := ValidateEmail(email, candidate.Role, s.settings.StudentEmailDomain); err != nil {
		return err
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return internalError(err)
	}
	if existing != nil {
		return apperr.New(apperr.ErrConflict, msgEmailExists)
	}

	now := s.now()
	entry := &LedgerEntry{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Code:      s.newCode(),
		ExpiresAt: now.Add(s.settings.OTPTTL),
		Payload:   &candidate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.pending.Put(ctx, entry); err != nil {
		return internalError(err)
	}

	// The entry stays in place when the mail fails; the TTL index reclaims it.
	msg := notification.SignupCode(entry.Code, s.settings.OTPTTL)
	if err := s.sender.Send(ctx, email, msg.Subject, msg.Body); err != nil {
		s.log.Error("signup code dispatch failed", zap.String("email", email), zap.Error(err))
		return apperr.Wrap(apperr.ErrNotificationFailure, msgVerificationMailErr, err)
	}
	return nil
}

// ConfirmSignup turns a pending registration into a verified account and
// opens a session for it.
func (s *UserService) ConfirmSignup(ctx context.Context, email, code string) (_ *AuthResult, err error) {
	defer func() { s.events.AuthEvent("verify_signup", err) }()

	email = NormalizeEmail(email)
	entry, err := s.pending.FindByEmailAndCode(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return nil, internalError(err)
	}
	if entry == nil || entry.Payload == nil {
		return nil, apperr.New(apperr.ErrInvalidCode, msgInvalidOtp)
	}
	now := s.now()
	if entry.Expired(now) {
		return nil, apperr.New(apperr.ErrExpired, msgOtpExpired)
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, internalError(err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.ErrConflict, msgAlreadyRegistered)
	}

	hash, err := HashPassword(entry.Payload.Password)
	if err != nil {
		return nil, internalError(err)
	}
	account := &Account{
		ID:           primitive.NewObjectID(),
		Name:         entry.Payload.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         entry.Payload.Role,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, apperr.New(apperr.ErrConflict, msgAlreadyRegistered)
		}
		return nil, internalError(err)
	}

	if err := s.pending.Delete(ctx, entry.ID); err != nil {
		s.log.Warn("pending registration not deleted after verification",
			zap.String("email", email), zap.Error(err))
	}

	token, err := s.tokens.IssueSession(account.ID)
	if err != nil {
		return nil, internalError(err)
	}
	return &AuthResult{Token: token, User: account.Summary()}, nil
}

// Login checks a password. Unknown email and wrong password are reported
// with the same error.
func (s *UserService) Login(ctx context.Context, cred Credential) (_ *AuthResult, err error) {
	defer func() { s.events.AuthEvent("login", err) }()

	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(cred.Email))
	if err != nil {
		return nil, internalError(err)
	}
	if account == nil || !CheckPasswordHash(cred.Password, account.PasswordHash) {
		return nil, apperr.New(apperr.ErrInvalidCredentials, msgInvalidCredentials)
	}

	token, err := s.tokens.IssueSession(account.ID)
	if err != nil {
		return nil, internalError(err)
	}
	return &AuthResult{Token: token, User: account.Summary()}, nil
}

// RequestPasswordReset mails a reset code to an existing account.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { s.events.AuthEvent("forgot_password", err) }()

	email = NormalizeEmail(email)
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return internalError(err)
	}
	if account == nil {
		return apperr.NotFound(msgNoAccount)
	}

	now := s.now()
	entry := &LedgerEntry{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Code:      s.newCode(),
		ExpiresAt: now.Add(s.settings.OTPTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.resets.Put(ctx, entry); err != nil {
		return internalError(err)
	}

	msg := notification.PasswordResetCode(entry.Code, s.settings.OTPTTL)
	if err := s.sender.Send(ctx, email, msg.Subject, msg.Body); err != nil {
		s.log.Error("reset code dispatch failed", zap.String("email", email), zap.Error(err))
		return apperr.Wrap(apperr.ErrNotificationFailure, msgResetMailErr, err)
	}
	return nil
}

// ConfirmPasswordReset exchanges a reset code for a short-lived reset
// credential. The account itself is not touched.
func (s *UserService) ConfirmPasswordReset(ctx context.Context, email, code string) (_ string, err error) {
	defer func() { s.events.AuthEvent("verify_reset", err) }()

	email = NormalizeEmail(email)
	entry, err := s.resets.FindByEmailAndCode(ctx, email, strings.TrimSpace(code))
	if err != nil {
		return "", internalError(err)
	}
	if entry == nil {
		return "", apperr.New(apperr.ErrInvalidCode, msgInvalidResetOtp)
	}
	if entry.Expired(s.now()) {
		return "", apperr.New(apperr.ErrExpired, msgInvalidResetOtp)
	}

	resetToken, err := s.tokens.IssueReset(email)
	if err != nil {
		return "", internalError(err)
	}
	if err := s.resets.Delete(ctx, entry.ID); err != nil {
		return "", internalError(err)
	}
	return resetToken, nil
}

// ChangePassword replaces the password of the account bound to a reset
// credential.
func (s *UserService) ChangePassword(ctx context.Context, req ResetPasswordRequest) (err error) {
	defer func() { s.events.AuthEvent("reset_password", err) }()

	claims, err := s.tokens.VerifyReset(req.ResetToken)
	if err != nil {
		return apperr.Wrap(apperr.ErrInvalidOrExpiredToken, msgInvalidResetToken, err)
	}
	if err := validatePassword(req.NewPassword); err != nil {
		return err
	}

	account, err := s.accounts.FindByEmail(ctx, claims.Email)
	if err != nil {
		return internalError(err)
	}
	if account == nil {
		return apperr.NotFound(msgUserNotFound)
	}

	now := s.now()
	first, err := s.guard.Claim(ctx, claims.ID, claims.ExpiresAt.Sub(now))
	if err != nil {
		return internalError(err)
	}
	if !first {
		return apperr.New(apperr.ErrInvalidOrExpiredToken, msgInvalidResetToken)
	}

	hash, err := HashPassword(req.NewPassword)
	if err == nil {
		err = s.accounts.UpdatePassword(ctx, account.ID, hash, now)
	}
	if err != nil {
		// The credential stays usable when the password was not written.
		if rerr := s.guard.Release(ctx, claims.ID); rerr != nil {
			s.log.Warn("reset credential release failed", zap.Error(rerr))
		}
		if errors.Is(err, ErrAccountNotFound) {
			return apperr.NotFound(msgUserNotFound)
		}
		return internalError(err)
	}
	return nil
}

// ResendSignupOtp replaces the code of a pending registration in place and
// mails the new one.
func (s *UserService) ResendSignupOtp(ctx context.Context, email string) (err error) {
	defer func() { s.events.AuthEvent("resend_otp", err) }()

	email = NormalizeEmail(email)
	entry, err := s.pending.FindByEmail(ctx, email)
	if err != nil {
		return internalError(err)
	}
	if entry == nil {
		return apperr.New(apperr.ErrNoPendingVerification, msgNoPending)
	}

	now := s.now()
	code := s.newCode()
	if err := s.pending.Reissue(ctx, entry.ID, code, now.Add(s.settings.OTPTTL), now); err != nil {
		if errors.Is(err, ErrLedgerEntryGone) {
			return apperr.New(apperr.ErrNoPendingVerification, msgNoPending)
		}
		return internalError(err)
	}

	msg := notification.ResentSignupCode(code, s.settings.OTPTTL)
	if err := s.sender.Send(ctx, email, msg.Subject, msg.Body); err != nil {
		s.log.Error("resent code dispatch failed", zap.String("email", email), zap.Error(err))
		return apperr.Wrap(apperr.ErrNotificationFailure, msgVerificationMailErr, err)
	}
	return nil
}

// Authenticate resolves a session token to its account.
func (s *UserService) Authenticate(ctx context.Context, token string) (*Account, error) {
	id, err := s.tokens.VerifySession(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, msgSessionInvalid, err)
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if account == nil {
		return nil, apperr.Unauthorized(msgSessionInvalid)
	}
	return account, nil
}

// Profile returns the public summary of the account with id.
func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*UserSummary, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}
	if account == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	summary := account.Summary()
	return &summary, nil
}
