package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"vidtube/internal/mailer"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var otpPattern = regexp.MustCompile(`^[0-9]{6}$`)

// PasswordResetService issues one-time codes by email and redeems them.
type PasswordResetService struct {
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	mailer    mailer.Mailer
	ttl       time.Duration
	now       func() time.Time
}

func NewPasswordResetService(
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	m mailer.Mailer,
	ttl time.Duration,
) *PasswordResetService {
	if m == nil {
		m = mailer.LogMailer{}
	}
	return &PasswordResetService{
		userRepo:  userRepo,
		resetRepo: resetRepo,
		mailer:    m,
		ttl:       ttl,
		now:       time.Now,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// RequestReset mails a code when email belongs to a user, replacing any code
// issued before. Unknown addresses succeed silently so callers cannot discover
// which accounts exist.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		middleware.Logger.InfoContext(ctx, "password reset requested for unknown email")
		return nil
	}

	otp, err := generateOTP()
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.resetRepo.DeleteByUser(ctx, user.ID); err != nil {
		return models.NewInternalError(err)
	}
	ticket := &models.PasswordResetTicket{
		UserID:    user.ID,
		OTP:       otp,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.resetRepo.Create(ctx, ticket); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, otp, s.ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ResetPassword redeems a live code and sets the new password. A code works
// once and a successful reset drops every other ticket the user holds.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	email = validation.NormalizeEmail(email)
	var errs validation.Errors
	errs.Add(validation.ValidateEmail(email))
	if !otpPattern.MatchString(otp) {
		errs = append(errs, "otp must be a 6 digit code")
	}
	errs.Add(validation.ValidatePassword(newPassword))
	if !errs.Empty() {
		return validationFailed(errs)
	}

	invalid := models.NewValidationError("Invalid or expired OTP")
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return invalid
	}

	now := s.now()
	ticket, err := s.resetRepo.FindRedeemable(ctx, user.ID, otp, now)
	if err != nil {
		return err
	}
	if ticket == nil {
		return invalid
	}
	consumed, err := s.resetRepo.Consume(ctx, ticket.ID, now)
	if err != nil {
		return err
	}
	if !consumed {
		return invalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	if err := s.resetRepo.DeleteByUser(ctx, user.ID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RunJanitor deletes expired tickets every interval until ctx is done.
func (s *PasswordResetService) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.resetRepo.DeleteExpired(ctx, s.now())
			if err != nil {
				middleware.Logger.ErrorContext(ctx, "failed to purge expired reset tickets", "error", err)
				continue
			}
			if removed > 0 {
				middleware.Logger.DebugContext(ctx, "purged expired reset tickets", "count", removed)
			}
		}
	}
}
