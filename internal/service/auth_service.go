package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/olekhv/contactbook/internal/model"
	appErr "github.com/olekhv/contactbook/internal/pkg/errors"
	"github.com/olekhv/contactbook/internal/pkg/logutil"
	"github.com/olekhv/contactbook/internal/pkg/password"
	"github.com/olekhv/contactbook/internal/pkg/timeutil"
	"github.com/olekhv/contactbook/internal/pkg/token"
	"github.com/olekhv/contactbook/internal/repo"
)

const verificationMailTemplate = `# Verify your email

Please verify your email address by clicking the link below:

[Verify email](%s/verify/%s)

If you did not create this account you can ignore this message.`

type AuthService struct {
	users   *repo.UserRepo
	signer  *token.Signer
	mailer  *MailerService
	baseURL string
}

func NewAuthService(users *repo.UserRepo, signer *token.Signer, mailer *MailerService, baseURL string) *AuthService {
	return &AuthService{users: users, signer: signer, mailer: mailer, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Register creates a user. With activate=false the account stays inactive
// until the emailed verification link is followed; the mail itself is
// best-effort and never fails the registration.
func (s *AuthService) Register(ctx context.Context, email, plainPassword string, activate bool) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || plainPassword == "" {
		return nil, appErr.ErrInvalid
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     activate,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if !activate {
		s.sendVerificationMail(ctx, email)
	}
	return user, nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, email string) {
	verifyToken, err := s.signer.Issue(email, token.KindVerify)
	if err != nil {
		logutil.GetLogger(ctx).Error("issue verification token", zap.Error(err))
		return
	}
	body := fmt.Sprintf(verificationMailTemplate, s.baseURL, verifyToken)
	if err := s.mailer.EnqueueMarkdown(ctx, email, "Verify your email", body); err != nil {
		logutil.GetLogger(ctx).Error("enqueue verification mail", zap.String("recipient", email), zap.Error(err))
	}
}

// Login verifies credentials and issues an access/refresh token pair. An
// unknown email and a wrong password both come back as ErrUnauthorized so
// callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (access, refresh string, err error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", "", appErr.ErrUnauthorized
	}
	if !password.Verify(plainPassword, user.PasswordHash) {
		return "", "", appErr.ErrUnauthorized
	}
	access, err = s.signer.Issue(user.Email, token.KindAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.signer.Issue(user.Email, token.KindRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ResolveUser turns a raw bearer token into the live user record. Every
// failure mode (bad token, expired token, subject no longer present) is the
// same ErrUnauthorized.
func (s *AuthService) ResolveUser(ctx context.Context, rawToken string) (*model.User, error) {
	subject, err := s.signer.Decode(rawToken, token.KindAccess)
	if err != nil {
		return nil, appErr.ErrUnauthorized
	}
	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return nil, appErr.ErrUnauthorized
	}
	return user, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// VerifyEmail flips is_active for the subject of a verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, rawToken string) error {
	subject, err := s.signer.Decode(rawToken, token.KindVerify)
	if err != nil {
		return appErr.ErrUnauthorized
	}
	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		return appErr.ErrNotFound
	}
	if user.IsActive {
		return nil
	}
	return s.users.SetActive(ctx, user.ID, timeutil.NowUnix())
}
