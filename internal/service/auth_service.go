package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"storyloom/internal/config"
	"storyloom/internal/errs"
	"storyloom/internal/mailer"
	"storyloom/internal/models"
	"storyloom/internal/repository"
)

const resetTokenTTL = 10 * time.Minute

type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *SignupRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResult, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (*AuthResult, error)
	GenerateToken(user *models.User) (string, error)
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	mail     mailer.Mailer
	cfg      *config.Config
	log      *zap.Logger
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, mail mailer.Mailer, cfg *config.Config, log *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		mail:     mail,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleUser,
	}

	if err := s.userRepo.CreateUser(ctx, user, req.Password); err != nil {
		return nil, err
	}
	user.PasswordHash = ""

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	go s.sendWelcome(context.WithoutCancel(ctx), user.Email, user.Username)

	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) sendWelcome(ctx context.Context, email, username string) {
	if err := s.mail.SendWelcome(ctx, email, username); err != nil {
		s.log.Warn("Welcome email failed", zap.String("email", email), zap.Error(err))
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.userRepo.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ForgotPassword stores a hashed one-time token and mails the raw token to the user.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}

	hash := sql.NullString{String: hashResetToken(token), Valid: true}
	expire := sql.NullTime{Time: s.now().Add(resetTokenTTL), Valid: true}
	if err := s.userRepo.SetResetToken(ctx, user.UserID, hash, expire); err != nil {
		return err
	}

	resetURL := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password/" + token
	if err := s.mail.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		if clearErr := s.userRepo.SetResetToken(ctx, user.UserID, sql.NullString{}, sql.NullTime{}); clearErr != nil {
			s.log.Error("Failed to clear reset token", zap.String("userId", user.UserID), zap.Error(clearErr))
		}
		return errs.Wrap(errs.Internal, "Email could not be sent", err)
	}

	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByResetToken(ctx, hashResetToken(token), s.now())
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.UserID, password); err != nil {
		return nil, err
	}

	jwtToken, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: jwtToken, User: user}, nil
}

func (s *authService) GenerateToken(user *models.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpire)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

func (s *authService) parseToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// Authenticate resolves a bearer token to its user. Every token or lookup
// failure is reported as the same unauthenticated error.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.parseToken(tokenString)
	if err != nil {
		return nil, errs.Wrap(errs.Unauthenticated, errs.MsgNotAuthorized, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, errs.Wrap(errs.Unauthenticated, errs.MsgNotAuthorized, err)
		}
		return nil, err
	}

	return user, nil
}
