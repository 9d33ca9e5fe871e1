package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

var (
	// ErrAccountExists indicates the normalized email is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrEmailDomainNotAllowed indicates the email is outside the organizational domain.
	ErrEmailDomainNotAllowed = errors.New("email domain not allowed")
	// ErrInvalidCredentials covers absent users, role mismatches and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided seed token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// AuthConfig carries the knobs the auth service needs from configuration.
type AuthConfig struct {
	AllowedEmailDomain string
	JWTSecret          string
	TokenTTL           time.Duration
	SeedEnabled        bool
	SeedToken          string
}

// AuthService owns credential storage and verification.
type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (models.User, error)
	Login(ctx context.Context, req dto.LoginRequest, meta dto.LoginMeta) (dto.LoginResult, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (bool, error)
	SeedStudents(ctx context.Context, token string) (int, error)
	SeedDemoUsers(ctx context.Context, token string) (int, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListSignIns(ctx context.Context, limit int) ([]models.SignInLog, error)
	RollNames(ctx context.Context) (map[string]string, error)
}

type authService struct {
	users    repository.UserRepository
	signIns  repository.SignInLogRepository
	validate *validator.Validate
	cfg      AuthConfig
	logger   zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, signIns repository.SignInLogRepository, validate *validator.Validate, cfg AuthConfig, logger zerolog.Logger) AuthService {
	if cfg.AllowedEmailDomain == "" {
		cfg.AllowedEmailDomain = "@klh.edu.in"
	}
	if !strings.HasPrefix(cfg.AllowedEmailDomain, "@") {
		cfg.AllowedEmailDomain = "@" + cfg.AllowedEmailDomain
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 12 * time.Hour
	}

	return &authService{
		users:    users,
		signIns:  signIns,
		validate: validate,
		cfg:      cfg,
		logger:   logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.User{}, err
	}

	email := normalizeEmail(req.Email)
	if !strings.HasSuffix(email, s.cfg.AllowedEmailDomain) {
		return models.User{}, ErrEmailDomainNotAllowed
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return models.User{}, ErrAccountExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:    email,
		Password: string(hash),
		Role:     req.Role,
		Name:     strings.TrimSpace(req.Name),
		Active:   true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.logger.Info().Str("email", maskEmailAddress(email)).Str("role", user.Role).Msg("account created")
	return user.Sanitized(), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest, meta dto.LoginMeta) (dto.LoginResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.LoginResult{}, err
	}

	email := normalizeEmail(req.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordSignIn(ctx, email, req.Role, false, meta)
			return dto.LoginResult{}, ErrInvalidCredentials
		}
		return dto.LoginResult{}, err
	}

	if !strings.EqualFold(user.Role, req.Role) {
		s.recordSignIn(ctx, email, req.Role, false, meta)
		return dto.LoginResult{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.recordSignIn(ctx, email, req.Role, false, meta)
		return dto.LoginResult{}, ErrInvalidCredentials
	}

	s.recordSignIn(ctx, email, user.Role, true, meta)

	token, err := s.issueToken(user)
	if err != nil {
		return dto.LoginResult{}, err
	}

	return dto.LoginResult{User: user.Sanitized(), AccessToken: token}, nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (bool, error) {
	if err := s.validate.Struct(req); err != nil {
		return false, err
	}

	email := normalizeEmail(req.Email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = string(hash)
	if err := s.users.Update(ctx, &user); err != nil {
		return false, err
	}

	s.logger.Info().Str("email", maskEmailAddress(email)).Msg("password reset")
	return true, nil
}

// SeedStudents creates the fixed block of demo student accounts, skipping any
// that already exist. The password of each account equals its roll number.
func (s *authService) SeedStudents(ctx context.Context, token string) (int, error) {
	if err := s.authorizeSeed(token); err != nil {
		return 0, err
	}

	created := 0
	for i := 1; i <= 10; i++ {
		roll := fmt.Sprintf("2410030%03d", i)
		email := roll + s.cfg.AllowedEmailDomain

		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(roll), bcrypt.DefaultCost)
		if err != nil {
			return created, fmt.Errorf("failed to hash password: %w", err)
		}

		user := models.User{
			Email:    email,
			Password: string(hash),
			Role:     "student",
			Name:     "Student " + roll[len(roll)-3:],
			Active:   true,
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return created, err
		}
		created++
	}

	s.logger.Info().Int("created", created).Msg("student accounts seeded")
	return created, nil
}

// SeedDemoUsers creates one demo account per role, skipping existing ones.
func (s *authService) SeedDemoUsers(ctx context.Context, token string) (int, error) {
	if err := s.authorizeSeed(token); err != nil {
		return 0, err
	}

	demo := []struct {
		local, role, name, password string
	}{
		{"clinic", "clinic", "Clinic Staff", "clinic123"},
		{"faculty", "faculty", "Faculty", "faculty123"},
		{"student", "student", "Student", "student123"},
		{"hod", "hod", "HOD", "hod123"},
	}

	created := 0
	for _, d := range demo {
		email := d.local + s.cfg.AllowedEmailDomain
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return created, fmt.Errorf("failed to hash password: %w", err)
		}

		user := models.User{Email: email, Password: string(hash), Role: d.role, Name: d.name, Active: true}
		if err := s.users.Create(ctx, &user); err != nil {
			return created, err
		}
		created++
	}

	s.logger.Info().Int("created", created).Msg("demo accounts seeded")
	return created, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

func (s *authService) ListSignIns(ctx context.Context, limit int) ([]models.SignInLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	return s.signIns.ListRecent(ctx, limit)
}

// RollNames maps the roll number (email local part) of every student account
// to the student's display name.
func (s *authService) RollNames(ctx context.Context) (map[string]string, error) {
	students, err := s.users.ListByRole(ctx, "student")
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(students))
	for _, u := range students {
		local, _, found := strings.Cut(u.Email, "@")
		if found && local != "" {
			result[local] = u.Name
		}
	}
	return result, nil
}

func (s *authService) recordSignIn(ctx context.Context, email, roleTried string, success bool, meta dto.LoginMeta) {
	log := models.SignInLog{
		Email:     email,
		RoleTried: roleTried,
		Success:   success,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.signIns.Create(ctx, &log); err != nil {
		s.logger.Warn().Err(err).Str("email", maskEmailAddress(email)).Msg("failed to record sign-in attempt")
	}
}

func (s *authService) issueToken(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(user.ID), 10),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authService) authorizeSeed(token string) error {
	if !s.cfg.SeedEnabled {
		return ErrSeedDisabled
	}
	expected := strings.TrimSpace(s.cfg.SeedToken)
	if expected == "" || !constantTimeEqual(expected, strings.TrimSpace(token)) {
		return ErrSeedUnauthorized
	}
	return nil
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	mismatch := byte(0)
	for i := 0; i < len(a); i++ {
		mismatch |= a[i] ^ b[i]
	}
	return mismatch == 0
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
