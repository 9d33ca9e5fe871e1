package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

func newAuthFixture(t *testing.T, cfg AuthConfig) AuthService {
	t.Helper()
	db := setupTestDB(t)
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "test-secret"
	}
	return NewAuthService(repository.NewUserRepository(db), repository.NewSignInLogRepository(db), validator.New(), cfg, testLogger())
}

func TestSignupRejectsForeignDomain(t *testing.T) {
	svc := newAuthFixture(t, AuthConfig{})

	_, err := svc.Signup(context.Background(), dto.SignupRequest{
		Name:     "Outsider",
		Email:    "someone@gmail.com",
		Password: "secret123",
		Role:     "student",
	})
	require.ErrorIs(t, err, ErrEmailDomainNotAllowed)
}

func TestSignupThenLogin(t *testing.T) {
	svc := newAuthFixture(t, AuthConfig{})
	ctx := context.Background()

	user, err := svc.Signup(ctx, dto.SignupRequest{
		Name:     "Asha",
		Email:    "Asha@klh.edu.in",
		Password: "secret123",
		Role:     "student",
	})
	require.NoError(t, err)
	require.Equal(t, "asha@klh.edu.in", user.Email)
	require.Empty(t, user.Password, "response must not leak the hash")

	_, err = svc.Signup(ctx, dto.SignupRequest{
		Name:     "Asha Again",
		Email:    "asha@klh.edu.in",
		Password: "secret123",
		Role:     "student",
	})
	require.ErrorIs(t, err, ErrAccountExists)

	result, err := svc.Login(ctx, dto.LoginRequest{
		Email:    "asha@klh.edu.in",
		Password: "secret123",
		Role:     "Student",
	}, dto.LoginMeta{IP: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)

	token, err := jwt.Parse(result.AccessToken, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "asha@klh.edu.in", claims["email"])
	require.Equal(t, "student", claims["role"])
}

func TestLoginFailuresAreUniformAndLogged(t *testing.T) {
	svc := newAuthFixture(t, AuthConfig{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, dto.SignupRequest{
		Name:     "Ravi",
		Email:    "ravi@klh.edu.in",
		Password: "secret123",
		Role:     "faculty",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ravi@klh.edu.in", Password: "wrong-pass", Role: "faculty"}, dto.LoginMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ravi@klh.edu.in", Password: "secret123", Role: "student"}, dto.LoginMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@klh.edu.in", Password: "secret123", Role: "student"}, dto.LoginMeta{})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	logs, err := svc.ListSignIns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	for _, entry := range logs {
		require.False(t, entry.Success)
	}
}

func TestResetPasswordUnknownEmailIsNotAnError(t *testing.T) {
	svc := newAuthFixture(t, AuthConfig{})
	ctx := context.Background()

	changed, err := svc.ResetPassword(ctx, dto.ResetPasswordRequest{Email: "nobody@klh.edu.in", NewPassword: "newpass1"})
	require.NoError(t, err)
	require.False(t, changed)

	_, err = svc.Signup(ctx, dto.SignupRequest{Name: "Meena", Email: "meena@klh.edu.in", Password: "secret123", Role: "student"})
	require.NoError(t, err)

	changed, err = svc.ResetPassword(ctx, dto.ResetPasswordRequest{Email: "meena@klh.edu.in", NewPassword: "newpass1"})
	require.NoError(t, err)
	require.True(t, changed)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "meena@klh.edu.in", Password: "newpass1", Role: "student"}, dto.LoginMeta{})
	require.NoError(t, err)
}

func TestSeedStudentsIsIdempotentAndGuarded(t *testing.T) {
	svc := newAuthFixture(t, AuthConfig{SeedEnabled: true, SeedToken: "seed-token"})
	ctx := context.Background()

	_, err := svc.SeedStudents(ctx, "wrong")
	require.ErrorIs(t, err, ErrSeedUnauthorized)

	created, err := svc.SeedStudents(ctx, "seed-token")
	require.NoError(t, err)
	require.Equal(t, 10, created)

	again, err := svc.SeedStudents(ctx, "seed-token")
	require.NoError(t, err)
	require.Equal(t, 0, again)

	// seeded students log in with their roll number
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "2410030001@klh.edu.in", Password: "2410030001", Role: "student"}, dto.LoginMeta{})
	require.NoError(t, err)

	rolls, err := svc.RollNames(ctx)
	require.NoError(t, err)
	require.Contains(t, rolls, "2410030001")
}

func TestSeedDisabled(t *testing.T) {
	svc := newAuthFixture(t, AuthConfig{})

	_, err := svc.SeedStudents(context.Background(), "anything")
	require.ErrorIs(t, err, ErrSeedDisabled)
	_, err = svc.SeedDemoUsers(context.Background(), "anything")
	require.ErrorIs(t, err, ErrSeedDisabled)
}
