package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/handler"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/service"
)

type authServiceStub struct {
	service.AuthService
	signupFn func(ctx context.Context, req dto.SignupRequest) (models.User, error)
	loginFn  func(ctx context.Context, req dto.LoginRequest, meta dto.LoginMeta) (dto.LoginResult, error)
	seedFn   func(ctx context.Context, token string) (int, error)
}

func (s *authServiceStub) Signup(ctx context.Context, req dto.SignupRequest) (models.User, error) {
	return s.signupFn(ctx, req)
}

func (s *authServiceStub) Login(ctx context.Context, req dto.LoginRequest, meta dto.LoginMeta) (dto.LoginResult, error) {
	return s.loginFn(ctx, req, meta)
}

func (s *authServiceStub) SeedStudents(ctx context.Context, token string) (int, error) {
	return s.seedFn(ctx, token)
}

func newAuthApp(svc service.AuthService) *fiber.App {
	app := fiber.New()
	h := handler.NewAuthHandler(svc, zerolog.Nop())
	h.Register(app.Group("/api/auth"))
	h.RegisterSeed(app.Group("/api/seed"))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthHandlerSignupConflict(t *testing.T) {
	svc := &authServiceStub{
		signupFn: func(_ context.Context, _ dto.SignupRequest) (models.User, error) {
			return models.User{}, service.ErrAccountExists
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/auth/signup", dto.SignupRequest{
		Name: "Asha", Email: "asha@klh.edu.in", Password: "secret123", Role: "student",
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestAuthHandlerSignupDomainRejected(t *testing.T) {
	svc := &authServiceStub{
		signupFn: func(_ context.Context, _ dto.SignupRequest) (models.User, error) {
			return models.User{}, service.ErrEmailDomainNotAllowed
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/auth/signup", dto.SignupRequest{
		Name: "Out", Email: "out@gmail.com", Password: "secret123", Role: "student",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandlerLogin(t *testing.T) {
	var gotMeta dto.LoginMeta
	svc := &authServiceStub{
		loginFn: func(_ context.Context, req dto.LoginRequest, meta dto.LoginMeta) (dto.LoginResult, error) {
			gotMeta = meta
			if req.Password != "secret123" {
				return dto.LoginResult{}, service.ErrInvalidCredentials
			}
			return dto.LoginResult{
				User:        models.User{ID: 1, Email: req.Email, Role: req.Role},
				AccessToken: "token-1",
			}, nil
		},
	}
	app := newAuthApp(svc)

	resp := postJSON(t, app, "/api/auth/login", dto.LoginRequest{
		Email: "asha@klh.edu.in", Password: "secret123", Role: "student",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotEmpty(t, gotMeta.IP)

	var response struct {
		Success bool            `json:"success"`
		Data    dto.LoginResult `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "token-1", response.Data.AccessToken)

	resp = postJSON(t, app, "/api/auth/login", dto.LoginRequest{
		Email: "asha@klh.edu.in", Password: "wrong", Role: "student",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandlerSeedGuard(t *testing.T) {
	svc := &authServiceStub{
		seedFn: func(_ context.Context, token string) (int, error) {
			if token != "seed-token" {
				return 0, service.ErrSeedUnauthorized
			}
			return 10, nil
		},
	}
	app := newAuthApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/seed/students", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/seed/students", nil)
	req.Header.Set("X-Seed-Token", "seed-token")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Data map[string]int `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 10, response.Data["created"])
}
