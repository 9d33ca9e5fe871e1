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

type visitServiceStub struct {
	service.VisitService
	createFn   func(ctx context.Context, req dto.VisitCreateRequest) (models.Visit, error)
	markExitFn func(ctx context.Context, studentID string) (models.Visit, error)
	recentFn   func(ctx context.Context, limit int) ([]models.Visit, error)
}

func (s *visitServiceStub) Create(ctx context.Context, req dto.VisitCreateRequest) (models.Visit, error) {
	return s.createFn(ctx, req)
}

func (s *visitServiceStub) MarkExit(ctx context.Context, studentID string) (models.Visit, error) {
	return s.markExitFn(ctx, studentID)
}

func (s *visitServiceStub) Recent(ctx context.Context, limit int) ([]models.Visit, error) {
	return s.recentFn(ctx, limit)
}

func newVisitApp(svc service.VisitService) *fiber.App {
	app := fiber.New()
	handler.NewVisitHandler(svc, zerolog.Nop()).Register(app.Group("/api/visits"))
	return app
}

func TestVisitHandlerCreate(t *testing.T) {
	svc := &visitServiceStub{
		createFn: func(_ context.Context, req dto.VisitCreateRequest) (models.Visit, error) {
			return models.Visit{ID: 1, StudentID: req.StudentID, Name: req.Name}, nil
		},
	}
	app := newVisitApp(svc)

	body, err := json.Marshal(dto.VisitCreateRequest{StudentID: "2410030001", Name: "Asha"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/visits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestVisitHandlerMarkExitNotFound(t *testing.T) {
	svc := &visitServiceStub{
		markExitFn: func(_ context.Context, _ string) (models.Visit, error) {
			return models.Visit{}, service.ErrNoActiveVisit
		},
	}
	app := newVisitApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/visits/exit/2410030001", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestVisitHandlerRecentForwardsLimit(t *testing.T) {
	var gotLimit int
	svc := &visitServiceStub{
		recentFn: func(_ context.Context, limit int) ([]models.Visit, error) {
			gotLimit = limit
			return []models.Visit{}, nil
		},
	}
	app := newVisitApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/visits/recent?limit=25", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, 25, gotLimit)

	req = httptest.NewRequest(http.MethodGet, "/api/visits/recent?limit=abc", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
