package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
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

// gatePassServiceStub overrides only the methods a test exercises.
type gatePassServiceStub struct {
	service.GatePassService
	approveFn func(ctx context.Context, id uint, hodUserID string) (models.GatePass, error)
	createFn  func(ctx context.Context, req dto.GatePassCreateRequest) (models.GatePass, error)
	expireFn  func(ctx context.Context) (dto.SweepResult, error)
	getFn     func(ctx context.Context, id uint) (models.GatePass, error)
}

func (s *gatePassServiceStub) Approve(ctx context.Context, id uint, hodUserID string) (models.GatePass, error) {
	return s.approveFn(ctx, id, hodUserID)
}

func (s *gatePassServiceStub) Create(ctx context.Context, req dto.GatePassCreateRequest) (models.GatePass, error) {
	return s.createFn(ctx, req)
}

func (s *gatePassServiceStub) ExpireOld(ctx context.Context) (dto.SweepResult, error) {
	return s.expireFn(ctx)
}

func (s *gatePassServiceStub) Get(ctx context.Context, id uint) (models.GatePass, error) {
	return s.getFn(ctx, id)
}

func newGatePassApp(svc service.GatePassService) *fiber.App {
	app := fiber.New()
	handler.NewGatePassHandler(svc, zerolog.Nop()).Register(app.Group("/api/gatepasses"))
	return app
}

func TestGatePassHandlerCreate(t *testing.T) {
	svc := &gatePassServiceStub{
		createFn: func(_ context.Context, req dto.GatePassCreateRequest) (models.GatePass, error) {
			return models.GatePass{ID: 1, PassNumber: "CP-TEST", Status: models.GatePassStatusPending, StudentRoll: req.StudentRoll}, nil
		},
	}
	app := newGatePassApp(svc)

	body, err := json.Marshal(dto.GatePassCreateRequest{StudentRoll: "2410030001", Reason: "medical"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/gatepasses", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool            `json:"success"`
		Data    models.GatePass `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, "CP-TEST", response.Data.PassNumber)
}

func TestGatePassHandlerApproveConflict(t *testing.T) {
	svc := &gatePassServiceStub{
		approveFn: func(_ context.Context, _ uint, _ string) (models.GatePass, error) {
			return models.GatePass{}, fmt.Errorf("%w: declined -> approved", service.ErrInvalidTransition)
		},
	}
	app := newGatePassApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/gatepasses/7/approve", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGatePassHandlerApproveForwardsActor(t *testing.T) {
	var gotHOD string
	svc := &gatePassServiceStub{
		approveFn: func(_ context.Context, id uint, hodUserID string) (models.GatePass, error) {
			gotHOD = hodUserID
			return models.GatePass{ID: id, Status: models.GatePassStatusApproved}, nil
		},
	}
	app := newGatePassApp(svc)

	body, err := json.Marshal(dto.GatePassApproveRequest{HODUserID: "hod-9"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/gatepasses/7/approve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "hod-9", gotHOD)
}

func TestGatePassHandlerGetNotFound(t *testing.T) {
	svc := &gatePassServiceStub{
		getFn: func(_ context.Context, _ uint) (models.GatePass, error) {
			return models.GatePass{}, service.ErrGatePassNotFound
		},
	}
	app := newGatePassApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/gatepasses/42", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGatePassHandlerInvalidID(t *testing.T) {
	app := newGatePassApp(&gatePassServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/api/gatepasses/not-a-number", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGatePassHandlerExpireSweep(t *testing.T) {
	svc := &gatePassServiceStub{
		expireFn: func(_ context.Context) (dto.SweepResult, error) {
			return dto.SweepResult{Expired: 3, Skipped: 1}, nil
		},
	}
	app := newGatePassApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/gatepasses/maintenance/expire", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool            `json:"success"`
		Data    dto.SweepResult `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 3, response.Data.Expired)
	require.Equal(t, 1, response.Data.Skipped)
}
