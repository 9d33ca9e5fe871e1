package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

func newVisitFixture(t *testing.T) VisitService {
	t.Helper()
	db := setupTestDB(t)
	return NewVisitService(repository.NewVisitRepository(db), validator.New(), testLogger())
}

func TestVisitCreateAndMarkExit(t *testing.T) {
	svc := newVisitFixture(t)
	ctx := context.Background()

	visit, err := svc.Create(ctx, dto.VisitCreateRequest{StudentID: "2410030001", Name: "Asha", Symptoms: "fever"})
	require.NoError(t, err)
	require.True(t, visit.IsOpen())
	require.Equal(t, "Unknown", visit.LoggedBy)

	closed, err := svc.MarkExit(ctx, "2410030001")
	require.NoError(t, err)
	require.False(t, closed.IsOpen())
	require.NotNil(t, closed.ExitTime)
	require.WithinDuration(t, visit.EntryTime, closed.EntryTime, time.Second)

	_, err = svc.MarkExit(ctx, "2410030001")
	require.ErrorIs(t, err, ErrNoActiveVisit)
}

func TestVisitMarkExitWithoutVisit(t *testing.T) {
	svc := newVisitFixture(t)

	_, err := svc.MarkExit(context.Background(), "2410030099")
	require.ErrorIs(t, err, ErrNoActiveVisit)
}

func TestVisitRecentClampsLimit(t *testing.T) {
	svc := newVisitFixture(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := svc.Create(ctx, dto.VisitCreateRequest{
			StudentID: fmt.Sprintf("24100300%02d", i),
			Name:      fmt.Sprintf("Student %d", i),
		})
		require.NoError(t, err)
	}

	visits, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, visits, 5, "zero limit falls back to the default")

	visits, err = svc.Recent(ctx, -1)
	require.NoError(t, err)
	require.Len(t, visits, 5, "negative limit falls back to the default")

	visits, err = svc.Recent(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, visits, 8, "oversized limit is capped, not an error")
}

func TestVisitActiveIDsAreDeduplicated(t *testing.T) {
	svc := newVisitFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.VisitCreateRequest{StudentID: "2410030002", Name: "Ravi"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.VisitCreateRequest{StudentID: "2410030002", Name: "Ravi"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, dto.VisitCreateRequest{StudentID: "2410030001", Name: "Asha"})
	require.NoError(t, err)

	ids, err := svc.ActiveIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2410030001", "2410030002"}, ids)

	active, err := svc.ActiveVisits(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
}
