package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

func TestGatePassUpdateWithVersionDetectsStaleWrite(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGatePassRepository(db)
	ctx := context.Background()

	pass := models.GatePass{PassNumber: "CAMPUS-0001", Status: models.GatePassStatusPending, IssuedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, &pass))

	first, err := repo.GetByID(ctx, pass.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, pass.ID)
	require.NoError(t, err)

	first.Status = models.GatePassStatusApproved
	require.NoError(t, repo.UpdateWithVersion(ctx, &first))
	require.Equal(t, int64(1), first.Version)

	second.Status = models.GatePassStatusDeclined
	err = repo.UpdateWithVersion(ctx, &second)
	require.ErrorIs(t, err, ErrVersionConflict)

	reloaded, err := repo.GetByID(ctx, pass.ID)
	require.NoError(t, err)
	require.Equal(t, models.GatePassStatusApproved, reloaded.Status)
}

func TestGatePassListExpiredCandidates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGatePassRepository(db)
	ctx := context.Background()

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	expired := models.GatePass{PassNumber: "CAMPUS-0002", Status: models.GatePassStatusApproved, ExpiresAt: &past}
	alreadyMarked := models.GatePass{PassNumber: "CAMPUS-0003", Status: models.GatePassStatusExpired, ExpiresAt: &past}
	notYet := models.GatePass{PassNumber: "CAMPUS-0004", Status: models.GatePassStatusApproved, ExpiresAt: &future}
	noExpiry := models.GatePass{PassNumber: "CAMPUS-0005", Status: models.GatePassStatusApproved}
	for _, gp := range []*models.GatePass{&expired, &alreadyMarked, &notYet, &noExpiry} {
		require.NoError(t, repo.Create(ctx, gp))
	}

	candidates, err := repo.ListExpiredCandidates(ctx, now, 0, 100)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, expired.ID, candidates[0].ID)

	// Cursor past the only candidate yields nothing.
	candidates, err = repo.ListExpiredCandidates(ctx, now, expired.ID, 100)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestGatePassCleanupHelpers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGatePassRepository(db)
	ctx := context.Background()

	legacy := models.GatePass{PassNumber: "GP-0001", Status: models.GatePassStatusUsed}
	current := models.GatePass{PassNumber: "CAMPUS-0006", Status: models.GatePassStatusPending}
	require.NoError(t, repo.Create(ctx, &legacy))
	require.NoError(t, repo.Create(ctx, &current))

	removed, err := repo.DeleteByPassNumberPrefix(ctx, "GP-")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	remaining, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "CAMPUS-0006", remaining[0].PassNumber)

	total, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)

	remaining, err = repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestGatePassListByUserMatchesEmailToo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGatePassRepository(db)
	ctx := context.Background()

	byID := models.GatePass{PassNumber: "CAMPUS-0007", UserID: "42", Status: models.GatePassStatusPending}
	byEmail := models.GatePass{PassNumber: "CAMPUS-0008", StudentEmail: "2410030001@klh.edu.in", Status: models.GatePassStatusPending}
	require.NoError(t, repo.Create(ctx, &byID))
	require.NoError(t, repo.Create(ctx, &byEmail))

	passes, err := repo.ListByUser(ctx, "42")
	require.NoError(t, err)
	require.Len(t, passes, 1)

	passes, err = repo.ListByUser(ctx, "2410030001@klh.edu.in")
	require.NoError(t, err)
	require.Len(t, passes, 1)
	require.Equal(t, byEmail.ID, passes[0].ID)
}
