package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/repository"
)

func TestSectionAsMapCachesResult(t *testing.T) {
	db := setupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := NewSectionService(repository.NewSectionRepository(db), client, time.Minute, testLogger())
	ctx := context.Background()

	_, err = svc.Create(ctx, "CSE-A")
	require.NoError(t, err)
	_, err = svc.AddRoll(ctx, "CSE-A", "2410030001")
	require.NoError(t, err)

	sections, err := svc.AsMap(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2410030001"}, sections["CSE-A"])
	require.True(t, mr.Exists("campus:sections:map"))

	// cached copy is served even if the store changes underneath
	require.NoError(t, db.Exec("DELETE FROM sections").Error)
	cached, err := svc.AsMap(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2410030001"}, cached["CSE-A"])
}

func TestSectionMutationInvalidatesCache(t *testing.T) {
	db := setupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := NewSectionService(repository.NewSectionRepository(db), client, time.Minute, testLogger())
	ctx := context.Background()

	_, err = svc.Create(ctx, "ECE-A")
	require.NoError(t, err)

	_, err = svc.AsMap(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("campus:sections:map"))

	_, err = svc.AddRoll(ctx, "ECE-A", "2410030003")
	require.NoError(t, err)
	require.False(t, mr.Exists("campus:sections:map"))

	refreshed, err := svc.AsMap(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2410030003"}, refreshed["ECE-A"])
}

func TestSectionWorksWithoutCache(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSectionService(repository.NewSectionRepository(db), nil, time.Minute, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, "MECH-A")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "")
	require.ErrorIs(t, err, ErrSectionNameRequired)

	sections, err := svc.AsMap(ctx)
	require.NoError(t, err)
	require.Contains(t, sections, "MECH-A")
}
