package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.SignInLog{}, &models.Section{}, &models.Portal{},
		&models.Visit{}, &models.Attendance{}, &models.GatePass{}, &models.Letter{},
	))
	return db
}

func TestSectionGetOrCreateIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, "CSE-A")
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	require.Empty(t, first.Rolls)

	second, err := repo.GetOrCreate(ctx, "CSE-A")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "existing section must be returned, not recreated")

	var count int64
	require.NoError(t, db.Model(&models.Section{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSectionSavePersistsRolls(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	section, err := repo.GetOrCreate(ctx, "CSE-B")
	require.NoError(t, err)

	require.True(t, section.AddRoll("24100300"))
	require.NoError(t, repo.Save(ctx, &section))

	reloaded, err := repo.GetByName(ctx, "CSE-B")
	require.NoError(t, err)
	require.Equal(t, []string{"24100300"}, []string(reloaded.Rolls))
}

func TestSectionListSortsByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, "ECE-A")
	require.NoError(t, err)
	_, err = repo.GetOrCreate(ctx, "CSE-A")
	require.NoError(t, err)

	sections, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "CSE-A", sections[0].Name)
	require.Equal(t, "ECE-A", sections[1].Name)
}
