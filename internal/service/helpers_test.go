package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-admin-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

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

// recordingPublisher captures lifecycle events for assertions.
type recordingPublisher struct {
	events []StatusChangeEvent
}

func (r *recordingPublisher) PublishStatusChange(_ context.Context, event StatusChangeEvent) {
	r.events = append(r.events, event)
}
