package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

func newPortalFixture(t *testing.T) PortalService {
	t.Helper()
	db := setupTestDB(t)
	return NewPortalService(repository.NewPortalRepository(db), validator.New(), testLogger())
}

func TestPortalCreateAndLookup(t *testing.T) {
	svc := newPortalFixture(t)
	ctx := context.Background()

	portal, err := svc.Create(ctx, dto.PortalCreateRequest{
		Name:       "Exam Cell",
		PortalType: "exams",
		SectionIDs: []string{"CSE-A"},
	})
	require.NoError(t, err)
	require.True(t, portal.Active)
	require.Equal(t, int64(0), portal.Version)

	byName, err := svc.GetByName(ctx, "Exam Cell")
	require.NoError(t, err)
	require.Equal(t, portal.ID, byName.ID)

	byType, err := svc.GetByType(ctx, "exams")
	require.NoError(t, err)
	require.Equal(t, portal.ID, byType.ID)

	_, err = svc.GetByName(ctx, "missing")
	require.ErrorIs(t, err, ErrPortalNotFound)
}

func TestPortalMembershipMutations(t *testing.T) {
	svc := newPortalFixture(t)
	ctx := context.Background()

	portal, err := svc.Create(ctx, dto.PortalCreateRequest{Name: "Library", PortalType: "library"})
	require.NoError(t, err)

	withSection, err := svc.AddSection(ctx, portal.ID, "CSE-B")
	require.NoError(t, err)
	require.Contains(t, []string(withSection.SectionIDs), "CSE-B")
	require.Equal(t, int64(1), withSection.Version)

	// adding the same section twice keeps a single entry
	again, err := svc.AddSection(ctx, portal.ID, "CSE-B")
	require.NoError(t, err)
	require.Len(t, []string(again.SectionIDs), 1)

	withUser, err := svc.AddUser(ctx, portal.ID, "user-7")
	require.NoError(t, err)
	require.Contains(t, []string(withUser.UserIDs), "user-7")

	bySection, err := svc.ListBySection(ctx, "CSE-B")
	require.NoError(t, err)
	require.Len(t, bySection, 1)

	byUser, err := svc.ListByUser(ctx, "user-7")
	require.NoError(t, err)
	require.Len(t, byUser, 1)

	removed, err := svc.RemoveSection(ctx, portal.ID, "CSE-B")
	require.NoError(t, err)
	require.Empty(t, []string(removed.SectionIDs))
}

func TestPortalToggleAndDelete(t *testing.T) {
	svc := newPortalFixture(t)
	ctx := context.Background()

	portal, err := svc.Create(ctx, dto.PortalCreateRequest{Name: "Hostel", PortalType: "hostel"})
	require.NoError(t, err)

	toggled, err := svc.ToggleStatus(ctx, portal.ID)
	require.NoError(t, err)
	require.False(t, toggled.Active)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Empty(t, active)

	require.NoError(t, svc.Delete(ctx, portal.ID))
	require.ErrorIs(t, svc.Delete(ctx, portal.ID), ErrPortalNotFound)
}

func TestPortalUpdateFields(t *testing.T) {
	svc := newPortalFixture(t)
	ctx := context.Background()

	portal, err := svc.Create(ctx, dto.PortalCreateRequest{Name: "Sports", PortalType: "sports"})
	require.NoError(t, err)

	desc := "Grounds and equipment"
	updated, err := svc.Update(ctx, portal.ID, dto.PortalUpdateRequest{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, desc, updated.Description)
	require.Equal(t, "Sports", updated.Name, "unset fields are left untouched")
}
