package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-admin-api/internal/dto"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
)

type uploaderStub struct {
	lastName string
	url      string
	err      error
}

func (u *uploaderStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	u.lastName = name
	if u.err != nil {
		return "", u.err
	}
	return u.url, nil
}

func newLetterFixture(t *testing.T, uploader FileUploader) (LetterService, *recordingPublisher) {
	t.Helper()
	db := setupTestDB(t)
	events := &recordingPublisher{}
	svc := NewLetterService(repository.NewLetterRepository(db), uploader, events, validator.New(), testLogger())
	return svc, events
}

func TestLetterCreateSanitizesContent(t *testing.T) {
	svc, _ := newLetterFixture(t, nil)
	ctx := context.Background()

	letter, err := svc.Create(ctx, dto.LetterCreateRequest{
		LetterType: "bonafide",
		Title:      "Bonafide Certificate",
		Content:    "<script>alert('x')</script><p>To whom it may concern</p>",
	})
	require.NoError(t, err)
	require.Equal(t, models.LetterStatusDraft, letter.Status)
	require.Equal(t, "<p>To whom it may concern</p>", letter.Content)
	require.True(t, len(letter.LetterNumber) > 3 && letter.LetterNumber[:3] == "LT-")
}

func TestLetterCreateRequiresTypeAndTitle(t *testing.T) {
	svc, _ := newLetterFixture(t, nil)

	_, err := svc.Create(context.Background(), dto.LetterCreateRequest{Content: "hello"})
	require.Error(t, err)
}

func TestLetterIssueAndAcknowledge(t *testing.T) {
	svc, events := newLetterFixture(t, nil)
	ctx := context.Background()

	letter, err := svc.Create(ctx, dto.LetterCreateRequest{LetterType: "noc", Title: "NOC"})
	require.NoError(t, err)

	issued, err := svc.Issue(ctx, letter.ID, "registrar-1")
	require.NoError(t, err)
	require.Equal(t, models.LetterStatusIssued, issued.Status)
	require.Equal(t, "registrar-1", issued.ApproverUserID)
	require.False(t, issued.IssuedAt.IsZero())

	acked, err := svc.Acknowledge(ctx, letter.ID)
	require.NoError(t, err)
	require.Equal(t, models.LetterStatusAcknowledged, acked.Status)
	require.NotNil(t, acked.AcknowledgedAt)

	// draft cannot be acknowledged without issuing first
	other, err := svc.Create(ctx, dto.LetterCreateRequest{LetterType: "noc", Title: "Second"})
	require.NoError(t, err)
	_, err = svc.Acknowledge(ctx, other.ID)
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.Len(t, events.events, 2)
	require.Equal(t, "letter", events.events[0].Kind)
}

func TestLetterAttachChecksContentType(t *testing.T) {
	uploader := &uploaderStub{url: "https://cdn.example.com/letters/noc.pdf"}
	svc, _ := newLetterFixture(t, uploader)
	ctx := context.Background()

	letter, err := svc.Create(ctx, dto.LetterCreateRequest{LetterType: "noc", Title: "NOC"})
	require.NoError(t, err)

	pdf := []byte("%PDF-1.4\n%stub content\n%%EOF")
	updated, err := svc.Attach(ctx, letter.ID, "noc.pdf", pdf)
	require.NoError(t, err)
	require.Equal(t, uploader.url, updated.AttachmentURL)
	require.Equal(t, "noc.pdf", uploader.lastName)

	_, err = svc.Attach(ctx, letter.ID, "notes.txt", []byte("plain text payload"))
	require.ErrorIs(t, err, ErrUnsupportedAttachment)
}

func TestLetterAttachWithoutUploader(t *testing.T) {
	svc, _ := newLetterFixture(t, nil)
	ctx := context.Background()

	letter, err := svc.Create(ctx, dto.LetterCreateRequest{LetterType: "noc", Title: "NOC"})
	require.NoError(t, err)

	_, err = svc.Attach(ctx, letter.ID, "noc.pdf", []byte("%PDF-1.4"))
	require.ErrorIs(t, err, ErrUploaderUnavailable)
}

func TestLetterExpireOldSweep(t *testing.T) {
	svc, _ := newLetterFixture(t, nil)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)

	stale, err := svc.Create(ctx, dto.LetterCreateRequest{LetterType: "noc", Title: "Stale", ExpiresAt: &past})
	require.NoError(t, err)

	fresh, err := svc.Create(ctx, dto.LetterCreateRequest{LetterType: "noc", Title: "Fresh"})
	require.NoError(t, err)

	result, err := svc.ExpireOld(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Expired)
	require.Equal(t, 0, result.Skipped)

	expired, err := svc.Get(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, models.LetterStatusExpired, expired.Status)

	untouched, err := svc.Get(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, models.LetterStatusDraft, untouched.Status)
}
