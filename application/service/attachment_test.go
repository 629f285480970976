package service

import (
	"context"
	"testing"

	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/persistence"
	"github.com/claimsdesk/fnol/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachment_UploadStoresUnclassifiedRow(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	items := persistence.NewWorkItemStore(db)
	attach := persistence.NewAttachmentStore(db)
	objects := &fakeObjects{failFor: map[string]bool{}}
	svc := NewAttachment(items, attach, objects, nil)

	item, err := workitem.NewWorkItem("", "s", "b", workitem.NewFields(nil))
	require.NoError(t, err)
	item, err = items.Create(ctx, item)
	require.NoError(t, err)

	url, err := svc.Upload(ctx, item.ID(), "estimate.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "mem://workitems/"+itoa(item.ID())+"/estimate.pdf", url)

	stored, err := attach.Find(ctx, workitem.WithWorkItemID(item.ID()))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].DocType().IsEmpty())
	assert.Equal(t, workitem.UploaderManual, stored[0].Uploader())
	assert.Equal(t, "application/pdf", stored[0].MimeType())
	assert.Equal(t, int64(4), stored[0].FileSize())

	again, err := svc.Upload(ctx, item.ID(), "estimate.pdf", []byte("%PDF-2"))
	require.NoError(t, err)
	assert.Equal(t, url, again)
	count, err := attach.Count(ctx, workitem.WithWorkItemID(item.ID()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Len(t, objects.uploaded(), 2)
}

func TestAttachment_UploadUnknownWorkItem(t *testing.T) {
	db := testdb.New(t)
	objects := &fakeObjects{failFor: map[string]bool{}}
	svc := NewAttachment(persistence.NewWorkItemStore(db), persistence.NewAttachmentStore(db), objects, nil)

	_, err := svc.Upload(context.Background(), 42, "estimate.pdf", []byte("x"))
	assert.ErrorIs(t, err, workitem.ErrNotFound)
	assert.Empty(t, objects.uploaded())
}

func TestAttachment_UploadRequiresFilename(t *testing.T) {
	db := testdb.New(t)
	svc := NewAttachment(persistence.NewWorkItemStore(db), persistence.NewAttachmentStore(db), &fakeObjects{}, nil)

	_, err := svc.Upload(context.Background(), 1, " ", []byte("x"))
	assert.ErrorIs(t, err, ErrValidation)
}
