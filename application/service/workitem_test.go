package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/persistence"
	"github.com/claimsdesk/fnol/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workItemFixture struct {
	service *WorkItem
	items   persistence.WorkItemStore
	attach  persistence.AttachmentStore
}

func newWorkItemFixture(t *testing.T) *workItemFixture {
	t.Helper()
	db := testdb.New(t)
	items := persistence.NewWorkItemStore(db)
	attach := persistence.NewAttachmentStore(db)
	return &workItemFixture{
		service: NewWorkItem(items, attach, nil),
		items:   items,
		attach:  attach,
	}
}

func (f *workItemFixture) create(t *testing.T, messageID string, filenames ...string) workitem.WorkItem {
	t.Helper()
	ctx := context.Background()
	item, err := workitem.NewWorkItem(messageID, "Car accident", "details", workitem.NewFields(nil))
	require.NoError(t, err)
	item, err = f.items.Create(ctx, item)
	require.NoError(t, err)
	for _, name := range filenames {
		a, err := workitem.NewAttachment(item.ID(), name, "mem://"+name, workitem.DocTypeOther, "application/pdf", 3, workitem.UploaderIntake)
		require.NoError(t, err)
		_, _, err = f.attach.Create(ctx, a)
		require.NoError(t, err)
	}
	return item
}

func ptr[T any](v T) *T { return &v }

func TestWorkItem_ListNewestFirstWithAttachments(t *testing.T) {
	f := newWorkItemFixture(t)
	first := f.create(t, "M1", "a.pdf", "b.pdf")
	second := f.create(t, "M2")

	records, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID(), records[0].WorkItem().ID())
	assert.Empty(t, records[0].Attachments())
	assert.Equal(t, first.ID(), records[1].WorkItem().ID())
	require.Len(t, records[1].Attachments(), 2)
	assert.Equal(t, "a.pdf", records[1].Attachments()[0].Filename())
}

func TestWorkItem_ListFiltersByStatus(t *testing.T) {
	f := newWorkItemFixture(t)
	ctx := context.Background()
	item := f.create(t, "M1")
	f.create(t, "M2")
	_, err := f.service.Update(ctx, item.ID(), UpdateParams{Status: ptr("approved")})
	require.NoError(t, err)

	records, err := f.service.List(ctx, workitem.WithStatus(workitem.StatusApproved))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, item.ID(), records[0].WorkItem().ID())
}

func TestWorkItem_GetMissing(t *testing.T) {
	f := newWorkItemFixture(t)

	_, err := f.service.Get(context.Background(), 99)
	assert.ErrorIs(t, err, workitem.ErrNotFound)
}

func TestWorkItem_UpdateStatusStampsCompletionOnce(t *testing.T) {
	f := newWorkItemFixture(t)
	ctx := context.Background()
	item := f.create(t, "M1")

	approved, err := f.service.Update(ctx, item.ID(), UpdateParams{Status: ptr("approved")})
	require.NoError(t, err)
	assert.Equal(t, workitem.StatusApproved, approved.WorkItem().Status())
	completedAt := approved.WorkItem().CompletedAt()
	require.False(t, completedAt.IsZero())

	time.Sleep(5 * time.Millisecond)
	closed, err := f.service.Update(ctx, item.ID(), UpdateParams{Status: ptr("closed")})
	require.NoError(t, err)
	assert.Equal(t, workitem.StatusClosed, closed.WorkItem().Status())
	assert.WithinDuration(t, completedAt, closed.WorkItem().CompletedAt(), time.Millisecond)
	assert.True(t, closed.WorkItem().UpdatedAt().After(approved.WorkItem().UpdatedAt()))
}

func TestWorkItem_UpdateKeepsUnknownStatusVerbatim(t *testing.T) {
	f := newWorkItemFixture(t)
	item := f.create(t, "M1")

	updated, err := f.service.Update(context.Background(), item.ID(), UpdateParams{Status: ptr("escalated")})
	require.NoError(t, err)
	assert.Equal(t, workitem.Status("escalated"), updated.WorkItem().Status())
	assert.True(t, updated.WorkItem().CompletedAt().IsZero())
}

func TestWorkItem_UpdateFieldsKeepsTag(t *testing.T) {
	f := newWorkItemFixture(t)
	ctx := context.Background()
	item, err := workitem.NewWorkItem("M1", "s", "b", workitem.NewFields(map[string]any{
		"claim_type": map[string]any{"category": "Auto"},
	}))
	require.NoError(t, err)
	item, err = f.items.Create(ctx, item)
	require.NoError(t, err)

	replaced := workitem.NewFields(map[string]any{"claim_type": map[string]any{"category": "Property"}})
	updated, err := f.service.Update(ctx, item.ID(), UpdateParams{Fields: &replaced})
	require.NoError(t, err)

	assert.Equal(t, "Property", updated.WorkItem().Fields().ClaimCategory())
	assert.Equal(t, "Auto", updated.WorkItem().Tag())
	assert.Equal(t, workitem.StatusPending, updated.WorkItem().Status())
}

func TestWorkItem_UpdateToEmptyFieldsStoresObject(t *testing.T) {
	f := newWorkItemFixture(t)
	ctx := context.Background()
	item, err := workitem.NewWorkItem("M1", "s", "b", workitem.NewFields(map[string]any{"summary": "old"}))
	require.NoError(t, err)
	item, err = f.items.Create(ctx, item)
	require.NoError(t, err)

	cleared := workitem.NewFields(map[string]any{})
	_, err = f.service.Update(ctx, item.ID(), UpdateParams{Fields: &cleared})
	require.NoError(t, err)

	got, err := f.service.Get(ctx, item.ID())
	require.NoError(t, err)
	assert.False(t, got.WorkItem().Fields().IsNull())
	assert.True(t, got.WorkItem().Fields().IsEmpty())
	data, err := json.Marshal(got.WorkItem().Fields())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestWorkItem_UpdateRejectsEmptyStatus(t *testing.T) {
	f := newWorkItemFixture(t)
	item := f.create(t, "M1")

	_, err := f.service.Update(context.Background(), item.ID(), UpdateParams{Status: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestWorkItem_UpdateMissing(t *testing.T) {
	f := newWorkItemFixture(t)

	_, err := f.service.Update(context.Background(), 7, UpdateParams{Status: ptr("closed")})
	assert.ErrorIs(t, err, workitem.ErrNotFound)
}

func TestWorkItem_DeleteRemovesAttachments(t *testing.T) {
	f := newWorkItemFixture(t)
	ctx := context.Background()
	item := f.create(t, "M1", "a.pdf")

	require.NoError(t, f.service.Delete(ctx, item.ID()))

	_, err := f.service.Get(ctx, item.ID())
	assert.ErrorIs(t, err, workitem.ErrNotFound)
	remaining, err := f.attach.Count(ctx, workitem.WithWorkItemID(item.ID()))
	require.NoError(t, err)
	assert.Zero(t, remaining)

	assert.ErrorIs(t, f.service.Delete(ctx, item.ID()), workitem.ErrNotFound)
}
