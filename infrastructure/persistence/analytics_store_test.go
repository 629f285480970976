package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/persistence"
	"github.com/claimsdesk/fnol/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsStore(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	items := persistence.NewWorkItemStore(db)
	attachments := persistence.NewAttachmentStore(db)
	analytics := persistence.NewAnalyticsStore(db)

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	seed := []struct {
		status    workitem.Status
		completed time.Time
	}{
		{workitem.StatusPending, time.Time{}},
		{workitem.StatusPending, time.Time{}},
		{workitem.StatusClosed, created.Add(2 * time.Hour)},
		{workitem.StatusApproved, created.Add(4 * time.Hour)},
	}
	var ids []int64
	for _, s := range seed {
		item := workitem.ReconstructWorkItem(0, "", "s", "b", workitem.Fields{}, s.status, "", created, created, s.completed)
		stored, err := items.Create(ctx, item)
		require.NoError(t, err)
		ids = append(ids, stored.ID())
	}

	for i, dt := range []workitem.DocType{workitem.DocTypeInvoice, workitem.DocTypeInvoice, ""} {
		a, err := workitem.NewAttachment(ids[0], string(rune('a'+i))+".pdf", "url", dt, "application/pdf", 1, workitem.UploaderIntake)
		require.NoError(t, err)
		_, _, err = attachments.Create(ctx, a)
		require.NoError(t, err)
	}

	statuses, err := analytics.StatusCounts(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, workitem.StatusCount{Status: workitem.StatusPending, Count: 2}, statuses[0])

	docTypes, err := analytics.DocTypeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []workitem.DocTypeCount{
		{DocType: "Invoice", Count: 2},
		{DocType: workitem.DocTypeUnclassified, Count: 1},
	}, docTypes)

	processing, err := analytics.ProcessingTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), processing.Completed)
	assert.Equal(t, 3*time.Hour, processing.Average)

	since, err := analytics.CreatedSince(ctx, created.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, since, 4)

	none, err := analytics.CreatedSince(ctx, created.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAnalyticsStore_ProcessingTimeWithoutCompletedItems(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	items := persistence.NewWorkItemStore(db)
	analytics := persistence.NewAnalyticsStore(db)

	item, err := workitem.NewWorkItem("", "s", "b", workitem.Fields{})
	require.NoError(t, err)
	_, err = items.Create(ctx, item)
	require.NoError(t, err)

	processing, err := analytics.ProcessingTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, workitem.ProcessingTime{}, processing)
}
