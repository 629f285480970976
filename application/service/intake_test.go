package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"

	"github.com/claimsdesk/fnol/domain/query"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/decoder"
	"github.com/claimsdesk/fnol/infrastructure/lock"
	"github.com/claimsdesk/fnol/infrastructure/persistence"
	"github.com/claimsdesk/fnol/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intakeFixture struct {
	intake     *Intake
	items      persistence.WorkItemStore
	attach     persistence.AttachmentStore
	text       *fakeText
	fields     *fakeFields
	classifier *fakeClassifier
	objects    *fakeObjects
}

func newIntakeFixture(t *testing.T) *intakeFixture {
	t.Helper()
	db := testdb.New(t)
	f := &intakeFixture{
		items:  persistence.NewWorkItemStore(db),
		attach: persistence.NewAttachmentStore(db),
		text: &fakeText{texts: map[string]string{
			"police-bytes": "POLICE",
			"claim-bytes":  "Claim form for policy AB-123",
		}},
		fields: &fakeFields{result: workitem.NewFields(map[string]any{
			"summary":    "rear-end collision",
			"claim_type": map[string]any{"category": "Auto"},
		})},
		classifier: &fakeClassifier{},
		objects:    &fakeObjects{failFor: map[string]bool{}},
	}
	f.intake = NewIntake(f.items, f.attach, f.text, f.fields, f.classifier, f.objects,
		WithLocker(lock.NewLocalLocker()),
		WithParallelism(2),
	)
	return f
}

func encoded(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestIntake_SubmitStoresWorkItemAndAttachments(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()

	record, err := f.intake.Submit(ctx, IntakeParams{
		MessageID: "M1",
		Subject:   "Car accident",
		Body:      "I was rear-ended on the motorway",
		Attachments: []decoder.Descriptor{
			{Filename: "report.pdf", Content: encoded("police-bytes")},
			{Filename: "claim.pdf", Content: encoded("claim-bytes")},
			{Filename: "photo.jpg", Content: encoded("jpeg")},
		},
	})
	require.NoError(t, err)

	item := record.WorkItem()
	assert.NotZero(t, item.ID())
	assert.Equal(t, "M1", item.MessageID())
	assert.Equal(t, workitem.StatusPending, item.Status())
	assert.Equal(t, "Auto", item.Tag())
	assert.Equal(t, "POLICE\n\nClaim form for policy AB-123", f.fields.seen)

	attachments := record.Attachments()
	require.Len(t, attachments, 3)
	assert.Equal(t, "report.pdf", attachments[0].Filename())
	assert.Equal(t, workitem.DocTypePoliceReport, attachments[0].DocType())
	assert.Equal(t, "claim.pdf", attachments[1].Filename())
	assert.Equal(t, workitem.DocTypeOther, attachments[1].DocType())
	assert.Equal(t, "photo.jpg", attachments[2].Filename())
	assert.Equal(t, workitem.DocTypePhoto, attachments[2].DocType())
	assert.Equal(t, "image/jpeg", attachments[2].MimeType())
	assert.Equal(t, int64(4), attachments[2].FileSize())
	assert.Equal(t, workitem.UploaderIntake, attachments[0].Uploader())
	assert.Equal(t, "mem://workitems/"+itoa(item.ID())+"/report.pdf", attachments[0].BlobURL())

	assert.ElementsMatch(t, []string{
		"workitems/" + itoa(item.ID()) + "/report.pdf",
		"workitems/" + itoa(item.ID()) + "/claim.pdf",
		"workitems/" + itoa(item.ID()) + "/photo.jpg",
	}, f.objects.uploaded())
}

func TestIntake_DuplicateMessageShortCircuits(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()
	params := IntakeParams{
		MessageID:   "M1",
		Subject:     "Car accident",
		Body:        "details",
		Attachments: []decoder.Descriptor{{Filename: "claim.pdf", Content: encoded("claim-bytes")}},
	}

	first, err := f.intake.Submit(ctx, params)
	require.NoError(t, err)

	second, err := f.intake.Submit(ctx, IntakeParams{
		MessageID: "M1",
		Subject:   "Different subject",
		Body:      "a resent body that must not replace the original",
		Attachments: []decoder.Descriptor{
			{Filename: "claim.pdf", Content: encoded("claim-bytes")},
			{Filename: "report.pdf", Content: encoded("police-bytes")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, first.WorkItem().ID(), second.WorkItem().ID())
	assert.Equal(t, "Car accident", second.WorkItem().Subject())
	assert.Equal(t, "details", second.WorkItem().Body())
	require.Len(t, second.Attachments(), 1)
	assert.Equal(t, "claim.pdf", second.Attachments()[0].Filename())
	assert.Equal(t, int64(1), f.text.calls.Load())
	assert.Equal(t, int64(1), f.fields.calls.Load())
	assert.Equal(t, int64(1), f.classifier.calls.Load())
	assert.Equal(t, []string{"workitems/" + itoa(first.WorkItem().ID()) + "/claim.pdf"}, f.objects.uploaded())

	count, err := f.items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := f.items.FindOne(ctx, query.WithID(first.WorkItem().ID()))
	require.NoError(t, err)
	assert.Equal(t, "details", stored.Body())

	attachments, err := f.attach.Find(ctx, query.WithCondition("workitem_id", first.WorkItem().ID()))
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "claim.pdf", attachments[0].Filename())
}

func TestIntake_ConcurrentSubmissionsCreateOneWorkItem(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()

	const n = 5
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, err := f.intake.Submit(ctx, IntakeParams{
				MessageID: "M-race",
				Subject:   "Flood",
				Body:      "water everywhere",
			})
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = record.WorkItem().ID()
		}()
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
	count, err := f.items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, int64(1), f.fields.calls.Load())
}

func TestIntake_WithoutMessageIDAlwaysCreates(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()
	params := IntakeParams{Subject: "Theft", Body: "bike stolen"}

	first, err := f.intake.Submit(ctx, params)
	require.NoError(t, err)
	second, err := f.intake.Submit(ctx, params)
	require.NoError(t, err)

	assert.NotEqual(t, first.WorkItem().ID(), second.WorkItem().ID())
	assert.False(t, first.WorkItem().HasMessageID())
}

func TestIntake_SuppliedFieldsSkipExtraction(t *testing.T) {
	f := newIntakeFixture(t)
	supplied := workitem.NewFields(map[string]any{"summary": "supplied"})

	record, err := f.intake.Submit(context.Background(), IntakeParams{
		Subject:     "Theft",
		Body:        "bike stolen",
		Fields:      &supplied,
		Attachments: []decoder.Descriptor{{Filename: "report.pdf", Content: encoded("police-bytes")}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), f.fields.calls.Load())
	summary, ok := record.WorkItem().Fields().Get("summary")
	assert.True(t, ok)
	assert.Equal(t, "supplied", summary)
	require.Len(t, record.Attachments(), 1)
	assert.Equal(t, workitem.DocTypePoliceReport, record.Attachments()[0].DocType())
}

func TestIntake_SuppliedEmptyFieldsStayAnObject(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()
	supplied := workitem.NewFields(map[string]any{})

	record, err := f.intake.Submit(ctx, IntakeParams{
		MessageID: "M-empty",
		Subject:   "Theft",
		Body:      "bike stolen",
		Fields:    &supplied,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.fields.calls.Load())

	stored, err := f.items.FindOne(ctx, query.WithID(record.WorkItem().ID()))
	require.NoError(t, err)
	assert.False(t, stored.Fields().IsNull())
	data, err := json.Marshal(stored.Fields())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestIntake_DegradedFieldsStillCreateWorkItem(t *testing.T) {
	f := newIntakeFixture(t)
	raw := "not json"
	f.fields.result = workitem.DegradedFields("parse response: invalid character", &raw)

	record, err := f.intake.Submit(context.Background(), IntakeParams{Subject: "Fire", Body: "kitchen fire"})
	require.NoError(t, err)

	assert.NotZero(t, record.WorkItem().ID())
	assert.True(t, record.WorkItem().Fields().IsDegraded())
	assert.Equal(t, "", record.WorkItem().Tag())
}

func TestIntake_SkipsUndecodableAndDuplicateAttachments(t *testing.T) {
	f := newIntakeFixture(t)

	record, err := f.intake.Submit(context.Background(), IntakeParams{
		Subject: "Car accident",
		Body:    "details",
		Attachments: []decoder.Descriptor{
			{Filename: "broken.pdf", Content: "!!not base64!!"},
			{Filename: "claim.pdf", Content: encoded("claim-bytes")},
			{Filename: "claim.pdf", Content: encoded("other")},
			{Filename: "", Content: encoded("nameless")},
		},
	})
	require.NoError(t, err)

	require.Len(t, record.Attachments(), 1)
	assert.Equal(t, "claim.pdf", record.Attachments()[0].Filename())
	assert.Equal(t, int64(1), f.text.calls.Load())
}

func TestIntake_UploadFailureReportsIncomplete(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()

	// The first work item in a fresh database gets id 1.
	f.objects.failFor["workitems/1/claim.pdf"] = true

	record, err := f.intake.Submit(ctx, IntakeParams{
		MessageID: "M1",
		Subject:   "Car accident",
		Body:      "details",
		Attachments: []decoder.Descriptor{
			{Filename: "report.pdf", Content: encoded("police-bytes")},
			{Filename: "claim.pdf", Content: encoded("claim-bytes")},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteIntake)
	assert.ErrorIs(t, err, errUploadFailed)
	assert.Contains(t, err.Error(), "work item 1")

	assert.Equal(t, int64(1), record.WorkItem().ID())
	require.Len(t, record.Attachments(), 1)
	assert.Equal(t, "report.pdf", record.Attachments()[0].Filename())

	stored, err := f.attach.Find(ctx, workitem.WithWorkItemID(1))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestIntake_RejectsEmptySubjectOrBody(t *testing.T) {
	f := newIntakeFixture(t)
	ctx := context.Background()

	_, err := f.intake.Submit(ctx, IntakeParams{Subject: "  ", Body: "x"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, workitem.ErrEmptySubject)

	_, err = f.intake.Submit(ctx, IntakeParams{Subject: "x", Body: ""})
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, workitem.ErrEmptyBody)

	count, err := f.items.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, f.fields.calls.Load())
}
