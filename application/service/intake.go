package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/claimsdesk/fnol/domain/service"
	"github.com/claimsdesk/fnol/domain/workitem"
	"github.com/claimsdesk/fnol/infrastructure/blob"
	"github.com/claimsdesk/fnol/infrastructure/decoder"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds per-submission attachment work.
const DefaultParallelism = 4

// IntakeParams is one FNOL submission.
type IntakeParams struct {
	MessageID string
	Subject   string
	Body      string
	// Fields, when set, is stored verbatim and field extraction is skipped.
	Fields      *workitem.Fields
	Attachments []decoder.Descriptor
}

// Intake runs the intake pipeline: dedup, decode, OCR, field extraction,
// work item commit, then per-attachment classify, upload and persist.
type Intake struct {
	items       workitem.WorkItemStore
	attachments workitem.AttachmentStore
	decoder     *decoder.Decoder
	text        service.TextExtractor
	fields      service.FieldExtractor
	classifier  service.DocumentClassifier
	objects     service.ObjectStore
	locker      service.Locker
	parallelism int
	logger      *slog.Logger
}

// IntakeOption configures an Intake.
type IntakeOption func(*Intake)

// WithLocker sets the message id locker.
func WithLocker(l service.Locker) IntakeOption {
	return func(i *Intake) { i.locker = l }
}

// WithParallelism bounds concurrent attachment work per submission.
func WithParallelism(n int) IntakeOption {
	return func(i *Intake) {
		if n > 0 {
			i.parallelism = n
		}
	}
}

// WithIntakeLogger sets the logger.
func WithIntakeLogger(l *slog.Logger) IntakeOption {
	return func(i *Intake) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewIntake creates the intake controller.
func NewIntake(
	items workitem.WorkItemStore,
	attachments workitem.AttachmentStore,
	text service.TextExtractor,
	fields service.FieldExtractor,
	classifier service.DocumentClassifier,
	objects service.ObjectStore,
	opts ...IntakeOption,
) *Intake {
	i := &Intake{
		items:       items,
		attachments: attachments,
		text:        text,
		fields:      fields,
		classifier:  classifier,
		objects:     objects,
		parallelism: DefaultParallelism,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.locker == nil {
		i.locker = noLocker{}
	}
	i.decoder = decoder.NewDecoder(i.logger)
	return i
}

type noLocker struct{}

func (noLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

// decoded is one attachment after OCR.
type decoded struct {
	decoder.Attachment
	text string
}

// Submit processes one submission. When a work item with the same message
// id exists it is returned unchanged and nothing else happens.
//
// If some attachments fail to store, the hydrated record is returned
// together with an error wrapping ErrIncompleteIntake.
func (s *Intake) Submit(ctx context.Context, params IntakeParams) (workitem.Record, error) {
	if strings.TrimSpace(params.Subject) == "" {
		return workitem.Record{}, fmt.Errorf("%w: %w", ErrValidation, workitem.ErrEmptySubject)
	}
	if strings.TrimSpace(params.Body) == "" {
		return workitem.Record{}, fmt.Errorf("%w: %w", ErrValidation, workitem.ErrEmptyBody)
	}

	messageID := strings.TrimSpace(params.MessageID)
	unlock := func() {}
	if messageID != "" {
		release, err := s.locker.Lock(ctx, messageID)
		if err != nil {
			return workitem.Record{}, fmt.Errorf("claim message id: %w", err)
		}
		unlock = release
	}
	defer unlock()

	if messageID != "" {
		record, found, err := s.existing(ctx, messageID)
		if err != nil {
			return workitem.Record{}, err
		}
		if found {
			s.logger.InfoContext(ctx, "intake.duplicate",
				slog.String("message_id", messageID),
				slog.Int64("work_item_id", record.WorkItem().ID()),
			)
			return record, nil
		}
	}

	files := s.recognize(ctx, s.decoder.Decode(ctx, params.Attachments))

	fields := s.extract(ctx, params, files)

	item, err := workitem.NewWorkItem(messageID, params.Subject, params.Body, fields)
	if err != nil {
		return workitem.Record{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	item, err = s.items.Create(ctx, item)
	if errors.Is(err, workitem.ErrDuplicateMessage) {
		record, found, ferr := s.existing(ctx, messageID)
		if ferr != nil {
			return workitem.Record{}, ferr
		}
		if found {
			s.logger.InfoContext(ctx, "intake.duplicate",
				slog.String("message_id", messageID),
				slog.Int64("work_item_id", record.WorkItem().ID()),
				slog.Bool("race", true),
			)
			return record, nil
		}
	}
	if err != nil {
		return workitem.Record{}, fmt.Errorf("create work item: %w", err)
	}
	unlock()

	s.logger.InfoContext(ctx, "intake.workitem.created",
		slog.Int64("work_item_id", item.ID()),
		slog.String("message_id", messageID),
		slog.Int("attachments", len(files)),
		slog.Bool("fields_degraded", item.Fields().IsDegraded()),
	)

	failures := s.storeAttachments(ctx, item, files)

	record, err := hydrate(ctx, s.attachments, item)
	if err != nil {
		return workitem.Record{}, err
	}
	if len(failures) > 0 {
		return record, fmt.Errorf("%w: work item %d: %w", ErrIncompleteIntake, item.ID(), errors.Join(failures...))
	}
	return record, nil
}

func (s *Intake) existing(ctx context.Context, messageID string) (workitem.Record, bool, error) {
	item, err := s.items.FindOne(ctx, workitem.WithMessageID(messageID))
	if errors.Is(err, workitem.ErrNotFound) {
		return workitem.Record{}, false, nil
	}
	if err != nil {
		return workitem.Record{}, false, fmt.Errorf("find by message id: %w", err)
	}
	record, err := hydrate(ctx, s.attachments, item)
	if err != nil {
		return workitem.Record{}, false, err
	}
	return record, true, nil
}

// recognize runs OCR on every attachment and returns once all have finished.
func (s *Intake) recognize(ctx context.Context, attachments []decoder.Attachment) []decoded {
	files := make([]decoded, len(attachments))

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for i, a := range attachments {
		files[i].Attachment = a
		g.Go(func() error {
			files[i].text = s.text.Extract(ctx, a.Data, a.MimeType)
			return nil
		})
	}
	_ = g.Wait()

	return files
}

func (s *Intake) extract(ctx context.Context, params IntakeParams, files []decoded) workitem.Fields {
	if params.Fields != nil {
		return *params.Fields
	}

	texts := make([]string, 0, len(files))
	for _, f := range files {
		if f.text != "" {
			texts = append(texts, f.text)
		}
	}
	return s.fields.ExtractFields(ctx, params.Subject, params.Body, strings.Join(texts, "\n\n"))
}

type prepared struct {
	file    decoded
	docType workitem.DocType
	url     string
	err     error
}

// storeAttachments classifies and uploads new attachments concurrently,
// then inserts their rows in submission order.
func (s *Intake) storeAttachments(ctx context.Context, item workitem.WorkItem, files []decoded) []error {
	if len(files) == 0 {
		return nil
	}

	stored, err := s.attachments.Find(ctx, workitem.WithWorkItemID(item.ID()))
	if err != nil {
		return []error{fmt.Errorf("find stored attachments: %w", err)}
	}
	existing := workitem.NewRecord(item, stored).Filenames()

	var pending []*prepared
	for _, f := range files {
		if _, ok := existing[f.Filename]; ok {
			s.logger.InfoContext(ctx, "intake.attachment.skipped",
				slog.Int64("work_item_id", item.ID()),
				slog.String("filename", f.Filename),
			)
			continue
		}
		pending = append(pending, &prepared{file: f})
	}

	var g errgroup.Group
	g.SetLimit(s.parallelism)
	for _, p := range pending {
		g.Go(func() error {
			p.docType = s.classifier.Classify(ctx, p.file.text, p.file.Filename, p.file.Hint)
			key := blob.Key(item.ID(), p.file.Filename)
			p.url, p.err = s.objects.Upload(ctx, key, p.file.Data, p.file.MimeType)
			if p.err != nil {
				p.err = fmt.Errorf("upload %s: %w", p.file.Filename, p.err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var failures []error
	for _, p := range pending {
		if p.err != nil {
			s.logger.ErrorContext(ctx, "intake.attachment.failed",
				slog.Int64("work_item_id", item.ID()),
				slog.String("filename", p.file.Filename),
				slog.String("error", p.err.Error()),
			)
			failures = append(failures, p.err)
			continue
		}

		attachment, err := workitem.NewAttachment(
			item.ID(), p.file.Filename, p.url, p.docType,
			p.file.MimeType, int64(len(p.file.Data)), workitem.UploaderIntake,
		)
		if err != nil {
			failures = append(failures, fmt.Errorf("attachment %s: %w", p.file.Filename, err))
			continue
		}

		saved, created, err := s.attachments.Create(ctx, attachment)
		if err != nil {
			s.logger.ErrorContext(ctx, "intake.attachment.failed",
				slog.Int64("work_item_id", item.ID()),
				slog.String("filename", p.file.Filename),
				slog.String("error", err.Error()),
			)
			failures = append(failures, fmt.Errorf("store %s: %w", p.file.Filename, err))
			continue
		}
		if !created {
			s.logger.InfoContext(ctx, "intake.attachment.skipped",
				slog.Int64("work_item_id", item.ID()),
				slog.String("filename", p.file.Filename),
			)
			continue
		}

		s.logger.DebugContext(ctx, "intake.attachment.stored",
			slog.Int64("work_item_id", item.ID()),
			slog.Int64("attachment_id", saved.ID()),
			slog.String("filename", saved.Filename()),
			slog.String("doc_type", saved.DocType().String()),
		)
	}
	return failures
}
