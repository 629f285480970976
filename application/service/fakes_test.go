package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/claimsdesk/fnol/domain/workitem"
)

type fakeText struct {
	calls atomic.Int64
	texts map[string]string
}

func (f *fakeText) Extract(_ context.Context, data []byte, _ string) string {
	f.calls.Add(1)
	return f.texts[string(data)]
}

type fakeFields struct {
	calls  atomic.Int64
	result workitem.Fields
	seen   string
}

func (f *fakeFields) ExtractFields(_ context.Context, _, _, attachmentText string) workitem.Fields {
	f.calls.Add(1)
	f.seen = attachmentText
	return f.result
}

type fakeClassifier struct {
	calls atomic.Int64
}

func (f *fakeClassifier) Classify(_ context.Context, text, filename, _ string) workitem.DocType {
	f.calls.Add(1)
	if text == "POLICE" {
		return workitem.DocTypePoliceReport
	}
	if filename == "photo.jpg" {
		return workitem.DocTypePhoto
	}
	return workitem.DocTypeOther
}

type fakeObjects struct {
	mu      sync.Mutex
	keys    []string
	failFor map[string]bool
}

var errUploadFailed = errors.New("bucket unavailable")

func (f *fakeObjects) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[key] {
		return "", errUploadFailed
	}
	f.keys = append(f.keys, key)
	return "mem://" + key, nil
}

func (f *fakeObjects) uploaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]string, len(f.keys))
	copy(result, f.keys)
	return result
}
