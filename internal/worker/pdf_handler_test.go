package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hibiken/asynq"

	"resumedesk/internal/auth"
	"resumedesk/internal/database"
	"resumedesk/internal/database/dbtest"
	"resumedesk/internal/pdf"
	"resumedesk/internal/resume"
	"resumedesk/internal/tasks"
)

type fakeRenderer struct {
	err   error
	calls int
}

func (f *fakeRenderer) Render(_ context.Context, agg *resume.Aggregate) (*pdf.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &pdf.Result{Data: []byte("%PDF-" + agg.Resume.ResumeName), Pages: 1}, nil
}

type fakeStore struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (f *fakeStore) UploadPDF(_ context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

var owner = auth.Identity{UserID: 5, Name: "Ada"}

func setup(t *testing.T) (*resume.Service, uint) {
	t.Helper()
	svc := resume.NewService(dbtest.New(t), nil)
	id, err := svc.Save(context.Background(), owner, resume.SaveInput{ResumeName: "Archive Me"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := svc.MarkArchivePending(context.Background(), owner, id); err != nil {
		t.Fatalf("mark pending: %v", err)
	}
	return svc, id
}

func archiveTask(t *testing.T, resumeID uint) *asynq.Task {
	t.Helper()
	task, err := tasks.NewPDFArchiveTask(tasks.PDFArchivePayload{
		ResumeID:      resumeID,
		UserID:        owner.UserID,
		UserName:      owner.Name,
		CorrelationID: "test",
	})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	return task
}

func TestProcessTask_UploadsOnceAndRecordsKey(t *testing.T) {
	ctx := context.Background()
	svc, id := setup(t)
	store := newFakeStore()
	h := NewPDFTaskHandler(svc, &fakeRenderer{}, store, nil)

	if err := h.ProcessTask(ctx, archiveTask(t, id)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected exactly one upload, got %d", len(store.objects))
	}

	agg, err := svc.LoadForRender(ctx, owner, id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if agg.Resume.PdfStatus != database.PdfStatusCompleted {
		t.Fatalf("status = %q", agg.Resume.PdfStatus)
	}
	if _, ok := store.objects[agg.Resume.PdfObjectKey]; !ok {
		t.Fatalf("recorded key %q was not uploaded", agg.Resume.PdfObjectKey)
	}
	if !strings.HasPrefix(agg.Resume.PdfObjectKey, "generated-resumes/5/") {
		t.Fatalf("unexpected key %q", agg.Resume.PdfObjectKey)
	}

	first := agg.Resume.PdfObjectKey
	if err := h.ProcessTask(ctx, archiveTask(t, id)); err != nil {
		t.Fatalf("second process: %v", err)
	}
	if len(store.objects) != 1 || len(store.deleted) != 1 || store.deleted[0] != first {
		t.Fatalf("previous archive should be replaced: objects=%d deleted=%v", len(store.objects), store.deleted)
	}
}

func TestProcessTask_MissingResumeIsSkipped(t *testing.T) {
	svc, id := setup(t)
	renderer := &fakeRenderer{}
	h := NewPDFTaskHandler(svc, renderer, newFakeStore(), nil)

	if err := h.ProcessTask(context.Background(), archiveTask(t, id+1)); err != nil {
		t.Fatalf("missing resume should not be retried: %v", err)
	}
	if renderer.calls != 0 {
		t.Fatal("nothing should be rendered")
	}
}

func TestProcessTask_FinalFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	svc, id := setup(t)
	h := NewPDFTaskHandler(svc, &fakeRenderer{err: errors.New("chromium gone")}, newFakeStore(), nil)

	h.finalAttempt = func(context.Context) bool { return false }
	if err := h.ProcessTask(ctx, archiveTask(t, id)); err == nil {
		t.Fatal("expected error to trigger a retry")
	}
	agg, _ := svc.LoadForRender(ctx, owner, id)
	if agg.Resume.PdfStatus != database.PdfStatusPending {
		t.Fatalf("non-final failure should leave status pending, got %q", agg.Resume.PdfStatus)
	}

	h.finalAttempt = func(context.Context) bool { return true }
	if err := h.ProcessTask(ctx, archiveTask(t, id)); err == nil {
		t.Fatal("expected error")
	}
	agg, _ = svc.LoadForRender(ctx, owner, id)
	if agg.Resume.PdfStatus != database.PdfStatusFailed {
		t.Fatalf("final failure should mark failed, got %q", agg.Resume.PdfStatus)
	}
}

func TestProcessTask_BadPayloadSkipsRetry(t *testing.T) {
	h := NewPDFTaskHandler(nil, nil, nil, nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask(tasks.TypePDFArchive, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}
