package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"resumedesk/internal/auth"
	"resumedesk/internal/errcode"
	"resumedesk/internal/pdf"
	"resumedesk/internal/resume"
	"resumedesk/internal/storage"
	"resumedesk/internal/tasks"
)

// ResumeStore 是归档任务需要的简历服务能力。
type ResumeStore interface {
	LoadForRender(ctx context.Context, id auth.Identity, resumeID uint) (*resume.Aggregate, error)
	CompleteArchive(ctx context.Context, id auth.Identity, resumeID uint, objectKey string) error
	FailArchive(ctx context.Context, id auth.Identity, resumeID uint) error
}

type Renderer interface {
	Render(ctx context.Context, agg *resume.Aggregate) (*pdf.Result, error)
}

type ObjectStore interface {
	UploadPDF(ctx context.Context, objectKey string, data []byte) error
	DeleteObject(ctx context.Context, objectKey string) error
}

// PDFTaskHandler 负责消费 PDF 归档任务：渲染、上传并记录对象键。
type PDFTaskHandler struct {
	resumes      ResumeStore
	renderer     Renderer
	storage      ObjectStore
	logger       *slog.Logger
	finalAttempt func(ctx context.Context) bool
}

// NewPDFTaskHandler 创建任务处理器。
func NewPDFTaskHandler(resumes ResumeStore, renderer Renderer, storage ObjectStore, logger *slog.Logger) *PDFTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTaskHandler{
		resumes:      resumes,
		renderer:     renderer,
		storage:      storage,
		logger:       logger,
		finalAttempt: isFinalAsynqAttempt,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	payload, err := tasks.ParsePDFArchivePayload(t)
	if err != nil {
		h.logger.Error("invalid archive payload", slog.Any("error", err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("resume_id", uint64(payload.ResumeID)),
		slog.Uint64("user_id", uint64(payload.UserID)),
	)
	owner := auth.Identity{UserID: payload.UserID, Name: payload.UserName}
	log.Info("starting pdf archive task")

	agg, err := h.resumes.LoadForRender(ctx, owner, payload.ResumeID)
	if err != nil {
		if errcode.IsNotFound(err) {
			log.Warn("resume not found, skipping task")
			return nil
		}
		log.Error("load resume failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil || !h.finalAttempt(ctx) {
			return
		}
		if err := h.resumes.FailArchive(ctx, owner, payload.ResumeID); err != nil {
			log.Error("mark archive failed", slog.Any("error", err))
		}
	}()

	result, err := h.renderer.Render(ctx, agg)
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		return err
	}

	objectKey := storage.NewArchiveKey(payload.UserID, payload.ResumeID)
	if err := h.storage.UploadPDF(ctx, objectKey, result.Data); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	if err := h.resumes.CompleteArchive(ctx, owner, payload.ResumeID, objectKey); err != nil {
		if delErr := h.storage.DeleteObject(ctx, objectKey); delErr != nil {
			log.Warn("remove orphaned pdf failed", slog.String("object_key", objectKey), slog.Any("error", delErr))
		}
		if errcode.IsNotFound(err) {
			log.Warn("resume deleted while archiving, dropping pdf")
			return nil
		}
		log.Error("record archive failed", slog.Any("error", err))
		return err
	}

	if previous := agg.Resume.PdfObjectKey; previous != "" && previous != objectKey {
		if err := h.storage.DeleteObject(ctx, previous); err != nil {
			log.Warn("remove previous archive failed", slog.String("object_key", previous), slog.Any("error", err))
		}
	}

	log.Info("pdf archive task completed",
		slog.String("object_key", objectKey),
		slog.Int("pages", result.Pages),
	)
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
