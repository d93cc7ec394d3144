package api

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resumedesk/internal/api/middleware"
	"resumedesk/internal/auth"
	"resumedesk/internal/database"
	"resumedesk/internal/errcode"
	"resumedesk/internal/pdf"
	"resumedesk/internal/resume"
	"resumedesk/internal/session"
	"resumedesk/internal/storage"
	"resumedesk/internal/tasks"
)

const (
	msgInvalidRequest   = "Invalid request."
	msgSaved            = "Resume saved successfully!"
	msgDeleted          = "Resume deleted successfully!"
	msgNoResumeID       = "No resume ID provided."
	msgArchiveNotReady  = "The archived PDF is not ready yet."
	archiveLinkLifetime = 5 * time.Minute
)

// PDFRenderer 把简历聚合渲染为 PDF。
type PDFRenderer interface {
	Render(ctx context.Context, agg *resume.Aggregate) (*pdf.Result, error)
}

// ArchiveStorage 是归档 PDF 所在的对象存储。
type ArchiveStorage interface {
	PresignedPDFURL(ctx context.Context, objectKey, filename string, ttl time.Duration) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// ResumeHandler 负责简历的增删改查与 PDF 输出。
type ResumeHandler struct {
	pages
	resumes  *resume.Service
	renderer PDFRenderer
	archive  tasks.Enqueuer
	storage  ArchiveStorage
}

// NewResumeHandler 构造 ResumeHandler；archive 与 storage 可为 nil，此时不启用 PDF 归档。
func NewResumeHandler(sessions *session.Manager, resumes *resume.Service, renderer PDFRenderer, archive tasks.Enqueuer, archiveStore ArchiveStorage) *ResumeHandler {
	return &ResumeHandler{
		pages:    pages{sessions: sessions},
		resumes:  resumes,
		renderer: renderer,
		archive:  archive,
		storage:  archiveStore,
	}
}

// Index 根据登录状态跳转。
func (h *ResumeHandler) Index(c *gin.Context) {
	if middleware.Current(c).SignedIn() {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *ResumeHandler) Dashboard(c *gin.Context) {
	s := middleware.Current(c)
	list, err := h.resumes.List(c.Request.Context(), s.Identity())
	if err != nil {
		s.AddFlash(session.FlashError, errcode.MessagesOf(err, resume.MsgLoadFailed)...)
	}
	h.render(c, "dashboard.html", "Dashboard", dashboardContent{
		Resumes:        list,
		ArchiveEnabled: h.storage != nil,
	})
}

// CreateForm 渲染空白表单，或在带 resume_id 时预填已有简历。
func (h *ResumeHandler) CreateForm(c *gin.Context) {
	ctx := c.Request.Context()
	identity := middleware.Current(c).Identity()

	var (
		agg   *resume.Aggregate
		err   error
		title = "Create Resume"
	)
	if id := queryID(c, "resume_id"); id != 0 {
		title = "Edit Resume"
		agg, err = h.resumes.LoadForEdit(ctx, identity, id)
	} else {
		agg, err = h.resumes.NewDraft(ctx, identity)
	}
	if err != nil {
		h.redirectErr(c, "/dashboard", err, resume.MsgLoadFailed)
		return
	}
	h.render(c, "resume_form.html", title, agg)
}

// ProcessResume 保存表单；成功后按配置投递归档任务。
func (h *ResumeHandler) ProcessResume(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		h.redirect(c, "/create_resume", session.FlashInfo, msgInvalidRequest)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.redirect(c, "/create_resume", session.FlashError, msgInvalidRequest)
		return
	}

	in, err := resume.ParseForm(c.Request.PostForm)
	if err != nil {
		h.redirect(c, "/create_resume", session.FlashError, msgInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	identity := middleware.Current(c).Identity()

	resumeID, err := h.resumes.Save(ctx, identity, in)
	if err != nil {
		if errcode.IsNotFound(err) {
			h.redirectErr(c, "/dashboard", err, resume.MsgNotFound)
			return
		}
		h.redirectErr(c, formLocation(in.ResumeID), err, resume.MsgSaveFailed)
		return
	}

	h.enqueueArchive(c, identity, resumeID)
	h.redirect(c, "/dashboard", session.FlashSuccess, msgSaved)
}

func (h *ResumeHandler) enqueueArchive(c *gin.Context, identity auth.Identity, resumeID uint) {
	if h.archive == nil {
		return
	}
	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c).With(slog.Uint64("resume_id", uint64(resumeID)))

	// 先标记 pending，避免 worker 完成后被覆盖。
	if err := h.resumes.MarkArchivePending(ctx, identity, resumeID); err != nil {
		logger.Error("mark archive pending failed", slog.Any("error", err))
		return
	}
	err := h.archive.EnqueueArchive(ctx, tasks.PDFArchivePayload{
		ResumeID:      resumeID,
		UserID:        identity.UserID,
		UserName:      identity.Name,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err != nil {
		logger.Error("enqueue pdf archive failed", slog.Any("error", err))
		if ferr := h.resumes.FailArchive(ctx, identity, resumeID); ferr != nil {
			logger.Error("mark archive failed", slog.Any("error", ferr))
		}
		return
	}
	logger.Info("pdf archive enqueued")
}

// DeleteResume 删除简历及其全部子记录，归档文件尽力清理。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	ctx := c.Request.Context()
	identity := middleware.Current(c).Identity()
	resumeID := queryID(c, "resume_id")

	if err := h.resumes.Delete(ctx, identity, resumeID); err != nil {
		h.redirectErr(c, "/dashboard", err, resume.MsgDeleteFailed)
		return
	}

	if h.storage != nil {
		if err := h.storage.DeletePrefix(ctx, storage.ArchivePrefix(identity.UserID, resumeID)); err != nil {
			middleware.LoggerFromContext(c).Warn("delete archived pdfs failed",
				slog.Uint64("resume_id", uint64(resumeID)),
				slog.Any("error", err),
			)
		}
	}
	h.redirect(c, "/dashboard", session.FlashSuccess, msgDeleted)
}

// GeneratePDF 实时渲染并以内联方式返回 PDF；渲染失败直接返回 500。
func (h *ResumeHandler) GeneratePDF(c *gin.Context) {
	resumeID := queryID(c, "resume_id")
	if resumeID == 0 {
		h.redirect(c, "/dashboard", session.FlashError, msgNoResumeID)
		return
	}

	ctx := c.Request.Context()
	agg, err := h.resumes.LoadForRender(ctx, middleware.Current(c).Identity(), resumeID)
	if err != nil {
		h.redirectErr(c, "/dashboard", err, resume.MsgLoadFailed)
		return
	}

	result, err := h.renderer.Render(ctx, agg)
	if err != nil {
		middleware.LoggerFromContext(c).Error("pdf generation failed",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
		internalError(c)
		return
	}

	middleware.SaveSession(c, h.sessions)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": pdf.Filename(agg.Resume.ResumeName),
	}))
	c.Data(http.StatusOK, "application/pdf", result.Data)
}

// DownloadResume 跳转到最近一次归档 PDF 的临时链接。
func (h *ResumeHandler) DownloadResume(c *gin.Context) {
	resumeID := queryID(c, "resume_id")
	if resumeID == 0 {
		h.redirect(c, "/dashboard", session.FlashError, msgNoResumeID)
		return
	}

	ctx := c.Request.Context()
	agg, err := h.resumes.LoadForRender(ctx, middleware.Current(c).Identity(), resumeID)
	if err != nil {
		h.redirectErr(c, "/dashboard", err, resume.MsgLoadFailed)
		return
	}
	if h.storage == nil || agg.Resume.PdfStatus != database.PdfStatusCompleted || agg.Resume.PdfObjectKey == "" {
		h.redirect(c, "/dashboard", session.FlashInfo, msgArchiveNotReady)
		return
	}

	url, err := h.storage.PresignedPDFURL(ctx, agg.Resume.PdfObjectKey, pdf.Filename(agg.Resume.ResumeName), archiveLinkLifetime)
	if err != nil {
		middleware.LoggerFromContext(c).Error("presign archived pdf failed", slog.Any("error", err))
		h.redirect(c, "/dashboard", session.FlashError, resume.MsgLoadFailed)
		return
	}
	middleware.SaveSession(c, h.sessions)
	c.Redirect(http.StatusFound, url)
}

func formLocation(resumeID uint) string {
	if resumeID == 0 {
		return "/create_resume"
	}
	return "/create_resume?resume_id=" + strconv.FormatUint(uint64(resumeID), 10)
}
