package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	pdfreader "github.com/ledongthuc/pdf"

	"resumedesk/internal/metrics"
	"resumedesk/internal/resume"
)

// Converter 把完整的 HTML 文档转换为 PDF。
type Converter interface {
	Convert(ctx context.Context, html string) ([]byte, error)
}

// Result 是一次渲染的产物；Pages 为 0 表示页数无法统计。
type Result struct {
	Data  []byte
	Pages int
}

type Renderer struct {
	converter Converter
	logger    *slog.Logger
}

func NewRenderer(converter Converter, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		converter: converter,
		logger:    logger.With(slog.String("component", "pdf")),
	}
}

// Render 生成简历 PDF；超过一页只记录告警，不视为失败。
func (r *Renderer) Render(ctx context.Context, agg *resume.Aggregate) (*Result, error) {
	logger := r.logger.With(slog.Uint64("resume_id", uint64(agg.Resume.ID)))

	html, err := RenderHTML(BuildDocument(agg))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := r.converter.Convert(ctx, html)
	metrics.ObservePDFRender(time.Since(start), err)
	if err != nil {
		logger.Error("pdf conversion failed", slog.Any("error", err))
		return nil, fmt.Errorf("convert resume to pdf: %w", err)
	}

	pages, err := CountPages(data)
	if err != nil {
		logger.Warn("count pdf pages failed", slog.Any("error", err))
	}
	if pages > 1 {
		metrics.IncPDFPageOverflow()
		logger.Warn("resume does not fit on one page", slog.Int("pages", pages))
	}
	return &Result{Data: data, Pages: pages}, nil
}

// CountPages 解析 PDF 并返回页数。
func CountPages(data []byte) (pages int, err error) {
	// 解析器在遇到损坏的对象时可能 panic
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
