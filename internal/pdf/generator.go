package pdf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// A4，单位英寸。
const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
)

// RodConverter 使用 go-rod 在无头 Chromium 中把 HTML 打印为 PDF。
// 每次转换启动独立的浏览器进程，互不共享状态。
type RodConverter struct {
	chromeBin string
	timeout   time.Duration
	logger    *slog.Logger
}

func NewRodConverter(chromeBin string, timeout time.Duration, logger *slog.Logger) *RodConverter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RodConverter{
		chromeBin: chromeBin,
		timeout:   timeout,
		logger:    logger.With(slog.String("component", "pdf.rod")),
	}
}

// Convert 渲染 HTML 并返回 PDF 字节。
func (c *RodConverter) Convert(ctx context.Context, htmlContent string) (_ []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	if c.chromeBin != "" {
		launch = launch.Bin(c.chromeBin)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	defer launch.Cleanup()

	browser := rod.New().Context(ctx).ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			c.logger.Debug("close browser failed", slog.Any("error", closeErr))
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if err := page.SetDocumentContent(htmlContent); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	width, height := a4WidthInches, a4HeightInches
	reader, err := page.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        &width,
		PaperHeight:       &height,
	})
	if err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf bytes: %w", err)
	}
	return data, nil
}
