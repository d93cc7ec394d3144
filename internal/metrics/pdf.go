package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pdfRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pdf",
			Name:      "render_duration_seconds",
			Help:      "HTML 转 PDF 耗时分布（秒）。",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)

	pdfRenderTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pdf",
			Name:      "renders_total",
			Help:      "PDF 渲染次数，按结果区分。",
		},
		[]string{"result"},
	)

	pdfPageOverflowTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pdf",
			Name:      "page_overflow_total",
			Help:      "超出一页的 PDF 数量。",
		},
	)
)

// ObservePDFRender 记录一次渲染的耗时与结果。
func ObservePDFRender(elapsed time.Duration, err error) {
	pdfRenderDuration.Observe(elapsed.Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	pdfRenderTotal.WithLabelValues(result).Inc()
}

func IncPDFPageOverflow() {
	pdfPageOverflowTotal.Inc()
}
