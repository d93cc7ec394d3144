// Package metrics 暴露 HTTP、后台任务与 PDF 渲染的 Prometheus 指标。
package metrics

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resumedesk"

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时分布（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求总数。",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "当前正在处理的 HTTP 请求数量。",
		},
	)

	// 页面流程基本都以跳转结束，按来源与目标统计便于观察登录失败、越权等情况。
	redirectTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "redirects_total",
			Help:      "按来源路由与目标路径统计的跳转次数。",
		},
		[]string{"path", "target"},
	)
)

// GinMiddleware 为 Gin 路由采集 Prometheus 指标。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			// 未匹配路由统一归档，避免任意 URL 撑爆标签基数
			path = "unmatched"
		}
		status := c.Writer.Status()
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(status),
		}

		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()

		if status >= 300 && status < 400 {
			redirectTotal.WithLabelValues(path, redirectTarget(c.Writer.Header().Get("Location"))).Inc()
		}
	}
}

// redirectTarget 只保留站内路径；外部地址（如预签名下载链接）统一记为 external。
func redirectTarget(location string) string {
	u, err := url.Parse(location)
	if err != nil || location == "" {
		return "unknown"
	}
	if u.Host != "" {
		return "external"
	}
	return u.Path
}
