package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePDFArchive = "pdf:archive"
)

// PDFArchivePayload 描述归档一份简历 PDF 所需的信息。
// UserID/UserName 让 worker 以简历所有者的身份重新加载聚合。
type PDFArchivePayload struct {
	ResumeID      uint   `json:"resume_id"`
	UserID        uint   `json:"user_id"`
	UserName      string `json:"user_name"`
	CorrelationID string `json:"correlation_id"`
}

// NewPDFArchiveTask 构造一个新的归档任务。
func NewPDFArchiveTask(p PDFArchivePayload, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePDFArchive, payload, opts...), nil
}

// ParsePDFArchivePayload 解析任务负载。
func ParsePDFArchivePayload(task *asynq.Task) (PDFArchivePayload, error) {
	var p PDFArchivePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal %s payload: %w", TypePDFArchive, err)
	}
	if p.ResumeID == 0 || p.UserID == 0 {
		return p, fmt.Errorf("%s payload missing ids", TypePDFArchive)
	}
	return p, nil
}

// Enqueuer 是 API 侧投递任务的最小接口。
type Enqueuer interface {
	EnqueueArchive(ctx context.Context, p PDFArchivePayload) error
}

// Client 基于 asynq.Client 投递任务。
type Client struct {
	client   *asynq.Client
	maxRetry int
}

func NewClient(client *asynq.Client, maxRetry int) *Client {
	return &Client{client: client, maxRetry: maxRetry}
}

func (c *Client) EnqueueArchive(ctx context.Context, p PDFArchivePayload) error {
	task, err := NewPDFArchiveTask(p,
		asynq.MaxRetry(c.maxRetry),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue %s: %w", TypePDFArchive, err)
	}
	return nil
}
