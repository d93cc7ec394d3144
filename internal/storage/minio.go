package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumedesk/internal/config"
)

const pdfContentType = "application/pdf"

// Client 封装 MinIO 客户端，保存归档的简历 PDF。
// publicClient 只用于签发对浏览器可见的下载链接。
type Client struct {
	internalClient *minio.Client
	publicClient   *minio.Client
	bucketName     string
}

// NewClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewClient(ctx context.Context, cfg config.MinIOConfig) (*Client, error) {
	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init internal minio client: %w", err)
	}

	publicClient := internalClient
	if strings.TrimSpace(cfg.PublicEndpoint) != "" {
		parsed, err := url.Parse(cfg.PublicEndpoint)
		if err != nil {
			return nil, fmt.Errorf("parse minio public endpoint: %w", err)
		}
		if parsed.Host == "" {
			return nil, fmt.Errorf("invalid minio public endpoint, host missing")
		}
		publicClient, err = minio.New(parsed.Host, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			Secure: parsed.Scheme == "https",
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		internalClient: internalClient,
		publicClient:   publicClient,
		bucketName:     cfg.Bucket,
	}, nil
}

// UploadPDF 把 PDF 字节写入私有 Bucket。
func (c *Client) UploadPDF(ctx context.Context, objectKey string, data []byte) error {
	_, err := c.internalClient.PutObject(ctx, c.bucketName, objectKey,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: pdfContentType},
	)
	if err != nil {
		return fmt.Errorf("put object %q: %w", objectKey, err)
	}
	return nil
}

// PresignedPDFURL 生成限时下载链接，并让浏览器以 filename 内联打开。
func (c *Client) PresignedPDFURL(ctx context.Context, objectKey, filename string, ttl time.Duration) (string, error) {
	params := url.Values{}
	if filename != "" {
		params.Set("response-content-disposition", fmt.Sprintf("inline; filename=%q", filename))
		params.Set("response-content-type", pdfContentType)
	}
	presignedURL, err := c.publicClient.PresignedGetObject(ctx, c.bucketName, objectKey, ttl, params)
	if err != nil {
		return "", fmt.Errorf("generate presigned url for %q: %w", objectKey, err)
	}
	return presignedURL.String(), nil
}

// DeleteObject 删除指定对象；对象不存在视为成功。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.internalClient.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}

// DeletePrefix 删除指定前缀下的所有对象，错误聚合返回。
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}

	objCh := c.internalClient.ListObjects(ctx, c.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})

	keys := make([]string, 0, 8)
	for object := range objCh {
		if object.Err != nil {
			if IsNoSuchBucket(object.Err) {
				return nil
			}
			return fmt.Errorf("list objects under %q: %w", prefix, object.Err)
		}
		if strings.TrimSpace(object.Key) != "" {
			keys = append(keys, object.Key)
		}
	}

	var failed int
	var firstErr error
	for _, key := range keys {
		if err := c.DeleteObject(ctx, key); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	switch failed {
	case 0:
		return nil
	case 1:
		return firstErr
	default:
		slog.Default().Error("delete minio objects under prefix failed",
			slog.String("prefix", prefix),
			slog.Int("failed_count", failed),
		)
		return fmt.Errorf("delete objects under %q: %d errors, first: %w", prefix, failed, firstErr)
	}
}
