package storage

import (
	"errors"
	"strings"

	"github.com/minio/minio-go/v7"
)

// IsNoSuchKey 判断对象是否不存在；删除归档时视为已删除。
func IsNoSuchKey(err error) bool {
	return matchS3Error(err, []string{"nosuchkey", "notfound"},
		"nosuchkey", "specified key does not exist", "not found")
}

// IsNoSuchBucket 判断 Bucket 是否不存在。
func IsNoSuchBucket(err error) bool {
	return matchS3Error(err, []string{"nosuchbucket"},
		"nosuchbucket", "specified bucket does not exist")
}

// matchS3Error 先比对 minio.ErrorResponse 的错误码，再退回到错误文本，
// 网关或代理有时只保留字符串。
func matchS3Error(err error, codes []string, fragments ...string) bool {
	if err == nil {
		return false
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		code := strings.ToLower(strings.TrimSpace(resp.Code))
		for _, c := range codes {
			if code == c {
				return true
			}
		}
	}

	lower := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
