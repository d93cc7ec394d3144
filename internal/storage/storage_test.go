package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
)

func TestArchiveKeys(t *testing.T) {
	prefix := ArchivePrefix(7, 42)
	if prefix != "generated-resumes/7/42/" {
		t.Fatalf("prefix = %q", prefix)
	}
	key := NewArchiveKey(7, 42)
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("key %q should live under %q", key, prefix)
	}
	if NewArchiveKey(7, 42) == key {
		t.Fatal("archive keys must be unique")
	}
}

func TestIsNoSuchKey(t *testing.T) {
	wrapped := fmt.Errorf("remove: %w", minio.ErrorResponse{Code: "NoSuchKey"})
	if !IsNoSuchKey(wrapped) {
		t.Fatal("expected NoSuchKey to be detected through wrapping")
	}
	if IsNoSuchKey(errors.New("access denied")) {
		t.Fatal("unrelated errors are not NoSuchKey")
	}
	if !IsNoSuchBucket(minio.ErrorResponse{Code: "NoSuchBucket"}) {
		t.Fatal("expected NoSuchBucket to be detected")
	}
}
