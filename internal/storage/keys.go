package storage

import (
	"fmt"

	"github.com/google/uuid"
)

const archiveRoot = "generated-resumes"

// ArchivePrefix 是某份简历所有归档 PDF 的公共前缀。
func ArchivePrefix(userID, resumeID uint) string {
	return fmt.Sprintf("%s/%d/%d/", archiveRoot, userID, resumeID)
}

// NewArchiveKey 为一次新的归档生成唯一对象键。
func NewArchiveKey(userID, resumeID uint) string {
	return ArchivePrefix(userID, resumeID) + uuid.NewString() + ".pdf"
}
