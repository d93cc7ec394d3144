package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PDF 归档状态。
const (
	PdfStatusNone      = ""
	PdfStatusPending   = "pending"
	PdfStatusCompleted = "completed"
	PdfStatusFailed    = "failed"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
}

// UserProfile 是用户的联系方式，一个用户一行，被其所有简历共享。
type UserProfile struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"uniqueIndex;not null"`
	FullName    string `gorm:"size:255"`
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:50"`
	LinkedinURL string `gorm:"size:512"`
	GithubURL   string `gorm:"size:512"`
	WebsiteURL  string `gorm:"size:512"`
	Address     string `gorm:"size:512"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (UserProfile) TableName() string { return "user_profiles" }

// Resume 表示用户创建的一份简历；子表通过 resume_id 关联。
type Resume struct {
	ID           uint   `gorm:"primaryKey"`
	UserID       uint   `gorm:"index;not null"`
	ResumeName   string `gorm:"size:255;not null"`
	Summary      string `gorm:"type:text"`
	PdfObjectKey string `gorm:"size:512"`
	PdfStatus    string `gorm:"size:32"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Resume) TableName() string { return "resumes" }

type Experience struct {
	ID          uint            `gorm:"primaryKey"`
	ResumeID    uint            `gorm:"index;not null"`
	CompanyName string          `gorm:"size:255;not null"`
	JobTitle    string          `gorm:"size:255"`
	StartDate   *datatypes.Date `gorm:"type:date"`
	EndDate     string          `gorm:"size:50"`
	Description string          `gorm:"type:text"`
}

func (Experience) TableName() string { return "experiences" }

type Education struct {
	ID             uint            `gorm:"primaryKey"`
	ResumeID       uint            `gorm:"index;not null"`
	Institution    string          `gorm:"size:255;not null"`
	Degree         string          `gorm:"size:255"`
	Major          string          `gorm:"size:255"`
	GraduationDate *datatypes.Date `gorm:"type:date"`
}

func (Education) TableName() string { return "education" }

type Skill struct {
	ID        uint   `gorm:"primaryKey"`
	ResumeID  uint   `gorm:"index;not null"`
	SkillName string `gorm:"size:100;not null"`
	SkillType string `gorm:"size:100"`
}

func (Skill) TableName() string { return "skills" }

type Project struct {
	ID           uint   `gorm:"primaryKey"`
	ResumeID     uint   `gorm:"index;not null"`
	ProjectTitle string `gorm:"size:255;not null"`
	ProjectURL   string `gorm:"size:512"`
	Technologies string `gorm:"size:512"`
	Description  string `gorm:"type:text"`
}

func (Project) TableName() string { return "projects" }

// Models 返回全部模型，供测试中的 AutoMigrate 使用。
func Models() []any {
	return []any{
		&User{},
		&UserProfile{},
		&Resume{},
		&Experience{},
		&Education{},
		&Skill{},
		&Project{},
	}
}
