package resume

import "resumedesk/internal/database"

// ProfileInput 是表单提交的联系方式。
type ProfileInput struct {
	FullName    string `form:"full_name"`
	Email       string `form:"email"`
	Phone       string `form:"phone"`
	LinkedinURL string `form:"linkedin_url"`
	GithubURL   string `form:"github_url"`
	WebsiteURL  string `form:"website_url"`
	Address     string `form:"address"`
}

type ExperienceRow struct {
	CompanyName string `form:"company_name"`
	JobTitle    string `form:"job_title"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
	Description string `form:"description"`
}

type EducationRow struct {
	Institution    string `form:"institution"`
	Degree         string `form:"degree"`
	Major          string `form:"major"`
	GraduationDate string `form:"graduation_date"`
}

type SkillRow struct {
	SkillName string `form:"skill_name"`
	SkillType string `form:"skill_type"`
}

type ProjectRow struct {
	ProjectTitle string `form:"project_title"`
	ProjectURL   string `form:"project_url"`
	Technologies string `form:"technologies"`
	Description  string `form:"description"`
}

// SaveInput 是一次创建/更新提交；ResumeID 为 0 表示新建。
type SaveInput struct {
	ResumeID    uint
	ResumeName  string
	Summary     string
	Profile     ProfileInput
	Experiences []ExperienceRow
	Education   []EducationRow
	Skills      []SkillRow
	Projects    []ProjectRow
}

// Aggregate 是一份简历及其共享资料和全部子集合。
type Aggregate struct {
	Resume      database.Resume
	Profile     database.UserProfile
	OwnerName   string
	Experiences []database.Experience
	Education   []database.Education
	Skills      []database.Skill
	Projects    []database.Project
}

// IsNew 表示尚未持久化的草稿。
func (a *Aggregate) IsNew() bool { return a.Resume.ID == 0 }
