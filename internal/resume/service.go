package resume

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumedesk/internal/auth"
	"resumedesk/internal/database"
	"resumedesk/internal/errcode"
)

const dateLayout = "2006-01-02"

const (
	MsgNotFound      = "Resume not found or you do not have permission to access it."
	MsgNoDeleteID    = "No resume ID provided for deletion."
	MsgSaveFailed    = "Error saving resume. Please try again."
	MsgDeleteFailed  = "Error deleting resume. Please try again."
	MsgLoadFailed    = "Error loading resume. Please try again."
	MsgNameRequired  = "Resume name is required."
	msgNotSignedIn   = "You must be logged in to access that page."
	msgArchiveFailed = "Error updating archive status."
)

// Service 是简历聚合的唯一入口；所有方法都显式接收调用者身份并校验归属。
type Service struct {
	db     *gorm.DB
	repo   *repository
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:     db,
		repo:   newRepository(db),
		logger: logger.With(slog.String("component", "resume")),
	}
}

// List 返回调用者的全部简历，按创建时间倒序。
func (s *Service) List(ctx context.Context, id auth.Identity) ([]database.Resume, error) {
	if id.IsZero() {
		return nil, errcode.SignInRequired(msgNotSignedIn)
	}
	resumes, err := s.repo.listByUser(ctx, nil, id.UserID)
	if err != nil {
		s.logger.Error("list resumes failed", slog.Uint64("user_id", uint64(id.UserID)), slog.Any("error", err))
		return nil, errcode.Persistence(MsgLoadFailed, err)
	}
	return resumes, nil
}

// NewDraft 构造空白表单：预填共享资料，每个子集合一行空白。
func (s *Service) NewDraft(ctx context.Context, id auth.Identity) (*Aggregate, error) {
	if id.IsZero() {
		return nil, errcode.SignInRequired(msgNotSignedIn)
	}
	agg := &Aggregate{
		Resume:    database.Resume{UserID: id.UserID},
		OwnerName: id.Name,
	}
	if err := s.loadProfile(ctx, nil, id, agg); err != nil {
		return nil, err
	}
	padBlankRows(agg)
	return agg, nil
}

// LoadForEdit 加载可编辑的聚合，空集合补一行空白。
func (s *Service) LoadForEdit(ctx context.Context, id auth.Identity, resumeID uint) (*Aggregate, error) {
	agg, err := s.load(ctx, id, resumeID)
	if err != nil {
		return nil, err
	}
	padBlankRows(agg)
	return agg, nil
}

// LoadForRender 加载用于生成 PDF 的聚合，不补空行。
func (s *Service) LoadForRender(ctx context.Context, id auth.Identity, resumeID uint) (*Aggregate, error) {
	return s.load(ctx, id, resumeID)
}

func (s *Service) load(ctx context.Context, id auth.Identity, resumeID uint) (*Aggregate, error) {
	if id.IsZero() {
		return nil, errcode.SignInRequired(msgNotSignedIn)
	}
	logger := s.logger.With(
		slog.Uint64("user_id", uint64(id.UserID)),
		slog.Uint64("resume_id", uint64(resumeID)),
	)

	res, err := s.repo.findOwned(ctx, nil, resumeID, id.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errcode.Missing(MsgNotFound)
		}
		logger.Error("load resume failed", slog.Any("error", err))
		return nil, errcode.Persistence(MsgLoadFailed, err)
	}

	agg := &Aggregate{Resume: *res, OwnerName: id.Name}
	if err := s.loadProfile(ctx, nil, id, agg); err != nil {
		return nil, err
	}
	if err := s.repo.loadChildren(ctx, nil, agg); err != nil {
		logger.Error("load resume sections failed", slog.Any("error", err))
		return nil, errcode.Persistence(MsgLoadFailed, err)
	}
	return agg, nil
}

func (s *Service) loadProfile(ctx context.Context, tx *gorm.DB, id auth.Identity, agg *Aggregate) error {
	profile, err := s.repo.findProfile(ctx, tx, id.UserID)
	if err != nil {
		s.logger.Error("load profile failed", slog.Uint64("user_id", uint64(id.UserID)), slog.Any("error", err))
		return errcode.Persistence(MsgLoadFailed, err)
	}
	if profile == nil {
		profile = &database.UserProfile{UserID: id.UserID, FullName: id.Name}
	}
	agg.Profile = *profile
	return nil
}

func padBlankRows(agg *Aggregate) {
	if len(agg.Experiences) == 0 {
		agg.Experiences = []database.Experience{{}}
	}
	if len(agg.Education) == 0 {
		agg.Education = []database.Education{{}}
	}
	if len(agg.Skills) == 0 {
		agg.Skills = []database.Skill{{}}
	}
	if len(agg.Projects) == 0 {
		agg.Projects = []database.Project{{}}
	}
}

type children struct {
	experiences []database.Experience
	education   []database.Education
	skills      []database.Skill
	projects    []database.Project
}

// Save 在一个事务内创建或更新简历、写入共享资料并替换四个子集合，返回简历 ID。
func (s *Service) Save(ctx context.Context, id auth.Identity, in SaveInput) (uint, error) {
	if id.IsZero() {
		return 0, errcode.SignInRequired(msgNotSignedIn)
	}
	name := strings.TrimSpace(in.ResumeName)
	var problems []string
	if name == "" {
		problems = append(problems, MsgNameRequired)
	}
	rows, rowProblems := buildChildren(in)
	if problems = append(problems, rowProblems...); len(problems) > 0 {
		return 0, errcode.Validation(problems...)
	}

	logger := s.logger.With(
		slog.Uint64("user_id", uint64(id.UserID)),
		slog.Uint64("resume_id", uint64(in.ResumeID)),
	)

	res := database.Resume{
		ID:         in.ResumeID,
		UserID:     id.UserID,
		ResumeName: name,
		Summary:    strings.TrimSpace(in.Summary),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res.ID == 0 {
			if err := s.repo.createResume(ctx, tx, &res); err != nil {
				return fmt.Errorf("create resume: %w", err)
			}
		} else {
			if _, err := s.repo.findOwned(ctx, tx, res.ID, id.UserID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errcode.Missing(MsgNotFound)
				}
				return fmt.Errorf("check ownership: %w", err)
			}
			if err := s.repo.updateResume(ctx, tx, &res); err != nil {
				return fmt.Errorf("update resume: %w", err)
			}
		}

		if err := s.repo.upsertProfile(ctx, tx, profileModel(id.UserID, in.Profile)); err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}

		rows.attach(res.ID)
		if err := s.repo.replaceChildren(ctx, tx, res.ID, rows); err != nil {
			return fmt.Errorf("replace sections: %w", err)
		}
		return nil
	})
	if err != nil {
		if errcode.IsNotFound(err) {
			logger.Info("save rejected: resume not owned")
			return 0, err
		}
		logger.Error("save resume failed", slog.Any("error", err))
		return 0, errcode.Persistence(MsgSaveFailed, err)
	}

	logger.Info("resume saved", slog.Uint64("saved_id", uint64(res.ID)))
	return res.ID, nil
}

// Delete 在一个事务内先校验归属，再删除四个子集合和简历本身。
func (s *Service) Delete(ctx context.Context, id auth.Identity, resumeID uint) error {
	if id.IsZero() {
		return errcode.SignInRequired(msgNotSignedIn)
	}
	if resumeID == 0 {
		return errcode.Validation(MsgNoDeleteID)
	}
	logger := s.logger.With(
		slog.Uint64("user_id", uint64(id.UserID)),
		slog.Uint64("resume_id", uint64(resumeID)),
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.findOwned(ctx, tx, resumeID, id.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errcode.Missing(MsgNotFound)
			}
			return fmt.Errorf("check ownership: %w", err)
		}
		if err := s.repo.deleteChildren(ctx, tx, resumeID); err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}
		affected, err := s.repo.deleteResume(ctx, tx, resumeID, id.UserID)
		if err != nil {
			return fmt.Errorf("delete resume: %w", err)
		}
		if affected == 0 {
			return errcode.Missing(MsgNotFound)
		}
		return nil
	})
	if err != nil {
		if errcode.IsNotFound(err) {
			logger.Info("delete rejected: resume not found")
			return err
		}
		logger.Error("delete resume failed", slog.Any("error", err))
		return errcode.Persistence(MsgDeleteFailed, err)
	}

	logger.Info("resume deleted")
	return nil
}

// MarkArchivePending 标记归档任务已入队。
func (s *Service) MarkArchivePending(ctx context.Context, id auth.Identity, resumeID uint) error {
	return s.updateArchive(ctx, id, resumeID, map[string]any{
		"pdf_status": database.PdfStatusPending,
	})
}

// CompleteArchive 记录最新归档 PDF 的对象键。
func (s *Service) CompleteArchive(ctx context.Context, id auth.Identity, resumeID uint, objectKey string) error {
	return s.updateArchive(ctx, id, resumeID, map[string]any{
		"pdf_status":     database.PdfStatusCompleted,
		"pdf_object_key": objectKey,
	})
}

// FailArchive 在最后一次重试失败后调用。
func (s *Service) FailArchive(ctx context.Context, id auth.Identity, resumeID uint) error {
	return s.updateArchive(ctx, id, resumeID, map[string]any{
		"pdf_status": database.PdfStatusFailed,
	})
}

func (s *Service) updateArchive(ctx context.Context, id auth.Identity, resumeID uint, fields map[string]any) error {
	if id.IsZero() {
		return errcode.SignInRequired(msgNotSignedIn)
	}
	affected, err := s.repo.updateArchive(ctx, nil, resumeID, id.UserID, fields)
	if err != nil {
		s.logger.Error("update archive status failed",
			slog.Uint64("resume_id", uint64(resumeID)),
			slog.Any("error", err),
		)
		return errcode.Persistence(msgArchiveFailed, err)
	}
	if affected == 0 {
		return errcode.Missing(MsgNotFound)
	}
	return nil
}

func profileModel(userID uint, p ProfileInput) *database.UserProfile {
	return &database.UserProfile{
		UserID:      userID,
		FullName:    strings.TrimSpace(p.FullName),
		Email:       strings.TrimSpace(p.Email),
		Phone:       strings.TrimSpace(p.Phone),
		LinkedinURL: strings.TrimSpace(p.LinkedinURL),
		GithubURL:   strings.TrimSpace(p.GithubURL),
		WebsiteURL:  strings.TrimSpace(p.WebsiteURL),
		Address:     strings.TrimSpace(p.Address),
	}
}

// buildChildren 丢弃标签字段为空的行，并把日期字段解析为 DATE；格式错误一次性全部报告。
func buildChildren(in SaveInput) (children, []string) {
	var (
		out      children
		problems []string
	)

	for i, row := range in.Experiences {
		company := strings.TrimSpace(row.CompanyName)
		if company == "" {
			continue
		}
		start, ok := parseDate(row.StartDate)
		if !ok {
			problems = append(problems, fmt.Sprintf("Start date for experience #%d must be in YYYY-MM-DD format.", i+1))
		}
		out.experiences = append(out.experiences, database.Experience{
			CompanyName: company,
			JobTitle:    strings.TrimSpace(row.JobTitle),
			StartDate:   start,
			EndDate:     strings.TrimSpace(row.EndDate),
			Description: strings.TrimSpace(row.Description),
		})
	}

	for i, row := range in.Education {
		institution := strings.TrimSpace(row.Institution)
		if institution == "" {
			continue
		}
		graduated, ok := parseDate(row.GraduationDate)
		if !ok {
			problems = append(problems, fmt.Sprintf("Graduation date for education #%d must be in YYYY-MM-DD format.", i+1))
		}
		out.education = append(out.education, database.Education{
			Institution:    institution,
			Degree:         strings.TrimSpace(row.Degree),
			Major:          strings.TrimSpace(row.Major),
			GraduationDate: graduated,
		})
	}

	for _, row := range in.Skills {
		name := strings.TrimSpace(row.SkillName)
		if name == "" {
			continue
		}
		out.skills = append(out.skills, database.Skill{
			SkillName: name,
			SkillType: strings.TrimSpace(row.SkillType),
		})
	}

	for _, row := range in.Projects {
		title := strings.TrimSpace(row.ProjectTitle)
		if title == "" {
			continue
		}
		out.projects = append(out.projects, database.Project{
			ProjectTitle: title,
			ProjectURL:   strings.TrimSpace(row.ProjectURL),
			Technologies: strings.TrimSpace(row.Technologies),
			Description:  strings.TrimSpace(row.Description),
		})
	}

	return out, problems
}

func (c *children) attach(resumeID uint) {
	for i := range c.experiences {
		c.experiences[i].ResumeID = resumeID
	}
	for i := range c.education {
		c.education[i].ResumeID = resumeID
	}
	for i := range c.skills {
		c.skills[i].ResumeID = resumeID
	}
	for i := range c.projects {
		c.projects[i].ResumeID = resumeID
	}
}

// parseDate 空串返回 nil；格式不符返回 ok=false。
func parseDate(raw string) (*datatypes.Date, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	d := datatypes.Date(t)
	return &d, true
}
