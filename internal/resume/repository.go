package resume

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumedesk/internal/database"
)

// repository 封装简历聚合的 SQL；tx 为 nil 时使用默认连接。
type repository struct {
	db *gorm.DB
}

func newRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

func (r *repository) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx)
}

func (r *repository) listByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]database.Resume, error) {
	var resumes []database.Resume
	err := r.conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&resumes).Error
	return resumes, err
}

// findOwned 同时按 id 与 user_id 过滤，不存在与无权访问都返回 gorm.ErrRecordNotFound。
func (r *repository) findOwned(ctx context.Context, tx *gorm.DB, resumeID, userID uint) (*database.Resume, error) {
	var res database.Resume
	if err := r.conn(ctx, tx).
		Where("id = ? AND user_id = ?", resumeID, userID).
		Take(&res).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *repository) createResume(ctx context.Context, tx *gorm.DB, res *database.Resume) error {
	return r.conn(ctx, tx).Create(res).Error
}

func (r *repository) updateResume(ctx context.Context, tx *gorm.DB, res *database.Resume) error {
	return r.conn(ctx, tx).
		Model(&database.Resume{}).
		Where("id = ? AND user_id = ?", res.ID, res.UserID).
		Updates(map[string]any{
			"resume_name": res.ResumeName,
			"summary":     res.Summary,
		}).Error
}

// findProfile 返回 nil, nil 表示用户还没有资料行。
func (r *repository) findProfile(ctx context.Context, tx *gorm.DB, userID uint) (*database.UserProfile, error) {
	var profiles []database.UserProfile
	if err := r.conn(ctx, tx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

func (r *repository) upsertProfile(ctx context.Context, tx *gorm.DB, p *database.UserProfile) error {
	return r.conn(ctx, tx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "phone", "linkedin_url",
			"github_url", "website_url", "address", "updated_at",
		}),
	}).Create(p).Error
}

func (r *repository) loadChildren(ctx context.Context, tx *gorm.DB, agg *Aggregate) error {
	db := r.conn(ctx, tx)
	resumeID := agg.Resume.ID

	if err := db.Where("resume_id = ?", resumeID).
		Order("start_date IS NULL").
		Order("start_date DESC").
		Order("id").
		Find(&agg.Experiences).Error; err != nil {
		return err
	}
	if err := db.Where("resume_id = ?", resumeID).
		Order("graduation_date IS NULL").
		Order("graduation_date DESC").
		Order("id").
		Find(&agg.Education).Error; err != nil {
		return err
	}
	if err := db.Where("resume_id = ?", resumeID).
		Order("skill_type").
		Order("skill_name").
		Order("id").
		Find(&agg.Skills).Error; err != nil {
		return err
	}
	return db.Where("resume_id = ?", resumeID).
		Order("id DESC").
		Find(&agg.Projects).Error
}

// replaceChildren 先删除再插入，子集合采用整体替换语义。
func (r *repository) replaceChildren(ctx context.Context, tx *gorm.DB, resumeID uint, c children) error {
	if err := r.deleteChildren(ctx, tx, resumeID); err != nil {
		return err
	}
	db := r.conn(ctx, tx)
	if len(c.experiences) > 0 {
		if err := db.Create(&c.experiences).Error; err != nil {
			return err
		}
	}
	if len(c.education) > 0 {
		if err := db.Create(&c.education).Error; err != nil {
			return err
		}
	}
	if len(c.skills) > 0 {
		if err := db.Create(&c.skills).Error; err != nil {
			return err
		}
	}
	if len(c.projects) > 0 {
		if err := db.Create(&c.projects).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) deleteChildren(ctx context.Context, tx *gorm.DB, resumeID uint) error {
	db := r.conn(ctx, tx)
	for _, model := range []any{
		&database.Experience{},
		&database.Education{},
		&database.Skill{},
		&database.Project{},
	} {
		if err := db.Where("resume_id = ?", resumeID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) deleteResume(ctx context.Context, tx *gorm.DB, resumeID, userID uint) (int64, error) {
	result := r.conn(ctx, tx).
		Where("id = ? AND user_id = ?", resumeID, userID).
		Delete(&database.Resume{})
	return result.RowsAffected, result.Error
}

func (r *repository) updateArchive(ctx context.Context, tx *gorm.DB, resumeID, userID uint, fields map[string]any) (int64, error) {
	result := r.conn(ctx, tx).
		Model(&database.Resume{}).
		Where("id = ? AND user_id = ?", resumeID, userID).
		Updates(fields)
	return result.RowsAffected, result.Error
}
