package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("session snapshot not found")

// SessionRecord is the durable snapshot of one profile's session.
type SessionRecord struct {
	Profile   string `gorm:"primaryKey;size:128"`
	UserID    string `gorm:"not null"`
	Name      string
	Email     string
	Role      string
	Approval  string
	Token     string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SessionRecord) TableName() string {
	return "client_sessions"
}

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) Migrate(ctx context.Context) error {
	return r.DB.WithContext(ctx).AutoMigrate(&SessionRecord{})
}

// Load returns the stored snapshot as-is; callers must validate it.
func (r *GormRepo) Load(ctx context.Context, profile string) (*models.Session, error) {
	var rec SessionRecord
	err := r.DB.WithContext(ctx).Where("profile = ?", profile).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.Session{
		UserID:    rec.UserID,
		Name:      rec.Name,
		Email:     rec.Email,
		Role:      models.Role(rec.Role),
		Approval:  models.ApprovalStatus(rec.Approval),
		Token:     rec.Token,
		CreatedAt: rec.CreatedAt,
	}, nil
}

func (r *GormRepo) Save(ctx context.Context, profile string, s *models.Session) error {
	rec := SessionRecord{
		Profile:  profile,
		UserID:   s.UserID,
		Name:     s.Name,
		Email:    s.Email,
		Role:     string(s.Role),
		Approval: string(s.Approval),
		Token:    s.Token,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "name", "email", "role", "approval", "token", "updated_at"}),
	}).Create(&rec).Error
}

func (r *GormRepo) Delete(ctx context.Context, profile string) error {
	return r.DB.WithContext(ctx).Where("profile = ?", profile).Delete(&SessionRecord{}).Error
}
