package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/mautops/request-gin/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DirectoryRepository 组织目录仓储
// 目录数据由外部维护,这里只做存在性校验、用户摘要同步和种子导入
type DirectoryRepository interface {
	FindDepartment(ctx context.Context, id string) (*model.DepartmentModel, error)
	ProviderExists(ctx context.Context, id string) (bool, error)
	UpsertUser(ctx context.Context, user *model.UserModel) error
	UpsertProvider(ctx context.Context, provider *model.ProviderModel) error
	UpsertDepartment(ctx context.Context, department *model.DepartmentModel) error
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository 创建目录仓储
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

// FindDepartment 查找部门
func (r *directoryRepository) FindDepartment(ctx context.Context, id string) (*model.DepartmentModel, error) {
	var dept model.DepartmentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dept).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find department: %w", err)
	}
	return &dept, nil
}

// ProviderExists 判断租户是否存在
func (r *directoryRepository) ProviderExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ProviderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check provider: %w", err)
	}
	return count > 0, nil
}

// UpsertUser 写入或更新用户摘要
func (r *directoryRepository) UpsertUser(ctx context.Context, user *model.UserModel) error {
	// 身份提供方没有给出的字段不覆盖已有值
	columns := []string{"role", "updated_at"}
	if user.Name != "" {
		columns = append(columns, "name")
	}
	if user.Email != "" {
		columns = append(columns, "email")
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(user).Error
}

// UpsertProvider 写入或更新租户
func (r *directoryRepository) UpsertProvider(ctx context.Context, provider *model.ProviderModel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(provider).Error
}

// UpsertDepartment 写入或更新部门
func (r *directoryRepository) UpsertDepartment(ctx context.Context, department *model.DepartmentModel) error {
	if err := department.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "provider_id", "updated_at"}),
	}).Create(department).Error
}
