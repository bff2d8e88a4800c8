// Package testutil 测试辅助工具
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mautops/request-gin/internal/database"
	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/types"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB 创建迁移完成的内存 SQLite 数据库
// 每个测试使用独立的库,连接数限制为 1 以保证所有查询落在同一个内存库上
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// SeedDirectory 写入一组用户、租户和部门
func SeedDirectory(t *testing.T, db *gorm.DB) {
	t.Helper()

	now := time.Now()
	require.NoError(t, db.Create(&model.ProviderModel{ID: "prov-1", Name: "Acme Utilities", CreatedAt: now, UpdatedAt: now}).Error)
	require.NoError(t, db.Create(&model.DepartmentModel{ID: "dept-1", Name: "Operations", ProviderID: "prov-1", CreatedAt: now, UpdatedAt: now}).Error)

	users := []model.UserModel{
		{ID: "u1", Name: "User One", Email: "u1@example.com", Role: types.RoleUser},
		{ID: "u2", Name: "User Two", Email: "u2@example.com", Role: types.RoleUser},
		{ID: "admin", Name: "Admin", Email: "admin@example.com", Role: types.RoleAdmin},
		{ID: "root", Name: "Super Admin", Email: "root@example.com", Role: types.RoleSuperadmin},
	}
	for i := range users {
		users[i].CreatedAt = now
		users[i].UpdatedAt = now
		require.NoError(t, db.Create(&users[i]).Error)
	}
}

// Principal 构造测试用调用者
func Principal(id string, role types.Role) types.Principal {
	return types.Principal{ID: id, Role: role}
}

// Date 构造 UTC 日期
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
