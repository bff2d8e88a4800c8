package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mautops/request-gin/internal/config"
	"github.com/mautops/request-gin/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestBuildDSN(t *testing.T) {
	pg := config.DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "requests", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=requests sslmode=disable", database.BuildDSN(pg))

	my := config.DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "requests"}
	assert.Equal(t, "u:p@tcp(db:3306)/requests?charset=utf8mb4&parseTime=True&loc=UTC", database.BuildDSN(my))

	lite := config.DatabaseConfig{Driver: "sqlite", DBName: ":memory:"}
	assert.Equal(t, ":memory:", database.BuildDSN(lite))
}

func TestDialector_Unsupported(t *testing.T) {
	_, err := database.Dialector(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

// TestMigrate_SQLite 测试 SQLite 下迁移与索引创建可重复执行
func TestMigrate_SQLite(t *testing.T) {
	db, err := database.Connect(config.DatabaseConfig{
		Driver:       "sqlite",
		DBName:       "file:migrate_test?mode=memory&cache=shared",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Migrate(db))

	for _, table := range []string{"requests", "users", "providers", "departments", "state_history", "events", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("requests", "idx_requests_user_created"))
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db, mock
}

func TestCheckHealth(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectPing()
	assert.NoError(t, database.CheckHealth(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, database.CheckHealth(context.Background(), db))

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Error(t, database.CheckHealth(context.Background(), nil))
}
