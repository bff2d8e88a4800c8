// Package seed 从 YAML 文件导入组织目录
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mautops/request-gin/internal/model"
	"github.com/mautops/request-gin/internal/repository"
	"github.com/mautops/request-gin/internal/types"
	"github.com/mautops/request-gin/internal/utils"
	"gopkg.in/yaml.v3"
)

// Directory 目录文件内容
type Directory struct {
	Providers   []Provider   `yaml:"providers"`
	Departments []Department `yaml:"departments"`
	Users       []User       `yaml:"users"`
}

// Provider 租户
type Provider struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Department 部门
type Department struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	ProviderID string `yaml:"providerId"`
}

// User 用户摘要
type User struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Role  string `yaml:"role"`
}

// Result 导入结果
type Result struct {
	Providers   int
	Departments int
	Users       int
}

// LoadFile 读取目录文件
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode 解析目录内容,未知字段视为错误
func Decode(r io.Reader) (*Directory, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var dir Directory
	if err := dec.Decode(&dir); err != nil {
		if errors.Is(err, io.EOF) {
			return &dir, nil
		}
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}
	if err := dir.Validate(); err != nil {
		return nil, err
	}
	return &dir, nil
}

// Validate 校验 ID 格式、角色以及部门引用的租户
func (d *Directory) Validate() error {
	providers := make(map[string]bool, len(d.Providers))
	for i, p := range d.Providers {
		if err := utils.ValidateID(p.ID); err != nil {
			return fmt.Errorf("providers[%d]: %w", i, err)
		}
		if p.Name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		providers[p.ID] = true
	}

	for i, dept := range d.Departments {
		if err := utils.ValidateID(dept.ID); err != nil {
			return fmt.Errorf("departments[%d]: %w", i, err)
		}
		if dept.Name == "" {
			return fmt.Errorf("departments[%d]: name is required", i)
		}
		if !providers[dept.ProviderID] {
			return fmt.Errorf("departments[%d]: provider %q is not defined in this file", i, dept.ProviderID)
		}
	}

	for i, u := range d.Users {
		if err := utils.ValidateID(u.ID); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
		if _, err := types.ParseRole(u.Role); err != nil {
			return fmt.Errorf("users[%d]: %w", i, err)
		}
	}
	return nil
}

// Apply 写入目录,已存在的记录会被更新
func Apply(ctx context.Context, repo repository.DirectoryRepository, dir *Directory) (*Result, error) {
	now := time.Now()
	result := &Result{}

	for _, p := range dir.Providers {
		if err := repo.UpsertProvider(ctx, &model.ProviderModel{ID: p.ID, Name: p.Name, CreatedAt: now, UpdatedAt: now}); err != nil {
			return result, fmt.Errorf("provider %s: %w", p.ID, err)
		}
		result.Providers++
	}

	for _, dept := range dir.Departments {
		if err := repo.UpsertDepartment(ctx, &model.DepartmentModel{
			ID:         dept.ID,
			Name:       dept.Name,
			ProviderID: dept.ProviderID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			return result, fmt.Errorf("department %s: %w", dept.ID, err)
		}
		result.Departments++
	}

	for _, u := range dir.Users {
		role, _ := types.ParseRole(u.Role)
		if err := repo.UpsertUser(ctx, &model.UserModel{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return result, fmt.Errorf("user %s: %w", u.ID, err)
		}
		result.Users++
	}

	return result, nil
}
