package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/shopops/internal/logger"
	"github.com/example/shopops/internal/models"
)

// EnsureAdmin creates the bootstrap admin account when no user has email yet.
// An existing account is left untouched.
func EnsureAdmin(ctx context.Context, db *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := models.User{
		Email:    email,
		FullName: "Quản trị viên",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}

	logger.App().WithField("email", email).Info("[Auth] bootstrap admin created")
	return nil
}
