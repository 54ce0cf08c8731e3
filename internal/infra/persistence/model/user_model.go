// Package model holds the GORM persistence models. They mirror the tables
// created by the migrations package and never leave the infra layer.
package model

import "time"

// UserModel mirrors the 'users' table. RefreshTokenHash is NULL while the
// user has no refresh session.
type UserModel struct {
	ID               uint64  `gorm:"primaryKey;autoIncrement"`
	Email            string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash     string  `gorm:"type:text;not null"`
	RefreshTokenHash *string `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
