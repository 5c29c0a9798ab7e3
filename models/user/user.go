package user

import (
	"time"

	"gorm.io/gorm"
)

// User model for local accounts. Role gating happens in middleware; the
// role values live in the constants package.
type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid         string  `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	FullName     string  `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string  `gorm:"type:varchar(255);not null;unique" json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'MEMBER'" json:"role"`
	Phone        *string `gorm:"type:varchar(20)" json:"phone,omitempty"`
	Active       bool    `gorm:"type:bool;default:true" json:"active"`

	DepartmentID *uint `gorm:"index" json:"department_id,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
