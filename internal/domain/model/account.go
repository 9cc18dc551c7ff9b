package model

import "time"

const RoleAdmin = "admin"

// User 账号记录（由外部身份模块写入，这里只读计数）
type User struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	Email         string    `gorm:"column:email;size:255;uniqueIndex" json:"email"`
	Name          string    `gorm:"column:name;size:100" json:"name"`
	Role          string    `gorm:"column:role;size:32;index" json:"role"`
	IsActive      bool      `gorm:"column:is_active;index" json:"isActive"`
	EmailVerified bool      `gorm:"column:email_verified" json:"emailVerified"`
	CreatedAt     time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

func (User) TableName() string { return "users" }

// Session expires_at > now 视为活跃
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;index" json:"userId"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expiresAt"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (Session) TableName() string { return "sessions" }
