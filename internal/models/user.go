package models

import (
	"time"
)

// User is a registered account. IsStaff grants edit rights on every recipe.
type User struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"size:150;not null;index:idx_users_username,unique"`
	Email     string `gorm:"size:254;not null;index:idx_users_email,unique"`
	FirstName string `gorm:"size:150;not null"`
	LastName  string `gorm:"size:150;not null"`
	Password  string `gorm:"size:128;not null"`
	Avatar    JSON[ImageRef]
	IsStaff   bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subscription records that User follows Author.
type Subscription struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"not null;index:idx_subscriptions_pair,unique;check:chk_subscriptions_not_self,user_id <> author_id"`
	AuthorID  uint64 `gorm:"not null;index:idx_subscriptions_pair,unique;index"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Author    User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// AuthToken is an issued API token. Deleting the row revokes it.
type AuthToken struct {
	ID        string `gorm:"type:char(36);primaryKey"`
	UserID    uint64 `gorm:"not null;index"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}

// TableName overrides the table name for AuthToken
func (AuthToken) TableName() string {
	return "auth_tokens"
}
