package models

type UserStatus string

const (
	UserStatusPending  UserStatus = "pending-verification"
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password         string     `gorm:"size:60;not null" json:"-"`
	Firstname        string     `gorm:"size:80" json:"firstname"`
	Lastname         string     `gorm:"size:80" json:"lastname"`
	Avatar           string     `gorm:"size:255" json:"avatar"`
	Status           UserStatus `gorm:"size:32;not null;default:'pending-verification'" json:"status"`
	VerificationCode string     `gorm:"size:40;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

func (u *User) IsDisabled() bool {
	return u.Status == UserStatusDisabled
}
