package models

type Question struct {
	Base
	ChannelID uint   `gorm:"not null;index" json:"channel_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Slug      string `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title     string `gorm:"size:255;not null" json:"title"`
	Body      string `gorm:"type:text;not null" json:"body"`

	// Relationships
	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}
