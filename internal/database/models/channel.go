package models

type Channel struct {
	Base
	Name    string `gorm:"size:80;not null" json:"name"`
	BgColor string `gorm:"size:40" json:"bg_color"`
}

func (Channel) TableName() string {
	return "channels"
}
