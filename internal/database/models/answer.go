package models

type Answer struct {
	Base
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	BestAnswer bool   `gorm:"not null;default:false" json:"best_answer"`
	Body       string `gorm:"type:text;not null" json:"body"`

	// Relationships
	Question *Question `gorm:"foreignKey:QuestionID" json:"-"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}
