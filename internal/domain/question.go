package domain

// Question Model
type Question struct {
	ID               uint     `gorm:"primaryKey" json:"id"`                                                               // Primary key
	QuestionText     string   `gorm:"type:text;not null" json:"question_text"`                                            // Non-empty prompt
	ExamID           uint     `gorm:"index;not null" json:"exam_id"`                                                      // Foreign key to Exam
	IsMultipleChoice bool     `gorm:"not null;default:false" json:"is_multiple_choice"`                                   // More than one correct choice allowed
	ImagePath        *string  `gorm:"size:255" json:"image_path"`                                                         // Stored name of an uploaded image
	Choices          []Choice `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"choices"` // Owned choices
}

// Choice Model
type Choice struct {
	ID         uint   `gorm:"primaryKey" json:"id"`                     // Primary key
	ChoiceText string `gorm:"type:text;not null" json:"choice_text"`    // Non-empty answer text
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"` // Correctness flag
	QuestionID uint   `gorm:"index;not null" json:"question_id"`        // Foreign key to Question
}
