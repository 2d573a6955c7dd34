package domain

// Exam Model
type Exam struct {
	ID          uint       `gorm:"primaryKey" json:"id"`                                                                       // Primary key
	Title       string     `gorm:"size:255;not null" json:"title"`                                                             // Non-empty title
	Description string     `gorm:"type:text" json:"description"`                                                               // Free text
	OwnerID     uint       `gorm:"index;not null" json:"owner_id"`                                                             // Foreign key to User
	Questions   []Question `gorm:"foreignKey:ExamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"questions,omitempty"` // Owned questions
}
