package repository

import (
	"exam_system/internal/domain"
	"fmt"

	"gorm.io/gorm"
)

// ChoiceInput is the caller-supplied part of a choice
type ChoiceInput struct {
	ChoiceText string
	IsCorrect  bool
}

// QuestionInput is the caller-supplied part of a question, including its full choice set
type QuestionInput struct {
	QuestionText     string
	IsMultipleChoice bool
	ImagePath        *string
	Choices          []ChoiceInput
}

// CreateQuestion stores a question under examID together with all of its choices
func CreateQuestion(tx *gorm.DB, examID uint, in QuestionInput) (*domain.Question, error) {
	if err := validateQuestion(in); err != nil {
		return nil, err
	}
	question := domain.Question{
		QuestionText:     in.QuestionText,
		ExamID:           examID,
		IsMultipleChoice: in.IsMultipleChoice,
		ImagePath:        in.ImagePath,
	}
	err := tx.Transaction(func(tx *gorm.DB) error { // Savepoint inside the request transaction
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		choices, err := insertChoices(tx, question.ID, in.Choices)
		question.Choices = choices
		return err
	})
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetQuestion returns the question of examID with its choices, or nil when absent
func GetQuestion(tx *gorm.DB, examID, questionID uint) (*domain.Question, error) {
	var question domain.Question
	q := tx.Preload("Choices", orderByID).Where("id = ? AND exam_id = ?", questionID, examID)
	found, err := first(q, &question)
	if found != nil && found.Choices == nil {
		found.Choices = []domain.Choice{} // Serialize as [] rather than null
	}
	return found, err
}

// ListQuestions returns the questions of an exam with their choices. An exam without questions yields an empty slice.
func ListQuestions(tx *gorm.DB, examID uint) ([]domain.Question, error) {
	questions := []domain.Question{}
	err := tx.Preload("Choices", orderByID).
		Where("exam_id = ?", examID).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].Choices == nil {
			questions[i].Choices = []domain.Choice{}
		}
	}
	return questions, nil
}

// UpdateQuestion replaces the question fields and its entire choice set: every existing choice is
// deleted and the supplied ones inserted. It returns nil when the question does not exist in examID.
func UpdateQuestion(tx *gorm.DB, examID, questionID uint, in QuestionInput) (*domain.Question, error) {
	if err := validateQuestion(in); err != nil {
		return nil, err
	}
	question, err := GetQuestion(tx, examID, questionID)
	if err != nil || question == nil {
		return nil, err
	}
	err = tx.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Question{}).Where("id = ?", questionID).Updates(map[string]any{
			"question_text":      in.QuestionText,
			"is_multiple_choice": in.IsMultipleChoice,
			"image_path":         in.ImagePath, // nil clears the image
		}).Error
		if err != nil {
			return err
		}
		// The new set replaces every existing choice
		if err := tx.Where("question_id = ?", questionID).Delete(&domain.Choice{}).Error; err != nil {
			return err
		}
		choices, err := insertChoices(tx, questionID, in.Choices)
		question.Choices = choices
		return err
	})
	if err != nil {
		return nil, err
	}
	question.QuestionText = in.QuestionText
	question.IsMultipleChoice = in.IsMultipleChoice
	question.ImagePath = in.ImagePath
	return question, nil
}

// DeleteQuestion removes the question of examID and its choices. It returns false when absent.
func DeleteQuestion(tx *gorm.DB, examID, questionID uint) (bool, error) {
	question, err := GetQuestion(tx, examID, questionID)
	if err != nil || question == nil {
		return false, err
	}
	plan, err := PlanQuestionCascade(tx, questionID)
	if err != nil {
		return false, err
	}
	return true, plan.Execute(tx)
}

// QuestionInExam reports whether questionID exists and belongs to examID
func QuestionInExam(tx *gorm.DB, examID, questionID uint) (bool, error) {
	var n int64
	err := tx.Model(&domain.Question{}).Where("id = ? AND exam_id = ?", questionID, examID).Count(&n).Error
	return n > 0, err
}

func insertChoices(tx *gorm.DB, questionID uint, in []ChoiceInput) ([]domain.Choice, error) {
	choices := make([]domain.Choice, len(in))
	for i, c := range in {
		choices[i] = domain.Choice{ChoiceText: c.ChoiceText, IsCorrect: c.IsCorrect, QuestionID: questionID}
	}
	if len(choices) == 0 {
		return choices, nil
	}
	if err := tx.Create(&choices).Error; err != nil {
		return nil, err
	}
	return choices, nil
}

// validateQuestion checks the text fields and the correct-answer rule: at least one correct
// choice, and exactly one for a single-answer question.
func validateQuestion(in QuestionInput) error {
	if err := required("question_text", in.QuestionText); err != nil {
		return err
	}
	if len(in.Choices) == 0 {
		return &ValidationError{Field: "choices", Reason: "at least one choice is required"}
	}
	correct := 0
	for i, c := range in.Choices {
		if err := required(fmt.Sprintf("choices[%d].choice_text", i), c.ChoiceText); err != nil {
			return err
		}
		if c.IsCorrect {
			correct++
		}
	}
	if correct == 0 {
		return &ValidationError{Field: "choices", Reason: "at least one choice must be correct"}
	}
	if !in.IsMultipleChoice && correct > 1 {
		return &ValidationError{Field: "choices", Reason: "a single-answer question has exactly one correct choice"}
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
