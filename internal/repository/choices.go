package repository

import (
	"exam_system/internal/domain"

	"gorm.io/gorm"
)

// CreateChoice adds one choice to a question
func CreateChoice(tx *gorm.DB, questionID uint, in ChoiceInput) (*domain.Choice, error) {
	if err := required("choice_text", in.ChoiceText); err != nil {
		return nil, err
	}
	if err := checkSingleAnswer(tx, questionID, 0, in.IsCorrect); err != nil {
		return nil, err
	}
	choice := domain.Choice{ChoiceText: in.ChoiceText, IsCorrect: in.IsCorrect, QuestionID: questionID}
	if err := tx.Create(&choice).Error; err != nil {
		return nil, err
	}
	return &choice, nil
}

// GetChoice returns the choice of questionID or nil when absent
func GetChoice(tx *gorm.DB, questionID, choiceID uint) (*domain.Choice, error) {
	var choice domain.Choice
	return first(tx.Where("id = ? AND question_id = ?", choiceID, questionID), &choice)
}

// ListChoices returns the choices of a question, empty when it has none
func ListChoices(tx *gorm.DB, questionID uint) ([]domain.Choice, error) {
	choices := []domain.Choice{}
	if err := tx.Where("question_id = ?", questionID).Order("id").Find(&choices).Error; err != nil {
		return nil, err
	}
	return choices, nil
}

// UpdateChoice replaces text and correctness. It returns nil when the choice does not exist in questionID.
func UpdateChoice(tx *gorm.DB, questionID, choiceID uint, in ChoiceInput) (*domain.Choice, error) {
	if err := required("choice_text", in.ChoiceText); err != nil {
		return nil, err
	}
	choice, err := GetChoice(tx, questionID, choiceID)
	if err != nil || choice == nil {
		return nil, err
	}
	if err := checkSingleAnswer(tx, questionID, choiceID, in.IsCorrect); err != nil {
		return nil, err
	}
	choice.ChoiceText = in.ChoiceText
	choice.IsCorrect = in.IsCorrect
	if err := tx.Save(choice).Error; err != nil {
		return nil, err
	}
	return choice, nil
}

// DeleteChoice removes one choice. It returns false when absent.
func DeleteChoice(tx *gorm.DB, questionID, choiceID uint) (bool, error) {
	res := tx.Where("id = ? AND question_id = ?", choiceID, questionID).Delete(&domain.Choice{}) // Scoped to the parent
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil // Nothing deleted means absent
}

// checkSingleAnswer rejects a correct choice on a single-answer question that already has another
// correct choice. exceptID is the choice being replaced, zero on create.
func checkSingleAnswer(tx *gorm.DB, questionID, exceptID uint, correct bool) error {
	if !correct {
		return nil // Wrong answers never break the rule
	}
	var question domain.Question
	found, err := first(tx.Select("id", "is_multiple_choice").Where("id = ?", questionID), &question)
	if err != nil || found == nil || question.IsMultipleChoice {
		return err
	}
	var others int64
	err = tx.Model(&domain.Choice{}).
		Where("question_id = ? AND is_correct = ? AND id <> ?", questionID, true, exceptID).
		Count(&others).Error
	if err != nil {
		return err
	}
	if others > 0 {
		return &ValidationError{Field: "is_correct", Reason: "a single-answer question has exactly one correct choice"}
	}
	return nil
}
