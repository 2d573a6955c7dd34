package repository

import (
	"exam_system/internal/domain"
	"fmt"

	"gorm.io/gorm"
)

// CascadePlan lists every row removed by deleting a root entity, per level of the
// User -> Exam -> Question -> Choice ownership tree. Plans are built top-down by
// following foreign keys and executed bottom-up, so no child outlives its parent.
type CascadePlan struct {
	UserIDs     []uint
	ExamIDs     []uint
	QuestionIDs []uint
	ChoiceIDs   []uint
}

// CascadeStep is one delete statement of a plan
type CascadeStep struct {
	Table string
	Model any
	IDs   []uint
}

// PlanUserCascade plans the removal of users and everything they own
func PlanUserCascade(tx *gorm.DB, userIDs ...uint) (*CascadePlan, error) {
	plan := &CascadePlan{UserIDs: userIDs}
	examIDs, err := childIDs(tx, &domain.Exam{}, "owner_id", userIDs)
	if err != nil {
		return nil, err
	}
	return plan, plan.addExams(tx, examIDs)
}

// PlanExamCascade plans the removal of exams with their questions and choices
func PlanExamCascade(tx *gorm.DB, examIDs ...uint) (*CascadePlan, error) {
	plan := &CascadePlan{}
	return plan, plan.addExams(tx, examIDs)
}

// PlanQuestionCascade plans the removal of questions with their choices
func PlanQuestionCascade(tx *gorm.DB, questionIDs ...uint) (*CascadePlan, error) {
	plan := &CascadePlan{}
	return plan, plan.addQuestions(tx, questionIDs)
}

func (p *CascadePlan) addExams(tx *gorm.DB, examIDs []uint) error {
	p.ExamIDs = append(p.ExamIDs, examIDs...)
	questionIDs, err := childIDs(tx, &domain.Question{}, "exam_id", examIDs)
	if err != nil {
		return err
	}
	return p.addQuestions(tx, questionIDs)
}

func (p *CascadePlan) addQuestions(tx *gorm.DB, questionIDs []uint) error {
	p.QuestionIDs = append(p.QuestionIDs, questionIDs...)
	choiceIDs, err := childIDs(tx, &domain.Choice{}, "question_id", questionIDs)
	if err != nil {
		return err
	}
	p.ChoiceIDs = append(p.ChoiceIDs, choiceIDs...)
	return nil
}

// Steps returns the delete statements leaf-first, skipping empty levels
func (p *CascadePlan) Steps() []CascadeStep {
	all := []CascadeStep{
		{Table: "choices", Model: &domain.Choice{}, IDs: p.ChoiceIDs},
		{Table: "questions", Model: &domain.Question{}, IDs: p.QuestionIDs},
		{Table: "exams", Model: &domain.Exam{}, IDs: p.ExamIDs},
		{Table: "users", Model: &domain.User{}, IDs: p.UserIDs},
	}
	steps := all[:0]
	for _, s := range all {
		if len(s.IDs) > 0 {
			steps = append(steps, s)
		}
	}
	return steps
}

// Execute runs the plan atomically
func (p *CascadePlan) Execute(tx *gorm.DB) error {
	steps := p.Steps()
	if len(steps) == 0 {
		return nil
	}
	return tx.Transaction(func(tx *gorm.DB) error {
		for _, s := range steps {
			if err := tx.Where("id IN ?", s.IDs).Delete(s.Model).Error; err != nil {
				return fmt.Errorf("delete %s: %w", s.Table, err)
			}
		}
		return nil
	})
}

func childIDs(tx *gorm.DB, model any, parentColumn string, parentIDs []uint) ([]uint, error) {
	var ids []uint
	if len(parentIDs) == 0 {
		return ids, nil
	}
	err := tx.Model(model).Where(parentColumn+" IN ?", parentIDs).Order("id").Pluck("id", &ids).Error
	return ids, err
}
