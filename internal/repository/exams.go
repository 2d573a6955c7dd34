package repository

import (
	"exam_system/internal/domain"

	"gorm.io/gorm"
)

// ExamInput is the caller-supplied part of an exam
type ExamInput struct {
	Title       string
	Description string
}

// ExamSummary is an exam as listed, annotated with the number of its questions
type ExamSummary struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	OwnerID       uint   `json:"owner_id"`
	QuestionCount int64  `json:"question_count"`
}

// CreateExam stores a new exam owned by ownerID
func CreateExam(tx *gorm.DB, in ExamInput, ownerID uint) (*domain.Exam, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	exam := domain.Exam{Title: in.Title, Description: in.Description, OwnerID: ownerID}
	if err := tx.Create(&exam).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

// GetExam returns the exam or nil when absent
func GetExam(tx *gorm.DB, id uint) (*domain.Exam, error) {
	var exam domain.Exam
	return first(tx.Where("id = ?", id), &exam)
}

// ListExams returns every exam with its question count, restricted to ownerID when non-zero
func ListExams(tx *gorm.DB, ownerID uint) ([]ExamSummary, error) {
	var exams []domain.Exam
	q := tx.Order("id") // Stable listing order
	if ownerID != 0 {
		q = q.Where("owner_id = ?", ownerID)
	}
	if err := q.Find(&exams).Error; err != nil {
		return nil, err
	}

	out := make([]ExamSummary, 0, len(exams))
	if len(exams) == 0 {
		return out, nil
	}
	ids := make([]uint, len(exams))
	for i, e := range exams {
		ids[i] = e.ID
	}
	// One grouped query instead of a count per exam
	var counts []struct {
		ExamID uint
		Total  int64
	}
	err := tx.Model(&domain.Question{}).
		Select("exam_id, COUNT(*) AS total").
		Where("exam_id IN ?", ids).
		Group("exam_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byExam := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byExam[c.ExamID] = c.Total
	}

	for _, e := range exams {
		out = append(out, ExamSummary{
			ID:            e.ID,
			Title:         e.Title,
			Description:   e.Description,
			OwnerID:       e.OwnerID,
			QuestionCount: byExam[e.ID],
		})
	}
	return out, nil
}

// UpdateExam replaces title and description. It returns nil when the exam does not exist.
func UpdateExam(tx *gorm.DB, id uint, in ExamInput) (*domain.Exam, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	exam, err := GetExam(tx, id)
	if err != nil || exam == nil {
		return nil, err
	}
	exam.Title = in.Title
	exam.Description = in.Description
	if err := tx.Save(exam).Error; err != nil {
		return nil, err
	}
	return exam, nil
}

// DeleteExam removes the exam with its questions and their choices. It returns false when absent.
func DeleteExam(tx *gorm.DB, id uint) (bool, error) {
	exam, err := GetExam(tx, id)
	if err != nil || exam == nil {
		return false, err
	}
	plan, err := PlanExamCascade(tx, id) // Questions and their choices
	if err != nil {
		return false, err
	}
	return true, plan.Execute(tx)
}

// ExamOwner returns the owning user id of an exam, and false when the exam does not exist
func ExamOwner(tx *gorm.DB, examID uint) (uint, bool, error) {
	exam, err := GetExam(tx, examID)
	if err != nil || exam == nil {
		return 0, false, err
	}
	return exam.OwnerID, true, nil
}
