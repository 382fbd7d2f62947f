// Package scoring holds the pure scoring rules shared by submission finalization and grading.
package scoring

import (
	"math"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

// Result is the aggregate of a scored submission.
type Result struct {
	Score       float64 `json:"score"`
	TotalPoints float64 `json:"total_points"`
	Percentage  int     `json:"percentage"`
}

// TotalPoints is the sum of max scores over questions.
func TotalPoints(questions []models.Question) float64 {
	var total float64
	for _, q := range questions {
		total += q.MaxScore
	}
	return total
}

// ScoreAnswer scores a single answer. ok is false when the question kind
// is never auto-scored and the caller must leave the slot for a human grader.
func ScoreAnswer(q models.Question, answerText string) (score float64, ok bool) {
	switch body := q.Body.(type) {
	case models.MultipleChoice:
		if answerText == body.CorrectAnswer {
			return q.MaxScore, true
		}
		return 0, true
	case models.OpenEnded:
		return 0, false
	default:
		return 0, false
	}
}

// Autograde returns a copy of answers with every MCQ slot scored and marked graded.
// Open-question slots keep whatever a grader assigned.
func Autograde(questions []models.Question, answers []models.Answer) []models.Answer {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	graded := make([]models.Answer, len(answers))
	copy(graded, answers)
	for i := range graded {
		q, found := byID[graded[i].QuestionID]
		if !found {
			continue
		}
		if score, ok := ScoreAnswer(q, graded[i].AnswerText); ok {
			graded[i].Score = score
			graded[i].Graded = true
		}
	}
	return graded
}

// Sum adds up answer scores.
func Sum(answers []models.Answer) float64 {
	var sum float64
	for _, a := range answers {
		sum += a.Score
	}
	return sum
}

// Percentage is round(score/total*100), or 0 when total is not positive.
func Percentage(score, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(score / total * 100))
}

// Clamp bounds a manual score to [0, maxScore].
func Clamp(score, maxScore float64) float64 {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

// Summarize aggregates answers against the exam's total points.
func Summarize(totalPoints float64, answers []models.Answer) Result {
	score := Sum(answers)
	return Result{
		Score:       score,
		TotalPoints: totalPoints,
		Percentage:  Percentage(score, totalPoints),
	}
}
