package core

import "math"

// Score is an aggregate result over a set of questions.
type Score struct {
	Total      int `json:"total"`
	Correct    int `json:"correct"`
	Incorrect  int `json:"incorrect"`
	Percentage int `json:"percentage"` // 0-100
}

// NewScore computes incorrect and percentage from correct and total.
func NewScore(correct, total int) Score {
	return Score{
		Total:      total,
		Correct:    correct,
		Incorrect:  total - correct,
		Percentage: Percentage(correct, total),
	}
}

// Percentage returns round(correct / total * 100), rounding half away from zero, or 0 when total is 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
