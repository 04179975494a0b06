package models

import "time"

// Problem represents a lab experiment students submit solutions for. The
// grading engine treats it as read-only input; ownership and persistence live
// with the upstream lab service.
type Problem struct {
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	ExpectedOutput    string     `json:"expectedOutput"`
	Hints             []string   `json:"hints"`
	HelperLinks       []string   `json:"helperLinks"`
	MaxMarks          float64    `json:"maxMarks"`
	DueAt             *time.Time `json:"dueAt"`
	LatePenaltyPerDay *float64   `json:"latePenaltyPerDay"`
}
