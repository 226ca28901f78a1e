package models

import (
	"fmt"
	"strings"
)

// TaskStatus defines allowed lifecycle states for tasks.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
)

const (
	PriorityMin     = 1
	PriorityMax     = 4
	DefaultPriority = 2
)

// Difficulty tags a task with how hard it felt. Settable at any time,
// independent of status.
type Difficulty string

const (
	DifficultyBreeze    Difficulty = "😌"
	DifficultyEasy      Difficulty = "🙂"
	DifficultySweaty    Difficulty = "😅"
	DifficultyStressful Difficulty = "😰"
	DifficultyBrutal    Difficulty = "🤯"
)

// Mood tags how finishing a task felt.
type Mood string

const (
	MoodTriumphant Mood = "🎉"
	MoodContent    Mood = "😊"
	MoodNeutral    Mood = "😐"
	MoodRelieved   Mood = "😮‍💨"
	MoodDrained    Mood = "😫"
)

var validTaskStatuses = map[TaskStatus]struct{}{
	StatusTodo:       {},
	StatusInProgress: {},
	StatusBlocked:    {},
	StatusDone:       {},
}

var validDifficulties = map[Difficulty]struct{}{
	DifficultyBreeze:    {},
	DifficultyEasy:      {},
	DifficultySweaty:    {},
	DifficultyStressful: {},
	DifficultyBrutal:    {},
}

var validMoods = map[Mood]struct{}{
	MoodTriumphant: {},
	MoodContent:    {},
	MoodNeutral:    {},
	MoodRelieved:   {},
	MoodDrained:    {},
}

func IsValidTaskStatus(status TaskStatus) bool {
	_, ok := validTaskStatuses[status]
	return ok
}

func IsValidPriority(value int) bool {
	return value >= PriorityMin && value <= PriorityMax
}

func IsValidDifficulty(value Difficulty) bool {
	_, ok := validDifficulties[value]
	return ok
}

func IsValidMood(value Mood) bool {
	_, ok := validMoods[value]
	return ok
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	value := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidTaskStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}

func ParseDifficulty(raw string) (Difficulty, error) {
	value := Difficulty(strings.TrimSpace(raw))
	if value == "" {
		return "", fmt.Errorf("difficulty is required")
	}
	if !IsValidDifficulty(value) {
		return "", fmt.Errorf("invalid difficulty: %s", value)
	}
	return value, nil
}

func ParseMood(raw string) (Mood, error) {
	value := Mood(strings.TrimSpace(raw))
	if value == "" {
		return "", fmt.Errorf("mood is required")
	}
	if !IsValidMood(value) {
		return "", fmt.Errorf("invalid mood: %s", value)
	}
	return value, nil
}

// TaskStatusStrings returns every allowed status value, for help text
// and validation messages.
func TaskStatusStrings() []string {
	return []string{
		string(StatusTodo),
		string(StatusInProgress),
		string(StatusBlocked),
		string(StatusDone),
	}
}
