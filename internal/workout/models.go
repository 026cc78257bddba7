package workout

import "time"

// Session is one workout instance. Active until EndTime is set by the
// complete mutation; read-only thereafter. The server permits at most one
// active session per user (last-start-wins), so the client treats the latest
// session as the sole mutable target and never assumes more than that.
type Session struct {
	ID          string          `json:"id"`
	ProgramID   string          `json:"programId,omitempty"`
	ProgramName string          `json:"programName,omitempty"`
	StartTime   time.Time       `json:"startTime"`
	EndTime     *time.Time      `json:"endTime,omitempty"`
	Exercises   []ExerciseEntry `json:"exercises"`
}

// Completed reports whether the session has been finished.
func (s *Session) Completed() bool {
	return s != nil && s.EndTime != nil
}

// Elapsed is the in-memory elapsed time of an active session. Never
// persisted: a restart recomputes it from the server's StartTime.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s == nil || s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// Entry returns the exercise entry for the given catalog exercise id, nil if
// the session has none.
func (s *Session) Entry(exerciseID string) *ExerciseEntry {
	if s == nil {
		return nil
	}
	for i := range s.Exercises {
		if s.Exercises[i].ExerciseID == exerciseID {
			return &s.Exercises[i]
		}
	}
	return nil
}

// SetCount returns the number of sets logged for the given exercise.
func (s *Session) SetCount(exerciseID string) int {
	entry := s.Entry(exerciseID)
	if entry == nil {
		return 0
	}
	return len(entry.Sets)
}

// ExerciseEntry is one exercise's occurrence within a session. Entries are
// never deleted by this client.
type ExerciseEntry struct {
	ID          string `json:"id"`
	ExerciseID  string `json:"exerciseId"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup,omitempty"`
	Order       int    `json:"order"`
	Sets        []Set  `json:"sets"`
}

// Set is one logged attempt (weight x reps). Created zero-valued by the add
// mutation, mutated in place by the update mutation, never deleted.
type Set struct {
	ID          string  `json:"id"`
	Weight      float64 `json:"weight"`
	Reps        int     `json:"reps"`
	IsCompleted bool    `json:"isCompleted"`
	Order       int     `json:"order"`
}
