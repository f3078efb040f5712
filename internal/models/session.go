package models

import "time"

type SessionState string

const (
	SessionCreated    SessionState = "CREATED"
	SessionInProgress SessionState = "IN_PROGRESS"
	SessionCompleted  SessionState = "COMPLETED"
)

type ReviewSession struct {
	ID              string         `json:"id"`
	UserID          int64          `json:"user_id"`
	Scope           Scope          `json:"scope"`
	Items           []int64        `json:"items"`
	Answers         []ReviewAnswer `json:"answers"`
	State           SessionState   `json:"state"`
	CorrectAnswers  int            `json:"correct_answers"`
	TotalAnswers    int            `json:"total_answers"`
	DurationSeconds int            `json:"duration_seconds"`
	Results         []WordResult   `json:"results,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

// ReviewAnswer is one recorded outcome. Answers are append-only.
type ReviewAnswer struct {
	WordID         int64     `json:"word_id"`
	IsCorrect      bool      `json:"is_correct"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// WordResult is the committed schedule of one word after finalize.
type WordResult struct {
	WordID       int64     `json:"word_id"`
	Status       Status    `json:"status"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// FinalizeResult is returned by every finalize call for a session, including retries.
type FinalizeResult struct {
	SessionID     string       `json:"session_id"`
	Accuracy      float64      `json:"accuracy"`
	PerWordStates []WordResult `json:"per_word_states"`
}

func (s *ReviewSession) Contains(wordID int64) bool {
	for _, id := range s.Items {
		if id == wordID {
			return true
		}
	}
	return false
}

// FirstAnswers returns the first recorded answer per word, in batch order.
// Later answers to the same word stay in the log but do not affect scheduling.
func (s *ReviewSession) FirstAnswers() []ReviewAnswer {
	first := make(map[int64]ReviewAnswer, len(s.Answers))
	for _, a := range s.Answers {
		if _, seen := first[a.WordID]; !seen {
			first[a.WordID] = a
		}
	}
	out := make([]ReviewAnswer, 0, len(first))
	for _, id := range s.Items {
		if a, ok := first[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Accuracy is correct/total, or zero when nothing was answered.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

func (s *ReviewSession) Result() FinalizeResult {
	return FinalizeResult{
		SessionID:     s.ID,
		Accuracy:      Accuracy(s.CorrectAnswers, s.TotalAnswers),
		PerWordStates: s.Results,
	}
}
