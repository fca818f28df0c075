package domain

type Verdict string

const (
	VerdictExcellent Verdict = "excellent"
	VerdictAlmost    Verdict = "almost"
	VerdictRetry     Verdict = "retry"
)

// Assessment is the outcome of comparing a spoken attempt with the phrase
// the speaker was asked to say. Score is in the range [0, 100].
type Assessment struct {
	Expected   string  `json:"expected"`
	Transcript string  `json:"transcript"`
	Score      float64 `json:"score"`
	Verdict    Verdict `json:"verdict"`
}

// Message renders the verdict the way it is shown to a learner.
func (v Verdict) Message() string {
	switch v {
	case VerdictExcellent:
		return "Excellent!"
	case VerdictAlmost:
		return "Almost correct. Try again!"
	default:
		return "Not quite right. Speak clearly and try again."
	}
}
