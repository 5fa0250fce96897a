package quiz

type Option struct {
	ID        int    `json:"id"` // position among the split parts of its block, not among emitted options
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []Option `json:"options"`
}

type DropReason string

const (
	ReasonNoQuestionText DropReason = "no_question_text"
	ReasonNoOptions      DropReason = "no_options"
)

// Diagnostic describes a question block that produced no Question.
type Diagnostic struct {
	Block  int        `json:"block"` // 1-based index among all split blocks
	Reason DropReason `json:"reason"`
}

type Report struct {
	Questions []Question   `json:"questions"`
	Dropped   []Diagnostic `json:"dropped"`
}
