package models

import (
	"encoding/json"
	"fmt"
)

type QuestionKind string

const (
	QuestionKindMCQ  QuestionKind = "mcq"
	QuestionKindOpen QuestionKind = "open"
)

// QuestionBody is the kind-specific part of a question. The set of
// implementations is closed: MultipleChoice and OpenEnded.
type QuestionBody interface {
	Kind() QuestionKind
	isQuestionBody()
}

// MultipleChoice is auto-graded by exact, case-sensitive comparison with CorrectAnswer.
type MultipleChoice struct {
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

func (MultipleChoice) Kind() QuestionKind { return QuestionKindMCQ }
func (MultipleChoice) isQuestionBody()    {}

// OpenEnded is only ever scored by a human grader.
type OpenEnded struct{}

func (OpenEnded) Kind() QuestionKind { return QuestionKindOpen }
func (OpenEnded) isQuestionBody()    {}

type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	MaxScore float64      `json:"max_score"`
	Body     QuestionBody `json:"-"`
}

// Kind returns the discriminator of the question body, or "" when unset.
func (q Question) Kind() QuestionKind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// questionJSON is the flat wire and storage shape of a Question.
type questionJSON struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	MaxScore      float64      `json:"max_score"`
	Type          QuestionKind `json:"type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		ID:       q.ID,
		Text:     q.Text,
		MaxScore: q.MaxScore,
	}
	switch body := q.Body.(type) {
	case MultipleChoice:
		out.Type = QuestionKindMCQ
		out.Options = body.Options
		out.CorrectAnswer = body.CorrectAnswer
	case OpenEnded:
		out.Type = QuestionKindOpen
	case nil:
		return nil, fmt.Errorf("question %q has no body", q.ID)
	default:
		return nil, fmt.Errorf("question %q has unsupported body %T", q.ID, body)
	}
	return json.Marshal(out)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var in questionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	q.ID = in.ID
	q.Text = in.Text
	q.MaxScore = in.MaxScore

	switch in.Type {
	case QuestionKindMCQ:
		q.Body = MultipleChoice{Options: in.Options, CorrectAnswer: in.CorrectAnswer}
	case QuestionKindOpen:
		q.Body = OpenEnded{}
	default:
		return fmt.Errorf("unknown question type %q", in.Type)
	}
	return nil
}
