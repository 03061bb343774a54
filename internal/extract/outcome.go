package extract

import "errors"

var (
	// ErrIO wraps failures reading an input or writing an output.
	ErrIO = errors.New("extract: i/o error")

	// ErrOutputCollision is returned when the output file already exists and
	// overwriting is disabled.
	ErrOutputCollision = errors.New("extract: output file already exists")
)

// Kind classifies the outcome of a single file.
type Kind int

const (
	KindSuccess Kind = iota
	KindFailed
	KindSkipped
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindFailed:
		return "failed"
	case KindSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the result of processing one input file.
type Outcome struct {
	Path string
	Kind Kind

	// Output is the written file for KindSuccess.
	Output string

	// Layers is the number of envelopes unwrapped for KindSuccess.
	Layers int

	// Err is set for KindFailed.
	Err error

	// Reason is set for KindSkipped.
	Reason string
}

// Progress is emitted after every file, before the next one starts.
type Progress struct {
	Processed int
	Total     int
	Current   string
	Outcome   Outcome
}

// Summary is the terminal event of a batch.
type Summary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int

	// Outcomes holds one entry per batch file, in input order.
	Outcomes []Outcome
}

func (s *Summary) add(o Outcome) {
	switch o.Kind {
	case KindSuccess:
		s.Succeeded++
	case KindFailed:
		s.Failed++
	case KindSkipped:
		s.Skipped++
	}
	s.Outcomes = append(s.Outcomes, o)
}

// Failures returns the failed outcomes.
func (s *Summary) Failures() []Outcome {
	var failed []Outcome
	for _, o := range s.Outcomes {
		if o.Kind == KindFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// Event carries either a Progress snapshot or the final Summary.
type Event struct {
	Progress *Progress
	Summary  *Summary
}
