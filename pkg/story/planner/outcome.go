package planner

// Kind discriminates planning outcomes.
type Kind string

const (
	KindSkipped Kind = "skipped"
	KindPlanned Kind = "planned"
	KindFailed  Kind = "failed"
)

// Outcome is the tagged result of one planning attempt. Skips are informational
// (a precondition for extending the outline was not met), not errors.
type Outcome struct {
	Kind    Kind
	Reason  string // set for skips
	Outline string // full new outline text, set when planned
	Err     error  // set on failure
}

func Skipped(reason string) Outcome {
	return Outcome{Kind: KindSkipped, Reason: reason}
}

func Planned(outlineText string) Outcome {
	return Outcome{Kind: KindPlanned, Outline: outlineText}
}

func Failed(err error) Outcome {
	return Outcome{Kind: KindFailed, Err: err}
}

func (o Outcome) IsPlanned() bool { return o.Kind == KindPlanned }
func (o Outcome) IsSkipped() bool { return o.Kind == KindSkipped }
func (o Outcome) IsFailed() bool  { return o.Kind == KindFailed }
