// internal/dispatch/command.go
package dispatch

// Kind is the classification of a command token.
type Kind uint8

const (
	KindUnrecognized Kind = iota
	KindActivate
	KindDeactivate
)

func (k Kind) String() string {
	switch k {
	case KindActivate:
		return "activate"
	case KindDeactivate:
		return "deactivate"
	default:
		return "unrecognized"
	}
}

// Vocabulary is the fixed phrase set. Matching is exact: case,
// whitespace and punctuation all count.
type Vocabulary struct {
	Activate   string
	Deactivate string
}

// Classify maps every token to exactly one Kind. Pure.
func (v Vocabulary) Classify(token string) Kind {
	switch {
	case token == "":
		return KindUnrecognized
	case token == v.Activate:
		return KindActivate
	case token == v.Deactivate:
		return KindDeactivate
	default:
		return KindUnrecognized
	}
}

// Outcome is what a dispatch did.
type Outcome uint8

const (
	OutcomeUnrecognized Outcome = iota
	OutcomeChanged
	OutcomeAlreadySet
)

func (o Outcome) String() string {
	switch o {
	case OutcomeChanged:
		return "changed"
	case OutcomeAlreadySet:
		return "already set"
	default:
		return "unrecognized"
	}
}
