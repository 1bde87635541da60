package schema

// Failure kinds produced by the invocation gateway itself.
const (
	KindNotFound = "NotFound"
	KindType     = "TypeError"
	KindPanic    = "Panic"
	KindGeneric  = "Error"
)

// Failure describes why an invocation did not produce a value.
// It carries only a kind name and a rendered message, never the original error.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Text renders the failure the way transports report it to callers.
func (f Failure) Text() string {
	if f.Kind == KindNotFound || f.Kind == "" {
		return f.Message
	}
	return f.Kind + ": " + f.Message
}

// Outcome is the result of one tool invocation: either a value or a failure.
type Outcome struct {
	Value   any
	Failure *Failure
}

// Success wraps a tool return value.
func Success(v any) Outcome { return Outcome{Value: v} }

// Fail builds a failed outcome.
func Fail(kind, message string) Outcome {
	return Outcome{Failure: &Failure{Kind: kind, Message: message}}
}

// OK reports whether the invocation succeeded.
func (o Outcome) OK() bool { return o.Failure == nil }

// KindError is implemented by errors that name their own failure kind.
type KindError interface {
	error
	Kind() string
}
