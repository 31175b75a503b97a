package parsing

// ParseError reports a model reply that could not be turned into the
// expected structure. Preview holds a truncated copy of the offending text
// for logging; it is never fed back into prompts.
type ParseError struct {
	Reason  string
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	msg := "parse model reply: " + e.Reason
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}

	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
