package hints

import "fmt"

// ParseError means the expression text is not syntactically valid.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// ValidationError means the expression parsed but is semantically wrong:
// unknown field, type mismatch, or aggregate misuse.
type ValidationError struct {
	Pos int
	Msg string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid expression at offset %d: %s", e.Pos, e.Msg)
}

// EvalError reports an expression/input mode mismatch at evaluation time.
// The matcher treats one as "this hint did not match".
type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string {
	return e.Msg
}
