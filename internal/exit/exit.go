package exit

import (
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/rowmap/internal/apperr"
)

// Exit codes.
const (
	CodeSuccess      = 0
	CodeFailure      = 1
	CodeInvalidInput = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeSuccess,
		Message:  message,
	}
}

// Error creates an error exit result that outputs to stderr with exit code 1.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeFailure,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError reports err on stderr, with exit code 2 when the input was at fault.
func FromError(err error) *Result {
	if err == nil {
		return Success("")
	}

	r := Errorf("Error: %v\n", err)
	if apperr.IsInvalidInput(err) {
		r.ExitCode = CodeInvalidInput
	}
	return r
}
