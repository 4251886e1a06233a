// pkg/hermes_io/secure_input.go

package hermes_io

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"syscall"

	"golang.org/x/term"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
)

const MaxPasswordLength = 256

var (
	controlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	ansiEscapeRegex  = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)
)

// InputValidationError indicates user input failed validation.
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Reason)
}

func validateInput(input, field string, maxLen int) error {
	if len(input) > maxLen {
		return &InputValidationError{Field: field, Reason: fmt.Sprintf("exceeds maximum length of %d", maxLen)}
	}
	if controlCharRegex.MatchString(input) {
		return &InputValidationError{Field: field, Reason: "contains control characters"}
	}
	if ansiEscapeRegex.MatchString(input) {
		return &InputValidationError{Field: field, Reason: "contains ANSI escape sequences"}
	}
	return nil
}

// PromptSecurePassword reads a password without echoing it. Ctrl-D aborts
// with a user-cancelled error; an empty password counts as the user
// declining and ends the command quietly.
func (rc *RuntimeContext) PromptSecurePassword(prompt string) (string, error) {
	rc.Log.Info("terminal prompt: " + prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", hermes_err.NewUserCancelledError("password prompt")
		}
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := string(raw)
	if len(password) == 0 {
		return "", hermes_err.NewExpectedError(&InputValidationError{Field: "password", Reason: "must not be empty"})
	}
	if err := validateInput(password, "password", MaxPasswordLength); err != nil {
		return "", err
	}
	return password, nil
}
