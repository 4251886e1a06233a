// pkg/hermes_err/classification.go
//
// Error classification with exit codes and per-tool remediation.

package hermes_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategorySystem - OS/filesystem issues (exit 1)
	CategorySystem ErrorCategory = iota
	// CategoryNotFound - expected material absent: no credentials, missing archive (exit 1)
	CategoryNotFound
	// CategoryValidation - bad input or corrupt manifest (exit 2)
	CategoryValidation
	// CategoryPrerequisite - tooling missing on the calling host (exit 1)
	CategoryPrerequisite
	// CategoryTransport - remote unreachable, command timeout (exit 1 when fatal at all)
	CategoryTransport
	// CategoryPermission - permission denied (exit 1)
	CategoryPermission
	// CategoryUser - user cancelled/interrupted (exit 130)
	CategoryUser
	// CategoryInternal - bugs in hermes itself (exit 3)
	CategoryInternal
)

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryUser:
		return 130 // Standard for SIGINT (Ctrl-C)
	case CategoryValidation:
		return 2 // Invalid input, corrupt manifest
	case CategoryInternal:
		return 3 // Internal error/bug
	default:
		return 1 // General error
	}
}

// GetExitCode extracts exit code from any error
// Returns 0 for nil, appropriate code for classified errors, 1 for others
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	if IsExpectedUserError(err) {
		return 0 // User errors don't fail the program
	}

	return 1
}

// IsCategory reports whether err carries the given classification.
func IsCategory(err error, cat ErrorCategory) bool {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category == cat
	}
	return false
}

// NewNotFoundError creates an error for absent credentials or archives
func NewNotFoundError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryNotFound,
		Message:     message,
		Remediation: remediation,
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewPrerequisiteError creates an error for tooling missing on the calling host.
// Distinct from transport failures so the operator knows which side to fix.
func NewPrerequisiteError(tool, operation string, remediation ...string) error {
	return &ClassifiedError{
		Category: CategoryPrerequisite,
		Message: fmt.Sprintf("%s is required for %s but is not installed on this machine",
			tool, operation),
		Remediation: remediation,
	}
}

// NewTransportError creates an error for remote connectivity issues
func NewTransportError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryTransport,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewPermissionError creates an error for permission issues
func NewPermissionError(resource, operation string, remediation ...string) error {
	return &ClassifiedError{
		Category: CategoryPermission,
		Message: fmt.Sprintf("Permission denied: cannot %s %s",
			operation, resource),
		Remediation: remediation,
	}
}

// NewFilesystemError creates an error for filesystem issues
func NewFilesystemError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategorySystem,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewInternalError creates an error for hermes bugs
// These should be reported to developers
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"This is likely a bug in hermes",
			"Please report at: https://github.com/CodeMonkeyCybersecurity/hermes/issues",
			"Include this error message and steps to reproduce",
		},
	}
}

// NewUserCancelledError creates an error for user-initiated cancellation
func NewUserCancelledError(operation string) error {
	return &ClassifiedError{
		Category:    CategoryUser,
		Message:     fmt.Sprintf("Operation cancelled by user: %s", operation),
		Remediation: []string{"Run the command again to retry"},
	}
}

// ClassifyError attempts to classify an existing error
// Useful for wrapping third-party library errors
func ClassifyError(err error, context string) error {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return err
	}

	errStr := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errStr, "permission denied"):
		return NewPermissionError(context, "access", err.Error())

	case strings.Contains(errStr, "not found"),
		strings.Contains(errStr, "no such file"),
		strings.Contains(errStr, "does not exist"):
		return NewNotFoundError(
			fmt.Sprintf("%s: resource not found", context),
			"Check that the path or resource exists",
			"Verify spelling and case sensitivity",
		)

	case strings.Contains(errStr, "timeout"),
		strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "network unreachable"):
		return NewTransportError(
			fmt.Sprintf("%s: network error", context),
			err,
			"Check your network connection",
			"Verify the remote host is accessible",
		)

	case strings.Contains(errStr, "invalid"),
		strings.Contains(errStr, "malformed"),
		strings.Contains(errStr, "unexpected end"):
		return NewValidationError(
			fmt.Sprintf("%s: validation failed", context),
			"Check the input format",
			"Review command syntax with: hermes help",
		)

	case strings.Contains(errStr, "command not found"),
		strings.Contains(errStr, "executable file not found"):
		return NewPrerequisiteError(
			extractCommand(errStr),
			context,
			"Install the required dependency",
			"Check that it's in your PATH",
		)

	default:
		return NewFilesystemError(
			fmt.Sprintf("%s failed", context),
			err,
		)
	}
}

// extractCommand attempts to extract command name from error message
func extractCommand(errMsg string) string {
	// pattern: exec: "sshpass": executable file not found
	if strings.Contains(errMsg, "exec:") {
		parts := strings.Split(errMsg, "\"")
		if len(parts) >= 2 {
			return parts[1]
		}
	}
	return "command"
}
