package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess        = 0
	ExitCSVUnreadable  = 1 // inventory file missing or unreadable
	ExitCSVUnparsable  = 2 // inventory is not well-formed CSV
	ExitIntegrity      = 3 // a record violates the schema
	ExitVarsUnreadable = 4 // variables file missing or unreadable
	ExitVarsSyntax     = 5 // variables file is not a YAML mapping
	ExitRenderFailed   = 6 // one or more templates failed
	ExitUsage          = 7 // bad arguments, flags or project file
)

// Error codes reported in JSON output.
const (
	ErrCodeGeneric        = "E001"
	ErrCodeCSVUnreadable  = "E002"
	ErrCodeCSVUnparsable  = "E003"
	ErrCodeIntegrity      = "E004"
	ErrCodeVarsUnreadable = "E005"
	ErrCodeVarsSyntax     = "E006"
	ErrCodeRenderFailed   = "E007"
	ErrCodeUsage          = "E008"
	ErrCodeSchema         = "E009"
	ErrCodeQuery          = "E010"
	ErrCodeStore          = "E011"
)

// ExitError is an error carrying the process exit code and the error code
// shown to the user.
type ExitError struct {
	Code    int
	ErrCode string
	Message string
	Err     error
	Details any

	reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, errCode, message string) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, errCode, message string, err error) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Errors that are not an ExitError are usage errors raised by cobra.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
	RunID   string
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
	RunID  string    `json:"run_id,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs data. Text output prints text when it is non-empty and
// data otherwise.
func (f *OutputFormatter) Success(data any, text string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
			RunID:  f.RunID,
		})
	}

	if text == "" {
		text = fmt.Sprint(data)
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			RunID: f.RunID,
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err and returns it, so commands can end with
// "return f.Fail(err)". Errors without an error code are reported as
// generic.
func (f *OutputFormatter) Fail(err error) error {
	code, details := ErrCodeGeneric, any(nil)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ErrCode != "" {
			code = exitErr.ErrCode
		}
		details = exitErr.Details
	}
	_ = f.Error(code, err.Error(), details)
	if exitErr != nil {
		exitErr.reported = true
	}
	return err
}

// Reported reports whether err was already written to the command output.
func Reported(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.reported
}
