package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	nxerrors "github.com/nexushq/nexus/pkg/errors"
)

// printJSON writes v to stdout as indented JSON. Used by every command when
// --json is set.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// jsonError is the machine-readable error shape emitted on --json so a
// calling agent can branch on code and status.
type jsonError struct {
	Error      bool   `json:"error"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Hint       string `json:"hint,omitempty"`
}

// ReportError prints err in the active output mode. Human mode writes a
// styled one-liner (plus hint) to stderr; JSON mode writes the structured
// error object to stdout.
func (c *CLI) ReportError(err error) {
	if c.jsonOut {
		_ = json.NewEncoder(os.Stdout).Encode(jsonError{
			Error:      true,
			Code:       string(nxerrors.GetCode(err)),
			Message:    nxerrors.UserMessage(err),
			StatusCode: nxerrors.StatusOf(err),
			Hint:       nxerrors.Hint(err),
		})
		return
	}

	fmt.Fprintln(os.Stderr, styleIconError.Render(iconError)+" "+nxerrors.UserMessage(err))
	if hint := nxerrors.Hint(err); hint != "" {
		fmt.Fprintln(os.Stderr, "  "+StyleDim.Render(hint))
	}
}

// ExitCode maps an error onto the fixed exit code set:
// 0 success, 1 API/runtime error, 2 configuration error, 130 interrupted.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	switch nxerrors.GetCode(err) {
	case nxerrors.ErrCodeConfig, nxerrors.ErrCodeMissingCredential:
		return 2
	default:
		return 1
	}
}
