package actions

import (
	"errors"
	"io/fs"

	"file-manager/tasks"
	"file-manager/trash"
)

// ErrorKind classifies why an item failed.
type ErrorKind string

const (
	PermissionDenied  ErrorKind = "permission_denied"
	NotFound          ErrorKind = "not_found"
	DestinationExists ErrorKind = "destination_exists"
	OperationFailed   ErrorKind = "operation_failed"
)

// Classify maps an error onto the failure taxonomy.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrExist):
		return DestinationExists
	default:
		return OperationFailed
	}
}

// Failure is one item an action could not handle.
type Failure struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func failure(path string, err error) Failure {
	return Failure{Path: path, Kind: Classify(err), Message: err.Error(), Err: err}
}

// Op names a dispatcher action.
type Op string

const (
	OpOpen         Op = "open"
	OpOpenElevated Op = "open-elevated"
	OpReveal       Op = "reveal"
	OpCopy         Op = "copy"
	OpCopyPath     Op = "copy-path"
	OpPaste        Op = "paste"
	OpDelete       Op = "delete"
	OpRename       Op = "rename"
	OpCompress     Op = "compress"
	OpExtract      Op = "extract"
	OpSearch       Op = "search"
	OpEnter        Op = "enter"
	OpGoto         Op = "goto"
	OpBack         Op = "back"
)

// Result is the outcome of one action over a batch. The interface layer
// decides how to present it.
type Result struct {
	Op        Op        `json:"op"`
	Succeeded []string  `json:"succeeded,omitempty"`
	Failures  []Failure `json:"failures,omitempty"`
	Message   string    `json:"message,omitempty"`
	// NoOp is set when nothing was attempted (empty selection, cancelled prompt).
	NoOp bool `json:"noop,omitempty"`
	// Warning marks an outcome that needs the user's attention but is not a failure.
	Warning bool `json:"warning,omitempty"`
	// NeedsConfirmation is set when a destructive batch was not confirmed.
	NeedsConfirmation bool `json:"needsConfirmation,omitempty"`
	// Refresh asks the interface to relist the current directory.
	Refresh bool `json:"refresh,omitempty"`

	Cwd      string       `json:"cwd,omitempty"`
	Text     string       `json:"text,omitempty"`
	Matches  []string     `json:"matches,omitempty"`
	NotFound bool         `json:"notFound,omitempty"`
	Trashed  []trash.Item `json:"trashed,omitempty"`
	Task     *tasks.Task  `json:"task,omitempty"`
}

// OK reports whether no item failed.
func (r Result) OK() bool {
	return len(r.Failures) == 0
}

func (r *Result) fail(path string, err error) {
	r.Failures = append(r.Failures, failure(path, err))
}

// errorStrings flattens failures for the journal.
func (r Result) errorStrings() []string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		out[i] = f.Path + ": " + f.Message
	}
	return out
}
