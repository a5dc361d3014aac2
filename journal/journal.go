package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Entry represents a single file operation logged to JSONL
type Entry struct {
	Timestamp string   `json:"timestamp"`
	Action    string   `json:"action"`           // paste, delete, rename, compress, extract, upload
	Sources   []string `json:"sources"`          // source file paths
	Dest      string   `json:"dest,omitempty"`   // destination (empty for delete)
	Errors    []string `json:"errors,omitempty"` // errors if any
}

// Journal appends mutating operations to a JSONL file.
// It NEVER overwrites the file, only appends.
type Journal struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func New(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

func (j *Journal) Path() string {
	return j.path
}

// Record appends one entry. A nil Journal records nothing.
func (j *Journal) Record(action string, sources []string, dest string, errs []string) error {
	if j == nil {
		return nil
	}

	entry := Entry{
		Timestamp: j.now().Format(time.RFC3339),
		Action:    action,
		Sources:   sources,
		Dest:      dest,
		Errors:    errs,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	// Open file with append mode - creates if doesn't exist, never overwrites
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}
