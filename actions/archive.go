package actions

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"file-manager/archive"
	"file-manager/tasks"
)

// Compress queues a task that zips the selection into dest. An empty dest
// means the prompt was cancelled. The current directory is not refreshed;
// the archive usually lives elsewhere.
func (d *Dispatcher) Compress(names []string, dest string) Result {
	res := Result{Op: OpCompress}
	paths := d.resolve(names)
	if len(paths) == 0 || dest == "" {
		res.NoOp = true
		return res
	}

	zipPath := d.target(dest)
	if !strings.EqualFold(filepath.Ext(zipPath), ".zip") {
		zipPath += ".zip"
	}

	task, err := d.tasks.Submit(string(OpCompress), func(ctx context.Context) (any, error) {
		summary, err := archive.Compress(ctx, zipPath, paths)
		d.finishArchive(OpCompress, paths, zipPath, err)
		return summary, err
	})
	if err != nil {
		res.fail(zipPath, err)
		return res
	}

	res.Task = &task
	res.Message = fmt.Sprintf("Compressing %s to %s", plural(len(paths), "item"), zipPath)
	return res
}

// Extract queues a task that unpacks each selected archive, in order, into
// dest.
func (d *Dispatcher) Extract(names []string, dest string) Result {
	res := Result{Op: OpExtract}
	paths := d.resolve(names)
	if len(paths) == 0 || dest == "" {
		res.NoOp = true
		return res
	}

	destDir := d.target(dest)
	task, err := d.tasks.Submit(string(OpExtract), func(ctx context.Context) (any, error) {
		summary, err := archive.Extract(ctx, paths, destDir)
		d.finishArchive(OpExtract, paths, destDir, err)
		return summary, err
	})
	if err != nil {
		res.fail(destDir, err)
		return res
	}

	res.Task = &task
	res.Message = fmt.Sprintf("Extracting %s to %s", plural(len(paths), "archive"), destDir)
	return res
}

func (d *Dispatcher) finishArchive(op Op, sources []string, dest string, err error) {
	res := Result{Op: op}
	if err != nil {
		res.fail(dest, err)
		d.logger.Error(string(op)+" failed", zap.String("dest", dest), zap.Error(err))
	}
	d.record(op, sources, dest, res)
}

// TaskResult renders a finished compress or extract task as a Result with
// a single summary message.
func TaskResult(t tasks.Task) Result {
	res := Result{Op: Op(t.Kind), Task: &t}
	summary, _ := t.Result.(archive.Summary)

	switch t.Status {
	case tasks.StatusSucceeded:
		switch res.Op {
		case OpCompress:
			res.Message = fmt.Sprintf("Compressed %s to %s", plural(summary.Files, "file"), summary.Archive)
		case OpExtract:
			res.Message = fmt.Sprintf("Extracted %s to %s", plural(summary.Files, "file"), summary.Dest)
			res.Refresh = true
			for _, name := range summary.Rejected {
				res.Failures = append(res.Failures, Failure{
					Path:    name,
					Kind:    OperationFailed,
					Message: "entry would be written outside the destination",
				})
			}
		default:
			res.Message = string(res.Op) + " finished"
		}
	case tasks.StatusCancelled:
		res.Warning = true
		res.Message = string(res.Op) + " cancelled"
	default:
		path := summary.Archive
		if path == "" {
			path = summary.Dest
		}
		err := t.Err
		if err == nil {
			err = errors.New(t.Error)
		}
		res.Failures = append(res.Failures, failure(path, err))
		res.Message = fmt.Sprintf("%s failed: %s", res.Op, t.Error)
	}
	return res
}
