// Package archive writes and reads ZIP archives for the compress and
// extract actions.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Summary is what a compress or extract run produced.
type Summary struct {
	Archive  string   `json:"archive,omitempty"`
	Dest     string   `json:"dest,omitempty"`
	Archives int      `json:"archives,omitempty"`
	Files    int      `json:"files"`
	Bytes    int64    `json:"bytes"`
	Rejected []string `json:"rejected,omitempty"`
}

// Compress writes every source into a new archive at dst. A file goes to the
// archive root under its base name; a directory contributes its contents
// with names relative to the directory itself. The first error stops the
// run; the archive written so far is closed and left in place.
func Compress(ctx context.Context, dst string, sources []string) (Summary, error) {
	summary := Summary{Archive: dst}

	out, err := os.Create(dst)
	if err != nil {
		return summary, fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(out)

	err = func() error {
		for _, src := range sources {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := os.Stat(src)
			if err != nil {
				return err
			}
			if info.IsDir() {
				if err := addDir(ctx, zw, src, dst, &summary); err != nil {
					return err
				}
				continue
			}
			if err := addFile(zw, src, filepath.Base(src), info, &summary); err != nil {
				return err
			}
		}
		return nil
	}()

	if cerr := zw.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	return summary, err
}

func addDir(ctx context.Context, zw *zip.Writer, root, dst string, summary *Summary) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root || path == dst {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(relPath)

		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			// symlinked directories are listed but not descended into
			if d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			header, err := zip.FileInfoHeader(info)
			if err != nil {
				return err
			}
			header.Name = name + "/"
			_, err = zw.CreateHeader(header)
			return err
		}

		return addFile(zw, path, name, info, summary)
	})
}

func addFile(zw *zip.Writer, path, name string, info fs.FileInfo, summary *Summary) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	n, err := io.Copy(writer, file)
	if err != nil {
		return err
	}
	summary.Files++
	summary.Bytes += n
	return nil
}

// Extract unpacks each archive in order into dest. Entries from later
// archives overwrite those of earlier ones. Entries whose names would land
// outside dest are not written and are listed in Summary.Rejected.
func Extract(ctx context.Context, archives []string, dest string) (Summary, error) {
	summary := Summary{Dest: dest}
	dest = filepath.Clean(dest)

	for _, archivePath := range archives {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := extractOne(ctx, archivePath, dest, &summary); err != nil {
			return summary, fmt.Errorf("%s: %w", filepath.Base(archivePath), err)
		}
		summary.Archives++
	}
	return summary, nil
}

func extractOne(ctx context.Context, archivePath, dest string, summary *Summary) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, ok := resolveEntry(dest, file.Name)
		if !ok {
			summary.Rejected = append(summary.Rejected, file.Name)
			continue
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		n, err := writeEntry(file, target)
		if err != nil {
			return err
		}
		summary.Files++
		summary.Bytes += n
	}
	return nil
}

// resolveEntry maps an archive entry name onto the filesystem below dest.
func resolveEntry(dest, name string) (string, bool) {
	local := filepath.FromSlash(name)
	if filepath.IsAbs(local) || strings.HasPrefix(name, "/") || filepath.VolumeName(local) != "" {
		return "", false
	}
	target := filepath.Join(dest, local)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

func writeEntry(file *zip.File, target string) (int64, error) {
	src, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer src.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return n, err
}
