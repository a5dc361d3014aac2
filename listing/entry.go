package listing

import (
	"io/fs"
	"time"
)

// Class is the presentation class of an entry, derived from two flags:
// directory or not, hidden or not.
type Class string

const (
	ClassFolder       Class = "folder"
	ClassFile         Class = "file"
	ClassHiddenFolder Class = "hidden_folder"
	ClassHiddenFile   Class = "hidden_file"
)

// Entry is one direct child of a listed directory.
type Entry struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	IsDir       bool      `json:"isDir"`
	IsLink      bool      `json:"isLink"`
	Size        int64     `json:"size"` // -1 for directories
	HumanSize   string    `json:"humanSize"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Permissions string    `json:"permissions"`
	IsHidden    bool      `json:"isHidden"`
	Class       Class     `json:"class"`
}

func newEntry(name, fullPath string, info fs.FileInfo, isDir bool) Entry {
	size := info.Size()
	if isDir {
		size = -1
	}
	hidden := IsHidden(name)
	return Entry{
		Name:        name,
		Path:        fullPath,
		IsDir:       isDir,
		IsLink:      info.Mode()&fs.ModeSymlink != 0,
		Size:        size,
		HumanSize:   FormatSize(size),
		ModifiedAt:  info.ModTime(),
		Permissions: ModeString(info.Mode()),
		IsHidden:    hidden,
		Class:       ClassOf(isDir, hidden),
	}
}

// IsHidden reports whether name follows the dot-file convention.
func IsHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func ClassOf(isDir, hidden bool) Class {
	switch {
	case isDir && hidden:
		return ClassHiddenFolder
	case isDir:
		return ClassFolder
	case hidden:
		return ClassHiddenFile
	default:
		return ClassFile
	}
}
