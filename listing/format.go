package listing

import (
	"fmt"
	"io/fs"
)

// DirSize is shown in place of a size for directories.
const DirSize = "--"

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with two decimals, dividing by 1024 until
// the value drops below 1024 or the unit reaches TB. Negative sizes mark
// directories and render as DirSize.
func FormatSize(size int64) string {
	if size < 0 {
		return DirSize
	}

	value := float64(size)
	for _, unit := range sizeUnits {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f TB", value)
}

// FormatCount formats a number with thousand separators
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

// ModeString renders a mode the way `ls -l` does: a type character followed
// by three rwx triplets with setuid, setgid and sticky folded in.
func ModeString(mode fs.FileMode) string {
	buf := []byte("----------")

	switch {
	case mode&fs.ModeDir != 0:
		buf[0] = 'd'
	case mode&fs.ModeSymlink != 0:
		buf[0] = 'l'
	case mode&fs.ModeNamedPipe != 0:
		buf[0] = 'p'
	case mode&fs.ModeSocket != 0:
		buf[0] = 's'
	case mode&fs.ModeCharDevice != 0:
		buf[0] = 'c'
	case mode&fs.ModeDevice != 0:
		buf[0] = 'b'
	}

	const rwx = "rwxrwxrwx"
	perm := mode.Perm()
	for i := 0; i < 9; i++ {
		if perm&(1<<uint(8-i)) != 0 {
			buf[i+1] = rwx[i]
		}
	}

	special := func(pos int, set bool, lower, upper byte) {
		if !set {
			return
		}
		if buf[pos] == '-' {
			buf[pos] = upper
		} else {
			buf[pos] = lower
		}
	}
	special(3, mode&fs.ModeSetuid != 0, 's', 'S')
	special(6, mode&fs.ModeSetgid != 0, 's', 'S')
	special(9, mode&fs.ModeSticky != 0, 't', 'T')

	return string(buf)
}
