//go:build windows

package trash

func isCrossDevice(error) bool {
	return false
}
