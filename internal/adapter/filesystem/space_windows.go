//go:build windows
// +build windows

package filesystem

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"github.com/vertextoedge/torrent-space-guard/internal/domain"
)

var (
	kernel32         = syscall.NewLazyDLL("kernel32.dll")
	getDiskFreeSpace = kernel32.NewProc("GetDiskFreeSpaceExW")
)

// FreeBytes returns free and total bytes of the volume holding path
func (q *Querier) FreeBytes(path string) (int64, int64, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return 0, 0, domain.NewConfigurationError(path, domain.ErrDirectoryUnavailable)
	}

	var freeBytesAvailable, totalNumberOfBytes, totalNumberOfFreeBytes uint64

	// Convert path to UTF16 pointer
	pathPtr, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, domain.NewTransientError("query free space", fmt.Errorf("failed to convert path: %w", err))
	}

	// Call GetDiskFreeSpaceExW
	ret, _, err := getDiskFreeSpace.Call(
		uintptr(unsafe.Pointer(pathPtr)),
		uintptr(unsafe.Pointer(&freeBytesAvailable)),
		uintptr(unsafe.Pointer(&totalNumberOfBytes)),
		uintptr(unsafe.Pointer(&totalNumberOfFreeBytes)),
	)

	if ret == 0 {
		return 0, 0, domain.NewTransientError("query free space", fmt.Errorf("failed to get disk stats: %w", err))
	}

	return int64(freeBytesAvailable), int64(totalNumberOfBytes), nil
}
