//go:build unix

package objfile

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ID identifies a file by device and inode.
type ID struct {
	Device uint64
	Inode  uint64
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.Device, id.Inode)
}

// Identify stats path.
func Identify(path string) (ID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return ID{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return ID{Device: uint64(st.Dev), Inode: uint64(st.Ino)}, nil // #nosec G115
}
