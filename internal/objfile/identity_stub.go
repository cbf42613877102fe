//go:build !unix

package objfile

import "errors"

// ID identifies a file by device and inode.
type ID struct {
	Device uint64
	Inode  uint64
}

func (id ID) String() string {
	return ""
}

// Identify is not supported on this platform.
func Identify(path string) (ID, error) {
	return ID{}, errors.New("file identity not supported on this platform")
}
