//go:build !linux

package arfile

import (
	"os"
	"time"
)

// statFile reads member metadata through os.Stat on platforms whose raw stat
// surface differs from Linux. Owner and group are not portable and default
// to 0; the mode is reconstructed from the portable permission bits.
func statFile(name string) (*fileStat, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	mode := int64(fi.Mode().Perm())
	if fi.Mode().IsRegular() {
		mode |= 0100000
	}
	return &fileStat{
		size:    fi.Size(),
		modTime: time.Unix(fi.ModTime().Unix(), 0),
		mode:    mode,
	}, nil
}
