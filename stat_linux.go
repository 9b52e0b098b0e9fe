//go:build linux

package arfile

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// statFile captures the metadata stored in a new member's header. Header
// modification times have second precision, so the nanosecond part is dropped
// up front; a member read back from the archive then compares equal.
func statFile(name string) (*fileStat, error) {
	var st unix.Stat_t
	if err := unix.Stat(name, &st); err != nil {
		return nil, &os.PathError{Op: "stat", Path: name, Err: err}
	}
	sec, _ := st.Mtim.Unix()
	return &fileStat{
		size:    st.Size,
		modTime: time.Unix(sec, 0),
		uid:     int(st.Uid),
		gid:     int(st.Gid),
		mode:    int64(st.Mode),
	}, nil
}
