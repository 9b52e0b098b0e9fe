package arfile

import (
	"fmt"
	"io"
	"os"
	"time"
)

// fileStat is the subset of stat results a new member's header needs.
type fileStat struct {
	size    int64
	modTime time.Time
	uid     int
	gid     int
	mode    int64
}

// Add appends the named file to the archive as a new member, recording its
// size, modification time, owner, group and mode as stat reports them. The
// archive must be open for writing. The new member follows the trailing-slash
// convention established by the archive's first member.
//
// Names longer than the header's 16-byte name field fail with ErrNameTooLong;
// neither long-filename extension is supported on the write side.
func (a *Archive) Add(name string) error {
	if a.closed {
		return ErrClosed
	}
	if !a.mode.writable() {
		return ErrNotWritable
	}

	st, err := statFile(name)
	if err != nil {
		return err
	}
	m := &Member{
		Name:    name,
		ModTime: st.modTime,
		Uid:     st.uid,
		Gid:     st.gid,
		Mode:    st.mode,
		Size:    st.size,
		a:       a,
	}
	if len(a.members) > 0 {
		m.endslash = a.members[0].endslash
	}
	hdr, err := encodeHeader(m)
	if err != nil {
		return err
	}

	in, err := os.Open(name)
	if err != nil {
		return err
	}
	defer in.Close()

	end, err := a.f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("arfile: %w", err)
	}
	if _, err := a.f.Write(hdr); err != nil {
		return fmt.Errorf("arfile: write header: %w", err)
	}
	m.off = end + HEADER_BYTE_SIZE
	m.end = m.off + m.Size
	if _, err := io.Copy(a.f, in); err != nil {
		return fmt.Errorf("arfile: write member data: %w", err)
	}
	if m.Size%2 == 1 {
		if _, err := a.f.Write([]byte{'\n'}); err != nil {
			return fmt.Errorf("arfile: write padding: %w", err)
		}
	}

	a.members = append(a.members, m)
	a.byName[m.Name] = m
	return nil
}
