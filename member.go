package arfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// Member is one file stored in an ar archive. It offers a file-like interface
// over its slice of the archive: Read, ReadLine, ReadLines, Seek, Tell and
// Close. All members of an archive share the archive's underlying file handle;
// each operation first positions the handle at the member's own cursor, so
// interleaved reads of different members do not disturb each other.
//
// A Member stays valid until it or its Archive is closed, after which every
// operation returns ErrClosed.
type Member struct {
	// Name is the member's file name, with any long-name reference resolved
	// and the GNU trailing '/' removed.
	Name string

	// ModTime is the member's last modification time (second precision).
	ModTime time.Time

	Uid  int
	Gid  int
	Mode int64

	// Size is the member's data size in bytes. For BSD long-name members this
	// excludes the name bytes stored ahead of the data.
	Size int64

	// endslash records whether the member's header name field carried the GNU
	// trailing '/'. It must match across all members of one archive, and new
	// members written by Add inherit it.
	endslash bool

	a      *Archive
	off    int64 // absolute offset of the data section's first byte
	end    int64 // absolute offset one past the data section's last byte
	cur    int64 // read cursor relative to off; may pass Size, or go negative via SeekEnd
	closed bool
}

func (m *Member) ready() error {
	if m.closed || m.a == nil || m.a.closed {
		return ErrClosed
	}
	return nil
}

// Read reads up to len(p) bytes of the member's data into p. It fills p
// entirely whenever that many bytes remain before the end of the data section,
// and returns io.EOF once the cursor is outside the section.
func (m *Member) Read(p []byte) (int, error) {
	if err := m.ready(); err != nil {
		return 0, err
	}
	abs := m.off + m.cur
	if abs < m.off || abs >= m.end {
		return 0, io.EOF
	}
	if rem := m.end - abs; int64(len(p)) > rem {
		p = p[:rem]
	}
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := m.a.f.Seek(abs, io.SeekStart); err != nil {
		return 0, fmt.Errorf("arfile: %w", err)
	}
	n, err := io.ReadFull(m.a.f, p)
	m.cur += int64(n)
	if err != nil {
		return n, fmt.Errorf("arfile: %w", err)
	}
	return n, nil
}

// ReadLine reads one line, including its trailing newline. A positive limit
// caps the number of bytes read. A line that continues past the end of the
// member's data section is discarded whole, not truncated: ReadLine reports
// io.EOF and leaves the cursor past the end of the section.
func (m *Member) ReadLine(limit int) ([]byte, error) {
	if err := m.ready(); err != nil {
		return nil, err
	}
	line, err := m.a.readLineAt(m.off+m.cur, limit)
	if err != nil {
		return nil, err
	}
	if len(line) == 0 {
		return nil, io.EOF
	}
	m.cur += int64(len(line))
	if m.off+m.cur > m.end {
		return nil, io.EOF
	}
	return line, nil
}

// ReadLines reads all remaining lines of the member's data.
func (m *Member) ReadLines() ([][]byte, error) {
	var lines [][]byte
	for {
		line, err := m.ReadLine(0)
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}

// Seek moves the member's cursor, interpreting offset relative to the start of
// the member's data (io.SeekStart), the current cursor (io.SeekCurrent) or the
// end of the data (io.SeekEnd), and returns the new cursor position. Seeking
// before the start of the data is an error for SeekStart and SeekCurrent.
// Seeking past the end is allowed; a later Read reports io.EOF.
func (m *Member) Seek(offset int64, whence int) (int64, error) {
	if err := m.ready(); err != nil {
		return 0, err
	}
	cur := m.cur
	if cur < 0 {
		cur = 0
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = m.off + offset
	case io.SeekCurrent:
		abs = m.off + cur + offset
	case io.SeekEnd:
		abs = m.end + offset
	default:
		return 0, fmt.Errorf("arfile: invalid seek whence %d", whence)
	}
	if whence != io.SeekEnd && abs < m.off {
		return 0, fmt.Errorf("%w: %d", ErrSeekOutOfRange, offset)
	}
	m.cur = abs - m.off
	return m.cur, nil
}

// Tell returns the cursor's position within the member's data, clamped at 0.
func (m *Member) Tell() (int64, error) {
	if err := m.ready(); err != nil {
		return 0, err
	}
	if m.cur < 0 {
		return 0, nil
	}
	return m.cur, nil
}

// Close makes the member permanently unusable. It does not affect the archive
// or its other members.
func (m *Member) Close() error {
	m.closed = true
	return nil
}

// readLineAt reads bytes starting at the absolute offset abs up to and
// including the next '\n', stopping early at the limit if it is positive or at
// the end of the underlying file. It reads in small unbuffered chunks: a
// buffered reader would read ahead on the shared handle and is pointless when
// every member operation re-seeks it.
func (a *Archive) readLineAt(abs int64, limit int) ([]byte, error) {
	if _, err := a.f.Seek(abs, io.SeekStart); err != nil {
		return nil, fmt.Errorf("arfile: %w", err)
	}
	var line []byte
	buf := make([]byte, 512)
	for {
		want := len(buf)
		if limit > 0 && limit-len(line) < want {
			want = limit - len(line)
		}
		if want == 0 {
			return line, nil
		}
		n, err := a.f.Read(buf[:want])
		if i := bytes.IndexByte(buf[:n], '\n'); i >= 0 {
			return append(line, buf[:i+1]...), nil
		}
		line = append(line, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return line, nil
			}
			return nil, fmt.Errorf("arfile: %w", err)
		}
	}
}
