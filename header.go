package arfile

import (
	"fmt"
	"strings"
	"time"
)

// rawHeader holds the fields of a 60-byte file header exactly as decoded,
// before any long file name resolution.
type rawHeader struct {
	// name is the 16-byte name field with its space padding removed.
	name string

	// endslash records whether the name field ends with '/', which is how GNU
	// ar terminates every file name. All members of one archive must agree.
	endslash bool

	modTime time.Time
	uid     int
	gid     int
	mode    int64
	size    int64
}

// decodeHeader parses a file header from the start of buf.
func decodeHeader(buf []byte) (*rawHeader, error) {
	if len(buf) < HEADER_BYTE_SIZE {
		return nil, ErrShortHeader
	}
	if string(buf[58:60]) != FILE_MAGIC {
		return nil, ErrInvalidHeaderMagic
	}

	s := slicer(buf)
	hdr := &rawHeader{}
	hdr.name = parseString(s.next(16))
	hdr.endslash = strings.HasSuffix(hdr.name, "/")
	hdr.modTime = time.Unix(parseNumeric(s.next(12)), 0)
	hdr.uid = int(parseNumeric(s.next(6)))
	hdr.gid = int(parseNumeric(s.next(6)))
	hdr.mode = parseOctal(s.next(8))
	hdr.size = parseNumeric(s.next(10))
	return hdr, nil
}

// encodeHeader renders a member's file header. The member's name, with a
// trailing '/' appended under the GNU convention, must fit the 16-byte name
// field; there is no long file name fallback on the write side.
func encodeHeader(m *Member) ([]byte, error) {
	name := m.Name
	if m.endslash {
		name += "/"
	}
	if len(name) > maxNameLen {
		return nil, fmt.Errorf("%w: %q", ErrNameTooLong, m.Name)
	}

	buf := make([]byte, HEADER_BYTE_SIZE)
	s := slicer(buf)
	putString(s.next(16), name)
	putNumeric(s.next(12), m.ModTime.Unix())
	putNumeric(s.next(6), int64(m.Uid))
	putNumeric(s.next(6), int64(m.Gid))
	putOctal(s.next(8), m.Mode)
	putNumeric(s.next(10), m.Size)
	putString(s.next(2), FILE_MAGIC)
	if len(buf) != HEADER_BYTE_SIZE {
		panic("arfile: encoded header is not 60 bytes")
	}
	return buf, nil
}
