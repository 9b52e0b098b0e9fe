package arfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is the access an Archive needs to its underlying file. *os.File
// satisfies it; an archive opened with mode Read never calls Write.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
}

// Archive is an open ar archive. Opening with mode Read or Append scans every
// member header up front, so the member list and name lookups never touch the
// file again; member data is read on demand through Member's file interface.
//
// An Archive is not safe for concurrent use: its members share one file handle.
type Archive struct {
	f    File
	path string
	mode Mode

	// variant is fixed by the first member header decoded and never changes.
	variant Variant

	// members holds every visible member in archive order, duplicates included.
	members []*Member

	// byName maps a member name to its last occurrence in the archive.
	byName map[string]*Member

	// names is the GNU string table, or nil if the archive has none.
	names gnuStringTable

	ownsFile bool
	closed   bool
}

// Open opens the named archive file. Mode Read and Append require an existing,
// valid archive; mode Write creates or truncates the file and writes a fresh
// global header.
func Open(path string, mode Mode) (*Archive, error) {
	var flag int
	switch mode {
	case Read:
		flag = os.O_RDONLY
	case Append:
		flag = os.O_RDWR
	case Write:
		flag = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	default:
		return nil, fmt.Errorf("arfile: invalid open mode %d", mode)
	}
	f, err := os.OpenFile(path, flag, 0666)
	if err != nil {
		return nil, err
	}
	a, err := New(f, mode)
	if err != nil {
		f.Close()
		return nil, err
	}
	a.path = path
	a.ownsFile = true
	return a, nil
}

// New opens an archive over an existing file handle, which must be positioned
// anywhere (it is seeked to the start). The caller keeps ownership of the
// handle; Close does not close it.
func New(f File, mode Mode) (*Archive, error) {
	a := &Archive{
		f:      f,
		mode:   mode,
		byName: map[string]*Member{},
	}
	switch mode {
	case Read, Append:
		if err := a.index(); err != nil {
			return nil, err
		}
	case Write:
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("arfile: %w", err)
		}
		if _, err := io.WriteString(f, GLOBAL_HEADER); err != nil {
			return nil, fmt.Errorf("arfile: write global header: %w", err)
		}
	default:
		return nil, fmt.Errorf("arfile: invalid open mode %d", mode)
	}
	return a, nil
}

// index scans the archive once, decoding each 60-byte file header and seeking
// past each data section. Only the GNU string table's data is ever read.
// Any structural error aborts the open; no partially indexed archive is
// returned.
func (a *Archive) index() error {
	if _, err := a.f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("arfile: %w", err)
	}
	magic := make([]byte, len(GLOBAL_HEADER))
	if _, err := io.ReadFull(a.f, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrMissingGlobalHeader
		}
		return fmt.Errorf("arfile: %w", err)
	}
	if string(magic) != GLOBAL_HEADER {
		return ErrInvalidGlobalHeader
	}

	buf := make([]byte, HEADER_BYTE_SIZE)
	pos := int64(len(GLOBAL_HEADER))
	for {
		n, err := io.ReadFull(a.f, buf)
		if n == 0 && errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return ErrShortHeader
			}
			return fmt.Errorf("arfile: %w", err)
		}
		hdr, err := decodeHeader(buf)
		if err != nil {
			return err
		}
		if a.variant == Unknown {
			a.variant = detectVariant(hdr)
		}
		pos += HEADER_BYTE_SIZE

		// Data sections are padded to even length with a single '\n'.
		next := pos + hdr.size + hdr.size%2

		switch {
		case a.variant == GNU && hdr.name == gnuStringTableName:
			if a.names != nil {
				return &ErrStringTable{Err: errors.New("archive contains multiple string tables")}
			}
			blob := make([]byte, hdr.size)
			if _, err := io.ReadFull(a.f, blob); err != nil {
				return &ErrStringTable{Err: err}
			}
			if a.names, err = parseGNUStringTable(blob); err != nil {
				return err
			}
		case isSymbolTable(a.variant, hdr.name):
			// Symbol tables are invisible to callers.
		default:
			m, err := a.newMember(hdr, pos)
			if err != nil {
				return err
			}
			if len(a.members) > 0 && a.members[0].endslash != m.endslash {
				return ErrNameFormatMixup
			}
			a.members = append(a.members, m)
			a.byName[m.Name] = m
		}

		if _, err := a.f.Seek(next, io.SeekStart); err != nil {
			return fmt.Errorf("arfile: %w", err)
		}
		pos = next
	}
}

// newMember builds a Member from a decoded header whose data section starts at
// dataStart, where the file handle is currently positioned. Resolving a BSD
// long name consumes the name bytes from the start of the data section,
// advancing the member's data offset and shrinking its size accordingly.
func (a *Archive) newMember(hdr *rawHeader, dataStart int64) (*Member, error) {
	m := &Member{
		a:   a,
		off: dataStart,
		end: dataStart + hdr.size,
	}
	switch a.variant {
	case GNU:
		if err := resolveGNUName(hdr, a.names); err != nil {
			return nil, err
		}
	case BSD:
		n, err := bsdLongNameLength(hdr)
		if err != nil {
			return nil, err
		}
		if n >= 0 {
			raw := make([]byte, n)
			if _, err := io.ReadFull(a.f, raw); err != nil {
				return nil, &ErrFileName{Name: hdr.name, Err: err}
			}
			hdr.name = bsdLongName(raw)
			hdr.size -= n
			m.off += n
		} else {
			hdr.name = cleanName(hdr.name)
		}
	}
	m.Name = hdr.name
	m.endslash = hdr.endslash
	m.ModTime = hdr.modTime
	m.Uid = hdr.uid
	m.Gid = hdr.gid
	m.Mode = hdr.mode
	m.Size = hdr.size
	return m, nil
}

// Variant reports the long-filename convention the archive uses, or Unknown
// for an archive with no members.
func (a *Archive) Variant() Variant {
	return a.variant
}

// Path returns the file name the archive was opened from, or "" for an archive
// opened over a handle.
func (a *Archive) Path() string {
	return a.path
}

// Members returns all members in archive order. Members with duplicate names
// appear as often as they occur in the archive.
func (a *Archive) Members() []*Member {
	return a.members
}

// Names returns the names of all members in archive order.
func (a *Archive) Names() []string {
	names := make([]string, len(a.members))
	for i, m := range a.members {
		names[i] = m.Name
	}
	return names
}

// Lookup returns the last member in the archive with the given name, or an
// *ErrNoMember error if there is none. Use Members to reach earlier members
// hidden by a duplicate name.
func (a *Archive) Lookup(name string) (*Member, error) {
	m, ok := a.byName[name]
	if !ok {
		return nil, &ErrNoMember{Name: name}
	}
	return m, nil
}

// Find returns the first member in the archive with the given name, or nil if
// there is none. Note the asymmetry with Lookup, which returns the last match;
// extraction uses Find.
func (a *Archive) Find(name string) *Member {
	for _, m := range a.members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Extract writes the data of the first member with the given name to path. If
// path is an existing directory the member is extracted into it under its own
// name; otherwise path is used as the destination file name. An empty path
// means the current directory.
func (a *Archive) Extract(name, path string) error {
	m := a.Find(name)
	if m == nil {
		return &ErrNoMember{Name: name}
	}
	return a.extract(m, path)
}

// ExtractAll extracts every member of the archive to the directory at path, or
// to the current directory if path is empty.
func (a *Archive) ExtractAll(path string) error {
	for _, m := range a.members {
		if err := a.extract(m, path); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archive) extract(m *Member, path string) error {
	if path == "" {
		path = "."
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, m.Name)
	}
	if _, err := m.Seek(0, io.SeekStart); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, m); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Close closes the archive. Every member becomes permanently unusable; closing
// twice is an error. The underlying handle is closed only if the archive was
// opened by path.
func (a *Archive) Close() error {
	if a.closed {
		return ErrClosed
	}
	a.closed = true
	if a.ownsFile {
		if c, ok := a.f.(io.Closer); ok {
			return c.Close()
		}
	}
	return nil
}
