package arfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memberBytes renders a complete archive member: header, data and, for
// odd-sized data, the single '\n' pad byte.
func memberBytes(name, data string) []byte {
	b := append(fakeHeader(name, len(data)), data...)
	if len(data)%2 == 1 {
		b = append(b, '\n')
	}
	return b
}

// writeArchive assembles an archive file from the given parts and returns its
// path.
func writeArchive(t *testing.T, parts ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.a")
	data := []byte(GLOBAL_HEADER)
	for _, part := range parts {
		data = append(data, part...)
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func openArchive(t *testing.T, parts ...[]byte) *Archive {
	t.Helper()
	a, err := Open(writeArchive(t, parts...), Read)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func readMember(t *testing.T, m *Member) string {
	t.Helper()
	_, err := m.Seek(0, io.SeekStart)
	require.NoError(t, err)
	data, err := io.ReadAll(m)
	require.NoError(t, err)
	return string(data)
}

func TestTwoMemberArchive(t *testing.T) {
	path := writeArchive(t, memberBytes("a.txt", "hello"), memberBytes("b.txt", "bye!"))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(8+60+5+1+60+4), fi.Size())

	a, err := Open(path, Read)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, []string{"a.txt", "b.txt"}, a.Names())
	assert.Equal(t, BSD, a.Variant())
	assert.Equal(t, path, a.Path())

	m, err := a.Lookup("a.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), m.Size)
	assert.Equal(t, "hello", readMember(t, m))

	// The next header starts right after the data plus the odd-size pad byte.
	sibling := a.Members()[1]
	assert.Equal(t, m.off+m.Size+m.Size%2+HEADER_BYTE_SIZE, sibling.off)
	assert.Equal(t, sibling.off+sibling.Size, sibling.end)
	assert.Equal(t, "bye!", readMember(t, sibling))
}

func TestOpenErrors(t *testing.T) {
	write := func(t *testing.T, data []byte) string {
		path := filepath.Join(t.TempDir(), "test.a")
		require.NoError(t, os.WriteFile(path, data, 0644))
		return path
	}

	t.Run("empty file", func(t *testing.T) {
		_, err := Open(write(t, nil), Read)
		assert.ErrorIs(t, err, ErrMissingGlobalHeader)
	})
	t.Run("bad global header", func(t *testing.T) {
		_, err := Open(write(t, []byte("!<arch>X")), Read)
		assert.ErrorIs(t, err, ErrInvalidGlobalHeader)
	})
	t.Run("truncated file header", func(t *testing.T) {
		data := append([]byte(GLOBAL_HEADER), fakeHeader("a.txt", 0)[:30]...)
		_, err := Open(write(t, data), Read)
		assert.ErrorIs(t, err, ErrShortHeader)
	})
	t.Run("bad file header magic", func(t *testing.T) {
		hdr := fakeHeader("a.txt", 0)
		hdr[58] = '?'
		_, err := Open(write(t, append([]byte(GLOBAL_HEADER), hdr...)), Read)
		assert.ErrorIs(t, err, ErrInvalidHeaderMagic)
	})
	t.Run("missing archive file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.a"), Read)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestNameFormatMixup(t *testing.T) {
	// A GNU-style member followed by a BSD-style one aborts indexing.
	_, err := Open(writeArchive(t, memberBytes("foo.txt/", "aa"), memberBytes("bar.txt", "bb")), Read)
	assert.ErrorIs(t, err, ErrNameFormatMixup)
}

func TestGNULongNames(t *testing.T) {
	a := openArchive(t,
		memberBytes("//", "foo.txt/\nbarbaz.txt/\n"),
		memberBytes("/0", "first member"),
		memberBytes("/9", "second member"),
	)

	// The string table itself is not a member.
	assert.Equal(t, []string{"foo.txt", "barbaz.txt"}, a.Names())
	assert.Equal(t, GNU, a.Variant())

	m, err := a.Lookup("barbaz.txt")
	require.NoError(t, err)
	assert.Equal(t, "second member", readMember(t, m))
}

func TestGNULongNameWithoutTable(t *testing.T) {
	_, err := Open(writeArchive(t, memberBytes("/0", "data")), Read)
	var ferr *ErrFileName
	assert.ErrorAs(t, err, &ferr)
}

func TestGNUDuplicateStringTable(t *testing.T) {
	table := memberBytes("//", "foo.txt/\nbarbaz.txt/\n")
	_, err := Open(writeArchive(t, table, table), Read)
	var terr *ErrStringTable
	assert.ErrorAs(t, err, &terr)
}

func TestBSDLongNames(t *testing.T) {
	// The 7-byte name "abc.txt" sits between the header and the data and
	// counts toward the header's declared size.
	a := openArchive(t, memberBytes("#1/7", "abc.txtpayload"))

	assert.Equal(t, []string{"abc.txt"}, a.Names())
	m, err := a.Lookup("abc.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.Size)
	assert.Equal(t, "payload", readMember(t, m))
}

func TestSymbolTablesSkipped(t *testing.T) {
	t.Run("GNU", func(t *testing.T) {
		a := openArchive(t, memberBytes("/", "\x00\x00\x00\x00"), memberBytes("foo.txt/", "data"))
		assert.Equal(t, []string{"foo.txt"}, a.Names())
	})
	t.Run("BSD", func(t *testing.T) {
		a := openArchive(t, memberBytes("__.SYMDEF", "\x00\x00\x00\x00"), memberBytes("foo.txt", "data"))
		assert.Equal(t, []string{"foo.txt"}, a.Names())
	})
}

func TestLookupAsymmetry(t *testing.T) {
	a := openArchive(t,
		memberBytes("dup.txt", "first!"),
		memberBytes("other.txt", "x"),
		memberBytes("dup.txt", "second"),
	)
	assert.Equal(t, []string{"dup.txt", "other.txt", "dup.txt"}, a.Names())

	last, err := a.Lookup("dup.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", readMember(t, last))

	first := a.Find("dup.txt")
	require.NotNil(t, first)
	assert.Equal(t, "first!", readMember(t, first))

	_, err = a.Lookup("missing.txt")
	var nerr *ErrNoMember
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "missing.txt", nerr.Name)
	assert.Nil(t, a.Find("missing.txt"))
}

func TestExtract(t *testing.T) {
	a := openArchive(t,
		memberBytes("dup.txt", "first!"),
		memberBytes("b.txt", "bye!"),
		memberBytes("dup.txt", "second"),
	)
	dir := t.TempDir()

	t.Run("into directory", func(t *testing.T) {
		require.NoError(t, a.Extract("b.txt", dir))
		data, err := os.ReadFile(filepath.Join(dir, "b.txt"))
		require.NoError(t, err)
		assert.Equal(t, "bye!", string(data))
	})
	t.Run("to explicit file name", func(t *testing.T) {
		dest := filepath.Join(dir, "renamed.txt")
		require.NoError(t, a.Extract("b.txt", dest))
		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, "bye!", string(data))
	})
	t.Run("first match wins", func(t *testing.T) {
		require.NoError(t, a.Extract("dup.txt", dir))
		data, err := os.ReadFile(filepath.Join(dir, "dup.txt"))
		require.NoError(t, err)
		assert.Equal(t, "first!", string(data))
	})
	t.Run("missing member", func(t *testing.T) {
		var nerr *ErrNoMember
		assert.ErrorAs(t, a.Extract("missing.txt", dir), &nerr)
	})
}

func TestExtractAll(t *testing.T) {
	a := openArchive(t, memberBytes("a.txt", "hello"), memberBytes("b.txt", "bye!"))
	dir := t.TempDir()
	require.NoError(t, a.ExtractAll(dir))

	for name, want := range map[string]string{"a.txt": "hello", "b.txt": "bye!"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestWriteModeTruncates(t *testing.T) {
	path := writeArchive(t, memberBytes("a.txt", "hello"))

	a, err := Open(path, Write)
	require.NoError(t, err)
	assert.Empty(t, a.Members())
	assert.Equal(t, Unknown, a.Variant())
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, GLOBAL_HEADER, string(data))
}

func TestNewFromHandle(t *testing.T) {
	f, err := os.Open(writeArchive(t, memberBytes("a.txt", "hello")))
	require.NoError(t, err)
	defer f.Close()

	a, err := New(f, Read)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, a.Names())
	assert.Equal(t, "", a.Path())
	require.NoError(t, a.Close())

	// Close does not close a caller-owned handle.
	_, err = f.Seek(0, io.SeekStart)
	assert.NoError(t, err)
}

func TestCloseTwice(t *testing.T) {
	a := openArchive(t, memberBytes("a.txt", "hello"))
	require.NoError(t, a.Close())
	assert.True(t, errors.Is(a.Close(), ErrClosed))
}
