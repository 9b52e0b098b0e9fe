// Package arfile reads and writes ar archives (see man 1 ar) through an
// index: opening an archive scans its member headers once and exposes each
// member as an independently seekable stream over the archive's file handle.
// Both the GNU and BSD long-filename conventions are understood when
// reading; writing long filenames is not supported.
package arfile

import (
	"bytes"
	"strconv"
)

const (
	// GLOBAL_HEADER is the 8-byte magic that opens every ar archive.
	GLOBAL_HEADER = "!<arch>\n"

	// HEADER_BYTE_SIZE is the fixed size of a per-member file header.
	HEADER_BYTE_SIZE = 60

	// FILE_MAGIC terminates every per-member file header.
	FILE_MAGIC = "`\n"

	// maxNameLen is the width of the header's name field, and therefore the
	// longest member name that can be written.
	maxNameLen = 16
)

// Mode determines what operations an Archive permits.
type Mode int

const (
	// Read opens an existing archive for reading only.
	Read Mode = iota

	// Append opens an existing archive for reading and appending.
	Append

	// Write truncates the archive to an empty one open for appending.
	Write
)

func (m Mode) writable() bool {
	return m == Append || m == Write
}

// Variant identifies which long-filename convention an archive uses.
type Variant int

const (
	// Unknown means no member header has been decoded yet.
	Unknown Variant = iota

	// BSD represents the variant of the ar file format used by BSD ar.
	BSD

	// GNU represents the variant of the ar file format used by GNU ar.
	GNU
)

type slicer []byte

func (sp *slicer) next(n int) (b []byte) {
	s := *sp
	b, *sp = s[0:n], s[n:]
	return
}

// parseString returns a header field with its trailing space padding removed.
func parseString(b []byte) string {
	i := len(b) - 1
	for i > 0 && b[i] == ' ' {
		i--
	}
	return string(b[0 : i+1])
}

// parseNumeric parses a decimal header field. Blanks on either side are
// tolerated; some writers left-justify numeric fields while others right-align
// them.
func parseNumeric(b []byte) int64 {
	n, _ := strconv.ParseInt(string(bytes.TrimSpace(b)), 10, 64)
	return n
}

func parseOctal(b []byte) int64 {
	n, _ := strconv.ParseInt(string(bytes.TrimSpace(b)), 8, 64)
	return n
}

func putString(b []byte, s string) {
	for len(s) < len(b) {
		s = s + " "
	}
	copy(b, s)
}

func putNumeric(b []byte, x int64) {
	putString(b, strconv.FormatInt(x, 10))
}

func putOctal(b []byte, x int64) {
	putString(b, strconv.FormatInt(x, 8))
}
