package arfile

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
)

const (
	// gnuStringTableName is the name of the GNU pseudo-member whose payload holds the
	// archive's string table.
	gnuStringTableName = "//"

	// gnuSymbolTableName and bsdSymbolTableName mark symbol table pseudo-members, which
	// are skipped during indexing.
	gnuSymbolTableName = "/"
	bsdSymbolTableName = "__.SYMDEF"

	bsdLongNamePrefix = "#1/"
)

// detectVariant classifies an archive from its first decoded file header. GNU
// file names either begin with "/" (pseudo-members and long name references)
// or end with "/" (short names); anything else is taken to be BSD. An empty
// archive is never classified and stays Unknown.
func detectVariant(hdr *rawHeader) Variant {
	if strings.HasPrefix(hdr.name, "/") || hdr.endslash {
		return GNU
	}
	return BSD
}

func isSymbolTable(variant Variant, name string) bool {
	switch variant {
	case GNU:
		return name == gnuSymbolTableName
	case BSD:
		return name == bsdSymbolTableName
	}
	return false
}

// cleanName strips the padding and the GNU trailing '/' from a resolved file
// name: everything from the first '/' on is discarded.
func cleanName(s string) string {
	name, _, _ := strings.Cut(strings.TrimRight(s, " "), "/")
	return name
}

// gnuStringTable maps a byte offset within the "//" pseudo-member's payload to
// the newline-terminated name starting there, with the newline removed.
type gnuStringTable map[int64]string

// parseGNUStringTable splits a string table payload into its entries. Each
// entry is keyed by its starting offset, which is how file headers refer to it.
func parseGNUStringTable(blob []byte) (gnuStringTable, error) {
	table := gnuStringTable{}
	off := int64(0)
	for len(blob) > 0 {
		end := bytes.IndexByte(blob, '\n')
		if end == -1 {
			return nil, &ErrStringTable{Err: errors.New("missing trailing newline")}
		}
		table[off] = string(blob[:end])
		off += int64(end) + 1
		blob = blob[end+1:]
	}
	return table, nil
}

// resolveGNUName rewrites hdr's name field in place. A name of the form
// "/<offset>" is looked up in the archive's string table; any other name is
// used literally. The trailing-slash flag of a long name comes from the
// resolved table entry, since that is where GNU ar puts the terminating '/'.
func resolveGNUName(hdr *rawHeader, table gnuStringTable) error {
	if len(hdr.name) == 0 {
		return &ErrFileName{Name: hdr.name, Err: errors.New("zero-length file name")}
	}
	if hdr.name[0] != '/' {
		hdr.name = cleanName(hdr.name)
		return nil
	}
	if table == nil {
		return &ErrFileName{Name: hdr.name, Err: errors.New("missing string table")}
	}
	off, err := strconv.ParseInt(hdr.name[1:], 10, 64)
	if err != nil {
		return &ErrFileName{Name: hdr.name, Err: errors.New("invalid string table offset")}
	}
	entry, ok := table[off]
	if !ok {
		return &ErrFileName{Name: hdr.name, Err: errors.New("invalid string table offset")}
	}
	hdr.endslash = strings.HasSuffix(entry, "/")
	hdr.name = cleanName(entry)
	return nil
}

// bsdLongNameLength returns the length of the inline long name announced by a
// "#1/<length>" name field, or -1 if the field holds an ordinary short name.
func bsdLongNameLength(hdr *rawHeader) (int64, error) {
	if !strings.HasPrefix(hdr.name, bsdLongNamePrefix) {
		return -1, nil
	}
	n, err := strconv.ParseInt(hdr.name[len(bsdLongNamePrefix):], 10, 64)
	if err != nil || n < 0 || n > hdr.size {
		return 0, &ErrFileName{Name: hdr.name, Err: errors.New("invalid long file name length")}
	}
	return n, nil
}

// bsdLongName cleans the raw name bytes read from the start of a member's data
// section. Some writers (e.g. llvm-ar) pad the name with trailing nulls.
func bsdLongName(raw []byte) string {
	return strings.TrimSuffix(string(bytes.TrimRight(raw, "\x00")), "/")
}
