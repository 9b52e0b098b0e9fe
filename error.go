package arfile

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingGlobalHeader indicates that the archive file is invalid because its global
	// header is missing (i.e., because the file is shorter than 8 bytes).
	ErrMissingGlobalHeader = errors.New("arfile: missing global header")

	// ErrInvalidGlobalHeader indicates that the archive file is invalid because its global
	// header is malformed (i.e., not the string "!<arch>\n").
	ErrInvalidGlobalHeader = errors.New("arfile: invalid global header")

	// ErrShortHeader indicates that the archive ends partway through a 60-byte file header.
	ErrShortHeader = errors.New("arfile: truncated file header")

	// ErrInvalidHeaderMagic indicates that a file header does not end with the two magic
	// bytes "`\n".
	ErrInvalidHeaderMagic = errors.New("arfile: invalid file header magic")

	// ErrNameFormatMixup indicates that the archive mixes the BSD and GNU file name
	// conventions: a member's name field does not follow the convention established by the
	// archive's first member.
	ErrNameFormatMixup = errors.New("arfile: BSD/GNU file name format mixup")

	// ErrNameTooLong indicates an attempt to write a member whose encoded name does not fit
	// the header's 16-byte name field. Writing long file names is not supported.
	ErrNameTooLong = errors.New("arfile: file name too long")

	// ErrClosed indicates an operation on a closed archive or archive member.
	ErrClosed = errors.New("arfile: archive is closed")

	// ErrNotWritable indicates a write operation on an archive opened read-only.
	ErrNotWritable = errors.New("arfile: archive not open for writing")

	// ErrSeekOutOfRange indicates a seek that would land before the start of a member's
	// data section.
	ErrSeekOutOfRange = errors.New("arfile: seek out of range")
)

// ErrStringTable indicates a problem with the string table in archives that use the GNU
// variant of the file format.
type ErrStringTable struct {
	Err error
}

func (e *ErrStringTable) Error() string {
	return fmt.Sprintf("arfile: string table: %s", e.Err)
}

func (e *ErrStringTable) Unwrap() error {
	return e.Err
}

// ErrFileName indicates a problem with the file name in one of the archive's file headers.
type ErrFileName struct {
	Name string
	Err  error
}

func (e *ErrFileName) Error() string {
	return fmt.Sprintf("arfile: archive member '%s': %s", e.Name, e.Err)
}

func (e *ErrFileName) Unwrap() error {
	return e.Err
}

// ErrNoMember indicates that an archive contains no member with the requested name.
type ErrNoMember struct {
	Name string
}

func (e *ErrNoMember) Error() string {
	return fmt.Sprintf("arfile: no archive member '%s'", e.Name)
}
