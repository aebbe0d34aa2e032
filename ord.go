package qext

import (
	"fmt"
	"strings"
)

const (
	DirNone Dir = 0
	DirAsc  Dir = 1
	DirDesc Dir = 2
)

// Short for "direction". Enum for ordering direction: none, "ASC", "DESC".
type Dir byte

// Implement `fmt.Stringer`. `DirNone` is empty.
func (self Dir) String() string {
	switch self {
	default:
		return ``
	case DirAsc:
		return `ASC`
	case DirDesc:
		return `DESC`
	}
}

// Parses from a string, which must be empty, "asc" or "desc" in any case.
func (self *Dir) Parse(src string) error {
	switch strings.ToUpper(strings.TrimSpace(src)) {
	case ``:
		*self = DirNone
		return nil
	case `ASC`:
		*self = DirAsc
		return nil
	case `DESC`:
		*self = DirDesc
		return nil
	default:
		return ErrInvalidInput.while(`parsing order direction`).because(
			fmt.Errorf(`unrecognized direction %q`, src),
		)
	}
}

// Implement `encoding.TextMarshaler`.
func (self Dir) MarshalText() ([]byte, error) {
	return []byte(self.String()), nil
}

// Implement `encoding.TextUnmarshaler`.
func (self *Dir) UnmarshalText(src []byte) error {
	return self.Parse(string(src))
}

// Implement `fmt.GoStringer` for debug purposes. Returns valid Go code
// representing this value.
func (self Dir) GoString() string {
	switch self {
	default:
		return `qext.DirNone`
	case DirAsc:
		return `qext.DirAsc`
	case DirDesc:
		return `qext.DirDesc`
	}
}

// Renders "field DIR", or just the field for `DirNone`.
func (self Dir) append(field string) string {
	dir := self.String()
	if dir == `` {
		return field
	}
	return field + ` ` + dir
}
