package qext

import "fmt"

// Plain error without an `Err` wrapper, used as a cause.
type ErrStr string

// Implement `error`.
func (self ErrStr) Error() string { return string(self) }

func errf(src string, args ...any) error {
	if len(args) == 0 {
		return ErrStr(src)
	}
	return ErrStr(fmt.Sprintf(src, args...))
}
