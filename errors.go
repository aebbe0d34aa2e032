package qext

import (
	"errors"
	"fmt"
)

/*
Error codes. You probably shouldn't use this directly; instead, use the `Err`
variables with `errors.Is`.
*/
type ErrCode string

const (
	ErrCodeUnknown            ErrCode = ""
	ErrCodeDuplicateParameter ErrCode = "DuplicateParameter"
	ErrCodeMissingFrom        ErrCode = "MissingFrom"
	ErrCodeMissingSelect      ErrCode = "MissingSelect"
	ErrCodeEmptyCondition     ErrCode = "EmptyCondition"
	ErrCodeInvalidInput       ErrCode = "InvalidInput"
	ErrCodeMissingParameter   ErrCode = "MissingParameter"
	ErrCodeUnusedParameter    ErrCode = "UnusedParameter"
	ErrCodeInternal           ErrCode = "Internal"
)

/*
Use blank error variables to detect error types:

	if errors.Is(err, qext.ErrDuplicateParameter) {
		// Handle specific error.
	}

Note that errors returned by this package can't be compared via `==` because
they may include additional details about the circumstances. When compared by
`errors.Is`, they compare `.Cause` and fall back on `.Code`.
*/
var (
	ErrDuplicateParameter = Err{Code: ErrCodeDuplicateParameter, Cause: errors.New(`duplicate parameter`)}
	ErrMissingFrom        = Err{Code: ErrCodeMissingFrom, Cause: errors.New(`missing from clause`)}
	ErrMissingSelect      = Err{Code: ErrCodeMissingSelect, Cause: errors.New(`missing select expressions`)}
	ErrEmptyCondition     = Err{Code: ErrCodeEmptyCondition, Cause: errors.New(`empty join condition`)}
	ErrInvalidInput       = Err{Code: ErrCodeInvalidInput, Cause: errors.New(`invalid input`)}
	ErrMissingParameter   = Err{Code: ErrCodeMissingParameter, Cause: errors.New(`missing parameter`)}
	ErrUnusedParameter    = Err{Code: ErrCodeUnusedParameter, Cause: errors.New(`unused parameter`)}
	ErrInternal           = Err{Code: ErrCodeInternal, Cause: errors.New(`internal error`)}
)

// Type of errors returned by this package.
type Err struct {
	Code  ErrCode
	While string
	Cause error
}

// Implement `error`.
func (self Err) Error() string {
	if self == (Err{}) {
		return ``
	}
	msg := `[qext]`
	if self.Code != ErrCodeUnknown {
		msg += fmt.Sprintf(` %s`, self.Code)
	} else {
		msg += ` error`
	}
	if self.While != `` {
		msg += fmt.Sprintf(` while %v`, self.While)
	}
	if self.Cause != nil {
		msg += `: ` + self.Cause.Error()
	}
	return msg
}

// Implement a hidden interface in "errors".
func (self Err) Is(other error) bool {
	if self.Cause != nil && errors.Is(self.Cause, other) {
		return true
	}
	err, ok := other.(Err)
	return ok && err.Code != ErrCodeUnknown && err.Code == self.Code
}

// Implement a hidden interface in "errors".
func (self Err) Unwrap() error {
	return self.Cause
}

func (self Err) while(while string) Err {
	self.While = while
	return self
}

func (self Err) because(cause error) Err {
	self.Cause = cause
	return self
}

/*
Runs the function, converting a panic into an error. Fluent builder methods in
this package report misuse, such as a duplicate parameter name, by panicking
with `Err`. Apps that insist on errors-as-values should wrap query assembly:

	err := qext.Catch(func() {
		query.AddParameter(`id`, qext.Int(10))
	})
*/
func Catch(fun func()) (err error) {
	defer rec(&err)
	if fun != nil {
		fun()
	}
	return
}

// Must be deferred.
func rec(ptr *error) {
	val := recover()
	if val == nil {
		return
	}

	err, _ := val.(error)
	if err != nil {
		*ptr = err
		return
	}

	*ptr = ErrInternal.while(`recovering from panic`).because(fmt.Errorf(`%v`, val))
}

func try(err error) {
	if err != nil {
		panic(err)
	}
}

func try1[A any](val A, err error) A {
	try(err)
	return val
}
