package qext

import (
	"fmt"
	"reflect"

	"github.com/mitranim/refut"
)

/*
Scans a struct, converting fields tagged with `db` into parameters named after
the tag. The input must be a struct or a struct pointer. A nil pointer is fine
and produces an empty non-nil map. Panics on other inputs and on field values
that `ValueOf` can't convert. Treats embedded structs as part of enclosing
structs.

For example, this:

	StructParameters(struct {
		Status string `db:"status"`
		Limit  int    `db:"limit"`
	}{`paid`, 10})

Is equivalent to:

	Parameters{
		`status`: NewParam(`status`, String(`paid`)),
		`limit`:  NewParam(`limit`, Int(10)),
	}
*/
func StructParameters(input any) Parameters {
	out := Parameters{}
	traverseStructDbFields(input, func(name string, value any) {
		out[name] = NewParam(name, try1(ValueOf(value)))
	})
	return out
}

/*
Registers every `db`-tagged field of the struct as a parameter, in field order.
See `StructParameters` for the accepted inputs. Panics with
`ErrDuplicateParameter` on the first name that's already registered.
*/
func (self *Select) AddStructParameters(input any) *Select {
	traverseStructDbFields(input, func(name string, value any) {
		self.AddParam(NewParam(name, try1(ValueOf(value))))
	})
	return self
}

func sfieldColumnName(sfield reflect.StructField) string {
	return refut.TagIdent(sfield.Tag.Get(`db`))
}

func traverseStructDbFields(input any, fun func(string, any)) {
	const while = `traversing struct for parameters`

	if input == nil {
		panic(ErrInvalidInput.while(while).because(errf(`expected struct, got nil`)))
	}

	rval := reflect.ValueOf(input)
	rtype := refut.RtypeDeref(rval.Type())

	if rtype.Kind() != reflect.Struct {
		panic(ErrInvalidInput.while(while).because(
			fmt.Errorf(`expected struct, got %q`, rtype),
		))
	}

	if refut.IsRvalNil(rval) {
		return
	}

	err := refut.TraverseStructRval(rval, func(rval reflect.Value, sfield reflect.StructField, _ []int) error {
		name := sfieldColumnName(sfield)
		if name == `` {
			return nil
		}
		fun(name, rval.Interface())
		return nil
	})
	try(err)
}
