package qext

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/mitranim/refut"
)

/*
Takes a struct and returns the names of its `db`-tagged fields, suitable for a
select list. Also accepts the following inputs and automatically dereferences
them into a struct type:

	* Struct pointer.
	* Struct slice.
	* Struct slice pointer.

Nil slices and pointers are fine, as long as they carry a struct type. Embedded
untagged structs are flattened. Tagged fields of struct type are supported only
when they're scannable as a single column, such as `time.Time` or an
`sql.Scanner`. Any other input causes a panic.
*/
func StructColumns(dest any) []string {
	const while = `generating struct columns for select list`

	if dest == nil {
		panic(ErrInvalidInput.while(while).because(errf(`expected struct, got nil`)))
	}

	rtype := refut.RtypeDeref(reflect.TypeOf(dest))
	if rtype.Kind() == reflect.Slice {
		rtype = refut.RtypeDeref(rtype.Elem())
	}

	if rtype.Kind() != reflect.Struct {
		panic(ErrInvalidInput.while(while).because(
			fmt.Errorf(`expected struct, got %q`, rtype),
		))
	}

	var out []string
	err := refut.TraverseStructRtype(rtype, func(sfield reflect.StructField, _ []int) error {
		name := sfieldColumnName(sfield)
		if name == `` {
			return nil
		}

		fieldRtype := refut.RtypeDeref(sfield.Type)
		if fieldRtype.Kind() == reflect.Struct && !isScannableRtype(fieldRtype) {
			return ErrInvalidInput.while(while).because(
				fmt.Errorf(`field %q of type %q is not a single column`, sfield.Name, fieldRtype),
			)
		}

		out = append(out, name)
		return nil
	})
	try(err)
	return out
}

/*
Replaces the select list with the columns of the given struct type, see
`StructColumns`. `alias` is an optional table qualifier applied to every column.
*/
func (self *Select) SelectStruct(dest any, alias string) *Select {
	cols := structColumnsNonEmpty(dest)
	self.sel = nil
	return self.addSelectCols(cols, alias)
}

// Appending variant of `.SelectStruct`.
func (self *Select) AddSelectStruct(dest any, alias string) *Select {
	return self.addSelectCols(structColumnsNonEmpty(dest), alias)
}

func (self *Select) addSelectCols(cols []string, alias string) *Select {
	for _, col := range cols {
		self.AddSelect(col, alias)
	}
	return self
}

func structColumnsNonEmpty(dest any) []string {
	out := StructColumns(dest)
	if len(out) == 0 {
		panic(ErrInvalidInput.while(`selecting struct columns`).because(
			fmt.Errorf(`%T has no "db"-tagged fields`, dest),
		))
	}
	return out
}

var (
	timeRtype       = reflect.TypeOf(time.Time{})
	sqlScannerRtype = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

func isScannableRtype(rtype reflect.Type) bool {
	return rtype != nil &&
		(rtype == timeRtype || reflect.PointerTo(rtype).Implements(sqlScannerRtype))
}
