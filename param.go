package qext

import (
	"database/sql"
	"fmt"
	"math"
	r "reflect"
	"sort"
	"time"
)

/*
Layouts used by `ParseValue` and by the `Native` forms of temporal values.
Datetimes additionally accept RFC 3339.
*/
const (
	LayoutDate     = `2006-01-02`
	LayoutDateTime = `2006-01-02 15:04:05`
	LayoutTime     = `15:04:05`
)

/*
Short for "parameter type". Tag describing how an execution layer should bind a
parameter value. The tag set is fixed.
*/
type Type string

const (
	TypeArray    Type = `array`
	TypeBoolean  Type = `boolean`
	TypeDate     Type = `date`
	TypeDateTime Type = `datetime`
	TypeFloat    Type = `float`
	TypeInteger  Type = `integer`
	TypeString   Type = `string`
	TypeTime     Type = `time`
)

// Reports whether the tag is one of the known constants.
func (self Type) Valid() bool {
	switch self {
	case TypeArray, TypeBoolean, TypeDate, TypeDateTime, TypeFloat, TypeInteger, TypeString, TypeTime:
		return true
	default:
		return false
	}
}

// Implement `fmt.Stringer`.
func (self Type) String() string { return string(self) }

// Parses a tag, which must be one of the known constants.
func ParseType(src string) (Type, error) {
	out := Type(src)
	if out.Valid() {
		return out, nil
	}
	return ``, ErrInvalidInput.while(`parsing parameter type`).because(
		fmt.Errorf(`unrecognized parameter type %q`, src),
	)
}

// Implement `encoding.TextMarshaler`.
func (self Type) MarshalText() ([]byte, error) { return []byte(self), nil }

// Implement `encoding.TextUnmarshaler`.
func (self *Type) UnmarshalText(src []byte) error {
	val, err := ParseType(string(src))
	if err != nil {
		return err
	}
	*self = val
	return nil
}

/*
Parameter value. Sealed: only the types declared in this file implement it.
The binding tag is derived from the case via `.Type()`, so a value can't
disagree with its own tag. `.Native()` returns the plain Go value that a
database driver binds.
*/
type Value interface {
	Type() Type
	Native() any
	value()
}

/*
SQL null. `Of` optionally declares the type the execution layer should bind the
null as. The zero value binds as a string.
*/
type Null struct{ Of Type }

func (Null) value() {}
func (Null) Native() any { return nil }
func (self Null) Type() Type {
	if self.Of == `` {
		return TypeString
	}
	return self.Of
}

type Bool bool

func (Bool) value() {}
func (Bool) Type() Type { return TypeBoolean }
func (self Bool) Native() any { return bool(self) }

type Int int64

func (Int) value() {}
func (Int) Type() Type { return TypeInteger }
func (self Int) Native() any { return int64(self) }

type Float float64

func (Float) value() {}
func (Float) Type() Type { return TypeFloat }
func (self Float) Native() any { return float64(self) }

type String string

func (String) value() {}
func (String) Type() Type { return TypeString }
func (self String) Native() any { return string(self) }

// Calendar date. Only the year, month and day are meaningful.
type Date struct{ time.Time }

func (Date) value() {}
func (Date) Type() Type { return TypeDate }
func (self Date) Native() any { return self.Time }

// Shortcut for making a `Date` in UTC.
func MakeDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

type DateTime struct{ time.Time }

func (DateTime) value() {}
func (DateTime) Type() Type { return TypeDateTime }
func (self DateTime) Native() any { return self.Time }

// Time of day. Only the clock reading is meaningful.
type Time struct{ time.Time }

func (Time) value() {}
func (Time) Type() Type { return TypeTime }
func (self Time) Native() any { return self.Time }

// Shortcut for making a `Time` on the zero date in UTC.
func MakeTime(hour, min, sec int) Time {
	return Time{time.Date(0, time.January, 1, hour, min, sec, 0, time.UTC)}
}

/*
Array of values, typically bound as an "in" list. Elements may be of mixed
kinds; the execution layer decides how to bind them.
*/
type Array []Value

func (Array) value() {}
func (Array) Type() Type { return TypeArray }

func (self Array) Native() any {
	if self == nil {
		return []any(nil)
	}
	out := make([]any, len(self))
	for ind, val := range self {
		if val == nil {
			continue
		}
		out[ind] = val.Native()
	}
	return out
}

var (
	typeValue = r.TypeOf((*Value)(nil)).Elem()
	typeTime  = r.TypeOf((*time.Time)(nil)).Elem()
)

/*
Converts an arbitrary Go value into a `Value`. Supports nil, booleans, integers
and floats of every width, strings, `time.Time` (as `DateTime`), slices and
arrays (as `Array`), pointers to any of those, and values that already
implement `Value`. Other inputs produce `ErrInvalidInput`.
*/
func ValueOf(src any) (Value, error) {
	if src == nil {
		return Null{}, nil
	}
	if val, ok := src.(Value); ok {
		return val, nil
	}
	return valueOfRval(r.ValueOf(src))
}

func valueOfRval(rval r.Value) (Value, error) {
	for rval.Kind() == r.Ptr || rval.Kind() == r.Interface {
		if rval.IsNil() {
			return Null{Of: nullTypeOf(rval.Type())}, nil
		}
		rval = rval.Elem()
	}

	if rval.Type().Implements(typeValue) {
		return rval.Interface().(Value), nil
	}
	if rval.Type() == typeTime {
		return DateTime{rval.Interface().(time.Time)}, nil
	}

	switch rval.Kind() {
	case r.Bool:
		return Bool(rval.Bool()), nil
	case r.Int, r.Int8, r.Int16, r.Int32, r.Int64:
		return Int(rval.Int()), nil
	case r.Uint, r.Uint8, r.Uint16, r.Uint32, r.Uint64, r.Uintptr:
		val := rval.Uint()
		if val > math.MaxInt64 {
			return nil, ErrInvalidInput.while(`converting to parameter value`).because(
				fmt.Errorf(`unsigned value %d overflows integer`, val),
			)
		}
		return Int(int64(val)), nil
	case r.Float32, r.Float64:
		return Float(rval.Float()), nil
	case r.String:
		return String(rval.String()), nil
	case r.Slice, r.Array:
		if rval.Kind() == r.Slice && rval.IsNil() {
			return Null{Of: TypeArray}, nil
		}
		out := make(Array, rval.Len())
		for ind := range out {
			val, err := valueOfRval(rval.Index(ind))
			if err != nil {
				return nil, err
			}
			out[ind] = val
		}
		return out, nil
	default:
		return nil, ErrInvalidInput.while(`converting to parameter value`).because(
			fmt.Errorf(`unsupported type %q`, rval.Type()),
		)
	}
}

func nullTypeOf(typ r.Type) Type {
	for typ.Kind() == r.Ptr {
		typ = typ.Elem()
	}
	if typ == typeTime {
		return TypeDateTime
	}
	switch typ.Kind() {
	case r.Interface:
		return ``
	case r.Bool:
		return TypeBoolean
	case r.Int, r.Int8, r.Int16, r.Int32, r.Int64, r.Uint, r.Uint8, r.Uint16, r.Uint32, r.Uint64:
		return TypeInteger
	case r.Float32, r.Float64:
		return TypeFloat
	case r.Slice, r.Array:
		return TypeArray
	default:
		return TypeString
	}
}

/*
Converts a loosely typed input, such as a value decoded from YAML or JSON,
according to an explicit tag. Nil always produces a `Null` of that tag.
Temporal tags accept `time.Time` or strings in `LayoutDate`, `LayoutDateTime`
(or RFC 3339) and `LayoutTime`. Arrays accept any slice; elements are
converted with `ValueOf`.
*/
func ParseValue(typ Type, src any) (Value, error) {
	if !typ.Valid() {
		return nil, ErrInvalidInput.while(`parsing parameter value`).because(
			fmt.Errorf(`unrecognized parameter type %q`, typ),
		)
	}
	if src == nil {
		return Null{Of: typ}, nil
	}

	val, err := parseValue(typ, src)
	if err != nil {
		return nil, ErrInvalidInput.while(`parsing parameter value`).because(err)
	}
	return val, nil
}

func parseValue(typ Type, src any) (Value, error) {
	switch typ {
	case TypeBoolean:
		if val, ok := src.(bool); ok {
			return Bool(val), nil
		}

	case TypeInteger:
		val, err := ValueOf(src)
		if err != nil {
			return nil, err
		}
		switch val := val.(type) {
		case Int:
			return val, nil
		case Float:
			if float64(val) == float64(int64(val)) {
				return Int(int64(val)), nil
			}
		}

	case TypeFloat:
		val, err := ValueOf(src)
		if err != nil {
			return nil, err
		}
		switch val := val.(type) {
		case Float:
			return val, nil
		case Int:
			return Float(float64(val)), nil
		}

	case TypeString:
		if val, ok := src.(string); ok {
			return String(val), nil
		}
		if val, ok := src.(fmt.Stringer); ok {
			return String(val.String()), nil
		}

	case TypeDate:
		inst, err := parseInstant(src, LayoutDate)
		if err != nil {
			return nil, err
		}
		return Date{inst}, nil

	case TypeDateTime:
		inst, err := parseInstant(src, time.RFC3339Nano, LayoutDateTime)
		if err != nil {
			return nil, err
		}
		return DateTime{inst}, nil

	case TypeTime:
		inst, err := parseInstant(src, LayoutTime)
		if err != nil {
			return nil, err
		}
		return Time{inst}, nil

	case TypeArray:
		rval := r.ValueOf(src)
		if rval.Kind() == r.Slice || rval.Kind() == r.Array {
			return valueOfRval(rval)
		}
	}

	return nil, fmt.Errorf(`can't convert %T to %v`, src, typ)
}

func parseInstant(src any, layouts ...string) (time.Time, error) {
	switch src := src.(type) {
	case time.Time:
		return src, nil
	case string:
		var err error
		for _, layout := range layouts {
			var inst time.Time
			inst, err = time.Parse(layout, src)
			if err == nil {
				return inst, nil
			}
		}
		return time.Time{}, err
	default:
		return time.Time{}, fmt.Errorf(`can't convert %T to time`, src)
	}
}

/*
Named, typed parameter value. Registered on a builder via
`(*Select).AddParameter` and consumed by an execution layer that binds values
by name.
*/
type Param struct {
	name  string
	value Value
}

// Makes a parameter. A nil value is treated as `Null{}`.
func NewParam(name string, val Value) Param {
	if val == nil {
		val = Null{}
	}
	return Param{name: name, value: val}
}

func (self Param) Name() string { return self.name }

func (self Param) Value() Value {
	if self.value == nil {
		return Null{}
	}
	return self.value
}

func (self Param) Type() Type { return self.Value().Type() }

// Implement `fmt.Stringer` for debug purposes.
func (self Param) String() string {
	return fmt.Sprintf(`%s(%v):%v`, self.name, self.Type(), self.Value().Native())
}

/*
Parameters keyed by name. Names are unique by construction. Iteration order of
the map is irrelevant; use `.Names` for a stable order.
*/
type Parameters map[string]Param

func (self Parameters) Has(name string) bool {
	_, ok := self[name]
	return ok
}

func (self Parameters) Get(name string) (Param, bool) {
	val, ok := self[name]
	return val, ok
}

// Returns parameter names in ascending order.
func (self Parameters) Names() []string {
	out := make([]string, 0, len(self))
	for key := range self {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// Returns a map of names to plain Go values, as used by drivers and libraries
// that bind named arguments from a map.
func (self Parameters) Native() map[string]any {
	out := make(map[string]any, len(self))
	for key, val := range self {
		out[key] = val.Value().Native()
	}
	return out
}

/*
Returns `sql.NamedArg` values sorted by name, suitable for passing as variadic
arguments to `database/sql` methods of drivers that support named parameters.
*/
func (self Parameters) NamedArgs() []any {
	names := self.Names()
	out := make([]any, len(names))
	for ind, name := range names {
		out[ind] = sql.Named(name, self[name].Value().Native())
	}
	return out
}

func (self Parameters) clone() Parameters {
	out := make(Parameters, len(self))
	for key, val := range self {
		out[key] = val
	}
	return out
}
