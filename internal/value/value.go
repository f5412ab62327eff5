// Package value defines the tagged runtime Value used at every boundary
// between the compiler, the chunk's constants pool, and the (externally
// specified) interpreter.
package value

import "fmt"

// Kind discriminates the variants of Value and, by extension, of Type.
type Kind uint8

const (
	KindI32 Kind = iota
	KindI64
	KindU32
	KindU64
	KindF64
	KindBool
	KindString
	KindNil
	KindArray
	KindStruct
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindF64:
		return "f64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindNil:
		return "nil"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// IsNumeric reports whether k participates in the numeric promotion rules.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindI32, KindI64, KindU32, KindU64, KindF64:
		return true
	default:
		return false
	}
}

// Array is the ordered-sequence heap object. Fixed arrays (Fixed == true)
// reject in-place mutators.
type Array struct {
	Elements []Value
	Fixed    bool
}

// Struct is the ordered-named-fields heap object.
type Struct struct {
	Name   string
	Fields map[string]Value
	Order  []string // declaration order, for deterministic disassembly/printing
}

func (s *Struct) Get(name string) (Value, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

func (s *Struct) Set(name string, v Value) {
	if _, exists := s.Fields[name]; !exists {
		s.Order = append(s.Order, name)
	}
	s.Fields[name] = v
}

// Value is a tagged sum over every runtime kind. Numeric payloads share a
// single int64/float64 slot; heap kinds (string/array/struct) share the
// obj slot. Equality is by-variant: numeric comparison is within-variant
// only (cross-kind comparison requires an explicit Cast in the AST).
type Value struct {
	Kind Kind

	i   int64   // i32/i64/u32/u64 bit pattern, bool as 0/1, function index
	f   float64 // f64 payload
	obj any     // *string (interned), *Array, *Struct
}

func I32(v int32) Value  { return Value{Kind: KindI32, i: int64(v)} }
func I64(v int64) Value  { return Value{Kind: KindI64, i: v} }
func U32(v uint32) Value { return Value{Kind: KindU32, i: int64(v)} }
func U64(v uint64) Value { return Value{Kind: KindU64, i: int64(v)} }
func F64(v float64) Value {
	return Value{Kind: KindF64, f: v}
}

func Bool(v bool) Value {
	var i int64
	if v {
		i = 1
	}
	return Value{Kind: KindBool, i: i}
}

func Nil() Value { return Value{Kind: KindNil} }

// Str wraps a string pointer. Chunks are responsible for interning:
// Chunk.AddConstant reuses an existing pool entry for a string of the
// same content, so string constants built with Str go through it.
func Str(interned *string) Value { return Value{Kind: KindString, obj: interned} }

func NewArray(elems []Value, fixed bool) Value {
	return Value{Kind: KindArray, obj: &Array{Elements: elems, Fixed: fixed}}
}

func NewStruct(name string, order []string) Value {
	return Value{Kind: KindStruct, obj: &Struct{Name: name, Fields: map[string]Value{}, Order: append([]string{}, order...)}}
}

// FunctionHandle is an index into the VM's function table.
func FunctionHandle(index int) Value { return Value{Kind: KindFunction, i: int64(index)} }

func (v Value) AsI32() int32  { return int32(v.i) }
func (v Value) AsI64() int64  { return v.i }
func (v Value) AsU32() uint32 { return uint32(v.i) }
func (v Value) AsU64() uint64 { return uint64(v.i) }
func (v Value) AsF64() float64 {
	return v.f
}
func (v Value) AsBool() bool { return v.i != 0 }
func (v Value) AsString() string {
	if s, ok := v.obj.(*string); ok {
		return *s
	}
	return ""
}
func (v Value) StringPtr() *string {
	s, _ := v.obj.(*string)
	return s
}
func (v Value) AsArray() *Array      { a, _ := v.obj.(*Array); return a }
func (v Value) AsStruct() *Struct    { s, _ := v.obj.(*Struct); return s }
func (v Value) AsFunctionIndex() int { return int(v.i) }

// Equal implements by-variant equality: two nils are equal, numeric kinds
// compare only against the same kind, strings compare by identity (since
// they are interned, content-equal strings share one pointer) falling
// back to content, and arrays/structs compare element/field-wise.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindI32, KindI64, KindU32, KindU64, KindBool:
		return v.i == other.i
	case KindF64:
		return v.f == other.f
	case KindNil:
		return true
	case KindString:
		return v.StringPtr() == other.StringPtr() || v.AsString() == other.AsString()
	case KindArray:
		a, b := v.AsArray(), other.AsArray()
		if a == nil || b == nil || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !a.Elements[i].Equal(b.Elements[i]) {
				return false
			}
		}
		return true
	case KindStruct:
		a, b := v.AsStruct(), other.AsStruct()
		if a == nil || b == nil || a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for k, av := range a.Fields {
			bv, ok := b.Fields[k]
			if !ok || !av.Equal(bv) {
				return false
			}
		}
		return true
	case KindFunction:
		return v.i == other.i
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindI32:
		return fmt.Sprintf("%d", v.AsI32())
	case KindI64:
		return fmt.Sprintf("%d", v.AsI64())
	case KindU32:
		return fmt.Sprintf("%d", v.AsU32())
	case KindU64:
		return fmt.Sprintf("%d", v.AsU64())
	case KindF64:
		return fmt.Sprintf("%g", v.f)
	case KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case KindNil:
		return "nil"
	case KindString:
		return v.AsString()
	case KindArray:
		return fmt.Sprintf("<array len=%d>", len(v.AsArray().Elements))
	case KindStruct:
		return fmt.Sprintf("<struct %s>", v.AsStruct().Name)
	case KindFunction:
		return fmt.Sprintf("<fn #%d>", v.AsFunctionIndex())
	default:
		return "?"
	}
}
