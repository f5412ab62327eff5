package ast

import (
	"strings"

	"github.com/jordyorel/orus-lang-sub003/internal/value"
)

// Constraint restricts what a generic type parameter may bind to.
type Constraint uint8

const (
	ConstraintNone Constraint = iota
	ConstraintNumeric
	ConstraintComparable
)

// Type is the tagged sum mirroring Value's kinds, plus void, generic,
// array, struct, and function. Two Types are equal
// structurally, not by pointer identity — use Equal.
type Type interface {
	String() string
	Equal(Type) bool
}

// Primitive covers the scalar kinds shared with value.Kind, plus Void
// and Nil.
type Primitive struct {
	Kind value.Kind
	Void bool
}

func Void() Type { return &Primitive{Void: true} }
func I32T() Type { return &Primitive{Kind: value.KindI32} }
func I64T() Type { return &Primitive{Kind: value.KindI64} }
func U32T() Type { return &Primitive{Kind: value.KindU32} }
func U64T() Type { return &Primitive{Kind: value.KindU64} }
func F64T() Type { return &Primitive{Kind: value.KindF64} }
func BoolT() Type { return &Primitive{Kind: value.KindBool} }
func StringT() Type { return &Primitive{Kind: value.KindString} }
func NilT() Type { return &Primitive{Kind: value.KindNil} }

func (p *Primitive) String() string {
	if p.Void {
		return "void"
	}
	return p.Kind.String()
}

func (p *Primitive) Equal(o Type) bool {
	op, ok := o.(*Primitive)
	return ok && op.Void == p.Void && op.Kind == p.Kind
}

func (p *Primitive) IsNumeric() bool { return !p.Void && p.Kind.IsNumeric() }

// Generic is a type parameter, e.g. <T: numeric>.
type Generic struct {
	Name       string
	Constraint Constraint
}

func (g *Generic) String() string { return g.Name }
func (g *Generic) Equal(o Type) bool {
	og, ok := o.(*Generic)
	return ok && og.Name == g.Name && og.Constraint == g.Constraint
}

// Array is array(elem, optional fixed length). Length == -1 means
// "unsized"; an unsized array unifies with any sized array of the same
// element type during declaration.
type Array struct {
	Elem   Type
	Length int
}

func (a *Array) String() string {
	if a.Length < 0 {
		return a.Elem.String() + "[]"
	}
	return a.Elem.String() + "[" + itoa(a.Length) + "]"
}

func (a *Array) Equal(o Type) bool {
	oa, ok := o.(*Array)
	if !ok || !a.Elem.Equal(oa.Elem) {
		return false
	}
	if a.Length < 0 || oa.Length < 0 {
		return true // unsized unifies with any sized array of the same element
	}
	return a.Length == oa.Length
}

// StructField is one ordered field of a Struct type.
type StructField struct {
	Name string
	Type Type
}

// Struct is struct(name, ordered fields, generic params).
type Struct struct {
	Name          string
	Fields        []StructField
	GenericParams []*Generic
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) Equal(o Type) bool {
	os, ok := o.(*Struct)
	return ok && os.Name == s.Name
}

func (s *Struct) FieldType(name string) (Type, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// FuncType is function(param types, return type).
type FuncType struct {
	Params []Type
	Return Type
}

func (f *FuncType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return "fn(" + strings.Join(parts, ", ") + ") -> " + f.Return.String()
}

func (f *FuncType) Equal(o Type) bool {
	of, ok := o.(*FuncType)
	if !ok || len(of.Params) != len(f.Params) || !f.Return.Equal(of.Return) {
		return false
	}
	for i, p := range f.Params {
		if !p.Equal(of.Params[i]) {
			return false
		}
	}
	return true
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
