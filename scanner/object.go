package scanner

import (
	"fmt"
	"reflect"
)

// Kind classifies a top-level identifier.
type Kind string

const (
	KindConst Kind = "const"
	KindVar   Kind = "var"
	KindFunc  Kind = "func"
	KindType  Kind = "type"
)

// ParseKind maps a user supplied string onto a Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindConst, KindVar, KindFunc, KindType:
		return Kind(value), nil
	default:
		return "", fmt.Errorf("scanner: unknown kind %q (want const, var, func or type)", value)
	}
}

// Object is one exported top-level identifier of a loaded module.
//
// For KindType objects Value holds the zero value of the declared type, so
// Value.Type() is the type itself.
type Object struct {
	Name   string
	Kind   Kind
	Module string
	Value  reflect.Value
}

// Interface returns the underlying value, or nil when the value is invalid.
func (o Object) Interface() any {
	if !o.Value.IsValid() || !o.Value.CanInterface() {
		return nil
	}
	return o.Value.Interface()
}

// Type returns the reflected type of the object, or nil when unknown.
func (o Object) Type() reflect.Type {
	if !o.Value.IsValid() {
		return nil
	}
	return o.Value.Type()
}

// QualifiedName is the module path joined with the object name.
func (o Object) QualifiedName() string {
	if o.Module == "" {
		return o.Name
	}
	return o.Module + "." + o.Name
}
