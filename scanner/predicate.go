package scanner

import (
	"fmt"
	"reflect"
	"strings"
)

// Predicate decides whether a discovered object is of interest. Returning an
// error is a discovery failure for that object.
type Predicate func(obj Object) (bool, error)

// Callback is invoked once per matching object, typically to record it in
// ctx. Returning an error is a discovery failure for that object.
type Callback func(name string, obj Object, ctx Context) error

// MatchAll accepts every object.
func MatchAll(Object) (bool, error) { return true, nil }

// Ignore is a callback that does nothing.
func Ignore(string, Object, Context) error { return nil }

// Collect stores every match under its name in the context.
func Collect(name string, obj Object, ctx Context) error {
	ctx[name] = obj.Interface()
	return nil
}

// CollectQualified stores every match under its qualified module name.
func CollectQualified(_ string, obj Object, ctx Context) error {
	ctx[obj.QualifiedName()] = obj.Interface()
	return nil
}

// KindIs accepts objects of any of the given kinds.
func KindIs(kinds ...Kind) Predicate {
	return func(obj Object) (bool, error) {
		for _, k := range kinds {
			if obj.Kind == k {
				return true, nil
			}
		}
		return false, nil
	}
}

// NamePrefix accepts objects whose name starts with prefix.
func NamePrefix(prefix string) Predicate {
	return func(obj Object) (bool, error) {
		return strings.HasPrefix(obj.Name, prefix), nil
	}
}

// AssignableTo accepts var and const objects whose value can be assigned to
// the type of sample, e.g. AssignableTo(func() string(nil)).
func AssignableTo(sample any) Predicate {
	want := reflect.TypeOf(sample)
	return func(obj Object) (bool, error) {
		if want == nil {
			return false, fmt.Errorf("scanner: AssignableTo needs a typed sample")
		}
		if obj.Kind == KindType {
			return false, nil
		}
		t := obj.Type()
		return t != nil && t.AssignableTo(want), nil
	}
}

// Embeds accepts type objects whose struct embeds a type named name, directly
// or through another embedded struct. It is the Go reading of "subclass of":
// with type Foo struct{ Base }, Embeds("Base") accepts Foo and rejects Base.
func Embeds(name string) Predicate {
	return func(obj Object) (bool, error) {
		if obj.Kind != KindType {
			return false, nil
		}
		return embeds(obj.Type(), name, map[reflect.Type]bool{}), nil
	}
}

func embeds(t reflect.Type, name string, seen map[reflect.Type]bool) bool {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || seen[t] {
		return false
	}
	seen[t] = true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		if f.Name == name || embeds(f.Type, name, seen) {
			return true
		}
	}
	return false
}

// All accepts objects accepted by every predicate, stopping at the first
// rejection or error.
func All(preds ...Predicate) Predicate {
	return func(obj Object) (bool, error) {
		for _, pred := range preds {
			ok, err := pred(obj)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}

// Any accepts objects accepted by at least one predicate.
func Any(preds ...Predicate) Predicate {
	return func(obj Object) (bool, error) {
		for _, pred := range preds {
			ok, err := pred(obj)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}

// Not inverts a predicate. Errors pass through.
func Not(pred Predicate) Predicate {
	return func(obj Object) (bool, error) {
		ok, err := pred(obj)
		if err != nil {
			return false, err
		}
		return !ok, nil
	}
}
