package scanner

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateCombinators(t *testing.T) {
	fn := Object{Name: "NewHandler", Kind: KindFunc, Value: reflect.ValueOf(func() string { return "" })}
	v := Object{Name: "Handlers", Kind: KindVar, Value: reflect.ValueOf(3)}
	typ := Object{Name: "Handler", Kind: KindType, Value: reflect.ValueOf(struct{}{})}

	check := func(pred Predicate, obj Object) bool {
		ok, err := pred(obj)
		require.NoError(t, err)
		return ok
	}

	assert.True(t, check(KindIs(KindFunc), fn))
	assert.False(t, check(KindIs(KindFunc), v))
	assert.True(t, check(KindIs(KindVar, KindType), typ))
	assert.True(t, check(NamePrefix("New"), fn))
	assert.False(t, check(NamePrefix("New"), v))
	assert.True(t, check(All(KindIs(KindFunc), NamePrefix("New")), fn))
	assert.False(t, check(All(KindIs(KindFunc), NamePrefix("Old")), fn))
	assert.True(t, check(Any(KindIs(KindType), NamePrefix("Hand")), v))
	assert.False(t, check(Any(), v))
	assert.True(t, check(Not(KindIs(KindFunc)), v))
	assert.True(t, check(AssignableTo((func() string)(nil)), fn))
	assert.False(t, check(AssignableTo((func() string)(nil)), v))
	assert.False(t, check(AssignableTo(struct{}{}), typ))
}

type embedBase struct{}

type embedChild struct {
	embedBase
	Name string
}

type embedGrandchild struct {
	*embedChild
}

type embedNamedField struct {
	Base embedBase
}

func TestEmbeds(t *testing.T) {
	typeObj := func(name string, v any) Object {
		return Object{Name: name, Kind: KindType, Value: reflect.ValueOf(v)}
	}
	pred := Embeds("embedBase")
	cases := []struct {
		obj  Object
		want bool
	}{
		{typeObj("Base", embedBase{}), false},
		{typeObj("Child", embedChild{}), true},
		{typeObj("Grandchild", embedGrandchild{}), true},
		{typeObj("NamedField", embedNamedField{}), false},
		{Object{Name: "Value", Kind: KindVar, Value: reflect.ValueOf(embedChild{})}, false},
	}
	for _, tc := range cases {
		got, err := pred(tc.obj)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.obj.Name)
	}
}

func TestPredicateCombinatorsPropagateErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := func(Object) (bool, error) { return false, boom }
	obj := Object{Name: "X", Kind: KindVar}

	_, err := All(MatchAll, failing)(obj)
	assert.ErrorIs(t, err, boom)
	_, err = Any(failing, MatchAll)(obj)
	assert.ErrorIs(t, err, boom)
	_, err = Not(failing)(obj)
	assert.ErrorIs(t, err, boom)
	_, err = AssignableTo(nil)(obj)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("func")
	require.NoError(t, err)
	assert.Equal(t, KindFunc, k)
	_, err = ParseKind("class")
	assert.Error(t, err)
}

func TestCollectHelpers(t *testing.T) {
	ctx := Context{}
	obj := Object{Name: "Foo", Module: "pkg.a", Kind: KindVar, Value: reflect.ValueOf(7)}
	require.NoError(t, Collect("Foo", obj, ctx))
	require.NoError(t, CollectQualified("Foo", obj, ctx))
	require.NoError(t, Ignore("Foo", obj, ctx))
	assert.Equal(t, Context{"Foo": 7, "pkg.a.Foo": 7}, ctx)
	assert.Nil(t, Object{}.Interface())
	assert.Nil(t, Object{}.Type())
}

func TestContextCloneAndMerge(t *testing.T) {
	var nilCtx Context
	clone := nilCtx.Clone()
	require.NotNil(t, clone)
	assert.Empty(t, clone)

	ctx := Context{"a": 1}
	clone = ctx.Clone()
	clone["b"] = 2
	assert.NotContains(t, ctx, "b")
	ctx.Merge(Context{"a": 3, "c": 4})
	assert.Equal(t, Context{"a": 3, "c": 4}, ctx)
}
