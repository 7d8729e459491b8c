package vm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeInterning(t *testing.T) {
	t.Parallel()
	tree := NewShapeTree()
	root := tree.Root()

	a1 := root.AddProperty(NewStringKey("a"), FlagsDefault)
	a2 := root.AddProperty(NewStringKey("a"), FlagsDefault)
	require.Same(t, a1, a2)
	assert.Equal(t, a1.ID(), a2.ID())

	aRO := root.AddProperty(NewStringKey("a"), FlagEnumerable)
	assert.NotSame(t, a1, aRO, "flags are part of the transition key")

	ab := a1.AddProperty(NewStringKey("b"), FlagsDefault)
	assert.Same(t, a1, ab.Parent())
	assert.Equal(t, 2, ab.Len())
	assert.Equal(t, 4, tree.Len())
}

func TestShapeLookupOffsets(t *testing.T) {
	t.Parallel()
	tree := NewShapeTree()
	s := tree.Root()
	names := []string{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9"}
	for _, n := range names {
		s = s.AddProperty(NewStringKey(n), FlagsDefault)
	}
	require.NotNil(t, s.index, "large shapes build an index")
	for i, n := range names {
		f, ok := s.Lookup(NewStringKey(n))
		require.True(t, ok, n)
		assert.Equal(t, i, f.Offset)
	}
	_, ok := s.Lookup(NewStringKey("nope"))
	assert.False(t, ok)
}

func TestShapeAddExistingKeyPanics(t *testing.T) {
	t.Parallel()
	tree := NewShapeTree()
	s := tree.Root().AddProperty(NewStringKey("a"), FlagsDefault)
	assert.Panics(t, func() { s.AddProperty(NewStringKey("a"), FlagEnumerable) })
}

func TestShapeForeignTreePanics(t *testing.T) {
	t.Parallel()
	s := NewShapeTree().Root()
	assert.Panics(t, func() { NewShapeTree().AddProperty(s, NewStringKey("a"), FlagsDefault) })
}

func TestShapeHiddenKeys(t *testing.T) {
	t.Parallel()
	obj := NewObject(DefaultObjectPrototype).AsPlainObject()
	obj.SetOwn("a", IntegerValue(1))
	obj.SetHidden(HomeObjectKey, NewString("home"))
	obj.SetOwn("b", IntegerValue(2))

	assert.Equal(t, []string{"a", "b"}, obj.OwnKeys())
	assert.False(t, obj.HasOwnByKey(HomeObjectKey))
	_, ok := obj.GetOwnByKey(HomeObjectKey)
	assert.False(t, ok)
	assert.False(t, obj.DeleteOwnByKey(HomeObjectKey))

	v, ok := obj.GetHidden(HomeObjectKey)
	require.True(t, ok)
	assert.Equal(t, "home", v.AsString())
	assert.Equal(t, 3, obj.Shape().Len(), "hidden slots occupy storage")

	plain := NewObject(DefaultObjectPrototype).AsPlainObject()
	plain.SetOwn("a", IntegerValue(1))
	plain.SetOwn("b", IntegerValue(2))
	assert.NotSame(t, plain.Shape(), obj.Shape(), "hidden slots take part in shape identity")

	assert.Panics(t, func() { obj.GetHidden(NewStringKey("a")) })
}

func TestShapeWithFlagsReplaysHistory(t *testing.T) {
	t.Parallel()
	tree := NewShapeTree()
	a, b := NewStringKey("a"), NewStringKey("b")
	s := tree.Root().AddProperty(a, FlagsDefault).AddProperty(b, FlagsDefault)
	ro := tree.WithFlags(s, a, FlagEnumerable)
	direct := tree.Root().AddProperty(a, FlagEnumerable).AddProperty(b, FlagsDefault)
	assert.Same(t, direct, ro)
	assert.Panics(t, func() { tree.WithFlags(s, NewStringKey("c"), FlagsDefault) })
	assert.Panics(t, func() { tree.Without(s, NewStringKey("c")) })
}

func TestShapeTreeConcurrentInterning(t *testing.T) {
	t.Parallel()
	tree := NewShapeTree()
	const workers = 8
	results := make([]*Shape, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			s := tree.Root()
			for _, n := range []string{"x", "y", "z"} {
				s = s.AddProperty(NewStringKey(n), FlagsDefault)
			}
			results[w] = s
		}(w)
	}
	wg.Wait()
	for _, s := range results[1:] {
		assert.Same(t, results[0], s)
	}
	assert.Equal(t, 4, tree.Len())
}
