package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("Building Materials", "")
	require.NoError(t, err)
	assert.Equal(t, "building-materials", c.Slug)
	assert.Equal(t, c.ID.String(), c.Path)
	assert.True(t, c.IsRoot())
	assert.True(t, c.IsVisible)
	assert.Len(t, c.GetDomainEvents(), 1)

	_, err = NewCategory("", "")
	assert.Error(t, err)
}

func TestNewChildCategory(t *testing.T) {
	root, _ := NewCategory("Tools", "")
	child, err := NewChildCategory("Drills", "", root)
	require.NoError(t, err)
	assert.Equal(t, 1, child.Level)
	assert.Equal(t, root.Path+"/"+child.ID.String(), child.Path)
	assert.Equal(t, root.ID, *child.ParentID)
	assert.Equal(t, []string{root.ID.String()}, idsToStrings(child.AncestorIDs()))
	assert.True(t, root.IsAncestorOf(child))

	t.Run("rejects nil parent", func(t *testing.T) {
		_, err := NewChildCategory("X", "", nil)
		assert.Error(t, err)
	})

	t.Run("enforces max depth", func(t *testing.T) {
		parent := root
		for i := 1; i < MaxCategoryDepth; i++ {
			next, err := NewChildCategory("Level", "", parent)
			require.NoError(t, err)
			parent = next
		}
		_, err := NewChildCategory("Too deep", "", parent)
		assert.ErrorContains(t, err, "depth")
	})
}

func TestCategoryMoveTo(t *testing.T) {
	a, _ := NewCategory("A", "")
	b, _ := NewChildCategory("B", "", a)
	c, _ := NewChildCategory("C", "", b)

	t.Run("rejects cycles", func(t *testing.T) {
		_, err := a.MoveTo(c, 2)
		assert.ErrorContains(t, err, "descendants")
		_, err = a.MoveTo(a, 0)
		assert.Error(t, err)
	})

	t.Run("moves to root and rewrites descendants", func(t *testing.T) {
		old, err := b.MoveTo(nil, 1)
		require.NoError(t, err)
		assert.Equal(t, b.ID.String(), b.Path)
		assert.Equal(t, 0, b.Level)

		c.RewritePath(old, b.Path)
		assert.Equal(t, b.ID.String()+"/"+c.ID.String(), c.Path)
		assert.Equal(t, 1, c.Level)
	})
}

func TestBuildTree(t *testing.T) {
	root, _ := NewCategory("Root", "")
	child, _ := NewChildCategory("Child", "", root)
	other, _ := NewCategory("Other", "")

	tree := BuildTree([]Category{*root, *child, *other})
	require.Len(t, tree, 2)
	assert.Equal(t, "Root", tree[0].Category.Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Child", tree[0].Children[0].Category.Name)
	assert.Empty(t, tree[1].Children)
}
