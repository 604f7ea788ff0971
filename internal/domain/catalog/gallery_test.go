package catalog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func galleryEntries(n int, featured ...int) []GalleryEntry {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]GalleryEntry, n)
	for i := range entries {
		entries[i] = GalleryEntry{
			ProductID:   uuid.New(),
			Position:    i,
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	for _, f := range featured {
		entries[f].Featured = true
	}
	return entries
}

func TestSortGalleryEntries(t *testing.T) {
	t.Run("manual uses featured then position", func(t *testing.T) {
		entries := galleryEntries(4, 2)
		want := []uuid.UUID{entries[2].ProductID, entries[0].ProductID, entries[1].ProductID, entries[3].ProductID}
		SortGalleryEntries(entries, true)
		assert.Equal(t, want, entryIDs(entries))
	})

	t.Run("automatic uses featured then newest", func(t *testing.T) {
		entries := galleryEntries(3, 0)
		want := []uuid.UUID{entries[0].ProductID, entries[2].ProductID, entries[1].ProductID}
		SortGalleryEntries(entries, false)
		assert.Equal(t, want, entryIDs(entries))
	})
}

func TestPaginateGallery(t *testing.T) {
	entries := galleryEntries(5)

	page, more := PaginateGallery(entries, nil, 1, 2)
	assert.Equal(t, entryIDs(entries[:2]), entryIDs(page))
	assert.True(t, more)

	page, more = PaginateGallery(entries, nil, 3, 2)
	assert.Equal(t, entryIDs(entries[4:]), entryIDs(page))
	assert.False(t, more)

	page, _ = PaginateGallery(entries, nil, 4, 2)
	assert.Empty(t, page)

	cursor := entries[1].ProductID
	page, more = PaginateGallery(entries, &cursor, 1, 2)
	assert.Equal(t, entryIDs(entries[2:4]), entryIDs(page))
	assert.True(t, more)

	unknown := uuid.New()
	page, more = PaginateGallery(entries, &unknown, 1, 2)
	assert.Empty(t, page)
	assert.False(t, more)
}

func TestArrangeGallery(t *testing.T) {
	t.Run("plain rows", func(t *testing.T) {
		rows := ArrangeGallery(galleryEntries(7), 3)
		require.Len(t, rows, 3)
		assert.Len(t, rows[0].Tiles, 3)
		assert.Len(t, rows[2].Tiles, 1)
	})

	t.Run("featured opener spans two", func(t *testing.T) {
		entries := galleryEntries(5, 0, 3)
		rows := ArrangeGallery(entries, 3)
		require.Len(t, rows, 2)
		assert.Equal(t, []int{2, 1}, spans(rows[0]))
		assert.Equal(t, []int{1, 1, 1}, spans(rows[1]))
	})

	t.Run("featured mid row keeps single span", func(t *testing.T) {
		entries := galleryEntries(3, 1)
		rows := ArrangeGallery(entries, 3)
		require.Len(t, rows, 1)
		assert.Equal(t, []int{1, 1, 1}, spans(rows[0]))
	})

	t.Run("single column never spans", func(t *testing.T) {
		rows := ArrangeGallery(galleryEntries(2, 0), 1)
		require.Len(t, rows, 2)
		assert.Equal(t, []int{1}, spans(rows[0]))
	})

	t.Run("invalid columns fall back to default", func(t *testing.T) {
		rows := ArrangeGallery(galleryEntries(6), 0)
		assert.Len(t, rows, 2)
	})
}

func TestBuildGalleryPage(t *testing.T) {
	entries := galleryEntries(5, 4)

	first := BuildGalleryPage(entries, true, 3, nil, 1, 3)
	require.True(t, first.HasMore)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, entries[4].ProductID, first.ProductIDs[0])
	assert.Equal(t, first.ProductIDs[2], *first.NextCursor)

	second := BuildGalleryPage(entries, true, 3, first.NextCursor, 1, 3)
	assert.False(t, second.HasMore)
	assert.Nil(t, second.NextCursor)
	assert.Len(t, second.ProductIDs, 2)
	assert.NotContains(t, second.ProductIDs, first.ProductIDs[0])
}

func entryIDs(entries []GalleryEntry) []uuid.UUID {
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}
	return ids
}

func spans(row GalleryRow) []int {
	out := make([]int, len(row.Tiles))
	for i, tile := range row.Tiles {
		out[i] = tile.Span
	}
	return out
}
