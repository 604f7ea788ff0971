package catalog

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Gallery page size bounds
const (
	DefaultGalleryPageSize = 12
	MaxGalleryPageSize     = 48
)

// GalleryEntry is one product candidate with the keys it is ordered by
type GalleryEntry struct {
	ProductID   uuid.UUID
	Featured    bool
	Position    int
	PublishedAt time.Time
}

// GalleryTile is a product placed in a gallery row
type GalleryTile struct {
	ProductID uuid.UUID
	Span      int
}

// GalleryRow is a single rendered row of tiles
type GalleryRow struct {
	Tiles []GalleryTile
}

// GalleryPage is one page of an arranged gallery
type GalleryPage struct {
	Rows       []GalleryRow
	ProductIDs []uuid.UUID
	NextCursor *uuid.UUID
	HasMore    bool
}

// SortGalleryEntries orders entries featured first, then by position for manual
// collections or newest first for automatic ones, with the ID as a tiebreaker.
func SortGalleryEntries(entries []GalleryEntry, manual bool) {
	slices.SortStableFunc(entries, func(a, b GalleryEntry) int {
		if a.Featured != b.Featured {
			if a.Featured {
				return -1
			}
			return 1
		}
		if manual {
			if c := cmp.Compare(a.Position, b.Position); c != 0 {
				return c
			}
		} else if !a.PublishedAt.Equal(b.PublishedAt) {
			if a.PublishedAt.After(b.PublishedAt) {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.ProductID.String(), b.ProductID.String())
	})
}

// PaginateGallery cuts one page out of sorted entries.
// With a cursor, entries are skipped up to and including the cursor product;
// an unknown cursor yields an empty page. Without a cursor, page (1-based) is used.
func PaginateGallery(entries []GalleryEntry, cursor *uuid.UUID, page, pageSize int) ([]GalleryEntry, bool) {
	pageSize = clampGalleryPageSize(pageSize)

	var rest []GalleryEntry
	if cursor != nil {
		idx := slices.IndexFunc(entries, func(e GalleryEntry) bool { return e.ProductID == *cursor })
		if idx < 0 {
			return nil, false
		}
		rest = entries[idx+1:]
	} else {
		if page < 1 {
			page = 1
		}
		start := (page - 1) * pageSize
		if start >= len(entries) {
			return nil, false
		}
		rest = entries[start:]
	}

	if len(rest) > pageSize {
		return rest[:pageSize], true
	}
	return rest, false
}

// ArrangeGallery lays a page of entries out into rows of columns slots.
// A featured product spans two slots when it opens a row that has at least two
// slots; a row closes once its spans fill every slot.
func ArrangeGallery(entries []GalleryEntry, columns int) []GalleryRow {
	if columns < MinGalleryColumns || columns > MaxGalleryColumns {
		columns = DefaultGalleryColumns
	}

	rows := make([]GalleryRow, 0)
	var current GalleryRow
	used := 0
	for _, entry := range entries {
		span := 1
		if entry.Featured && used == 0 && columns >= 2 {
			span = 2
		}
		current.Tiles = append(current.Tiles, GalleryTile{ProductID: entry.ProductID, Span: span})
		used += span
		if used >= columns {
			rows = append(rows, current)
			current = GalleryRow{}
			used = 0
		}
	}
	if len(current.Tiles) > 0 {
		rows = append(rows, current)
	}
	return rows
}

// BuildGalleryPage sorts, paginates and arranges entries in one step
func BuildGalleryPage(entries []GalleryEntry, manual bool, columns int, cursor *uuid.UUID, page, pageSize int) GalleryPage {
	sorted := slices.Clone(entries)
	SortGalleryEntries(sorted, manual)

	window, hasMore := PaginateGallery(sorted, cursor, page, pageSize)
	ids := make([]uuid.UUID, len(window))
	for i, e := range window {
		ids[i] = e.ProductID
	}

	result := GalleryPage{
		Rows:       ArrangeGallery(window, columns),
		ProductIDs: ids,
		HasMore:    hasMore,
	}
	if hasMore && len(window) > 0 {
		last := window[len(window)-1].ProductID
		result.NextCursor = &last
	}
	return result
}

func clampGalleryPageSize(size int) int {
	if size < 1 {
		return DefaultGalleryPageSize
	}
	if size > MaxGalleryPageSize {
		return MaxGalleryPageSize
	}
	return size
}
