package media

import (
	"sort"
	"strconv"
	"strings"

	"github.com/suzuhara/media-api/internal/models"
)

// Listing order is deliberate: camera dumps name files with numeric frame
// counters, so "10.jpg" must sort after "2.jpg". The filename component
// before the first dot is interpreted as an unsigned integer when it parses
// as one; numeric names sort before non-numeric ones, and the raw filename
// plus row id serve as the final tie-breaks so the order is total.

// filenameKey is the portion of the name before the first dot.
func filenameKey(name string) string {
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}

// numericKey parses the filename key as an unsigned integer.
func numericKey(name string) (uint64, bool) {
	n, err := strconv.ParseUint(filenameKey(name), 10, 64)
	return n, err == nil
}

// compareFilenames orders numeric names numerically before non-numeric
// names, both falling back to the raw string.
func compareFilenames(a, b string) int {
	an, aok := numericKey(a)
	bn, bok := numericKey(b)
	switch {
	case aok && bok:
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

// SortByCreated orders rows by the calendar date of created_at, then the
// full timestamp, then the numeric-filename key, then filename, then id.
func SortByCreated(items []models.Media) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ad := a.CreatedAt.Format("2006-01-02")
		bd := b.CreatedAt.Format("2006-01-02")
		if ad != bd {
			return ad < bd
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if c := compareFilenames(a.Filename, b.Filename); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// SortByTaken orders rows by taken_at ascending with nulls last, then the
// numeric-filename key, then filename, then id.
func SortByTaken(items []models.Media) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.TakenAt == nil && b.TakenAt != nil:
			return false
		case a.TakenAt != nil && b.TakenAt == nil:
			return true
		case a.TakenAt != nil && b.TakenAt != nil:
			if !a.TakenAt.Equal(*b.TakenAt) {
				return a.TakenAt.Before(*b.TakenAt)
			}
		}
		if c := compareFilenames(a.Filename, b.Filename); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// FirstInAlbum picks the album's representative item under the default
// created_at ordering. Returns nil for an empty slice.
func FirstInAlbum(items []models.Media) *models.Media {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]models.Media, len(items))
	copy(sorted, items)
	SortByCreated(sorted)
	return &sorted[0]
}

// Paginate slices items for a 1-indexed page of the given size.
func Paginate(items []models.Media, page, size int) []models.Media {
	offset := (page - 1) * size
	if offset >= len(items) {
		return []models.Media{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
