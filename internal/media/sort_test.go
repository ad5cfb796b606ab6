package media_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suzuhara/media-api/internal/media"
	"github.com/suzuhara/media-api/internal/models"
)

func mediaRow(id uint, filename string, created time.Time) models.Media {
	return models.Media{ID: id, Filename: filename, CreatedAt: created}
}

func filenames(items []models.Media) []string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.Filename
	}
	return out
}

func TestSortByCreated(t *testing.T) {
	day := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("Numeric names before lexicographic", func(t *testing.T) {
		items := []models.Media{
			mediaRow(1, "10.jpg", day),
			mediaRow(2, "a.jpg", day),
			mediaRow(3, "2.jpg", day),
		}
		media.SortByCreated(items)
		assert.Equal(t, []string{"2.jpg", "10.jpg", "a.jpg"}, filenames(items))
	})

	t.Run("Date bucket precedes filename", func(t *testing.T) {
		earlier := day.AddDate(0, 0, -1)
		items := []models.Media{
			mediaRow(1, "1.jpg", day),
			mediaRow(2, "999.jpg", earlier),
		}
		media.SortByCreated(items)
		assert.Equal(t, []string{"999.jpg", "1.jpg"}, filenames(items))
	})

	t.Run("Timestamp within same date precedes filename", func(t *testing.T) {
		items := []models.Media{
			mediaRow(1, "1.jpg", day.Add(time.Hour)),
			mediaRow(2, "999.jpg", day),
		}
		media.SortByCreated(items)
		assert.Equal(t, []string{"999.jpg", "1.jpg"}, filenames(items))
	})

	t.Run("Id is the final tie-break", func(t *testing.T) {
		items := []models.Media{
			mediaRow(7, "same.jpg", day),
			mediaRow(3, "same.jpg", day),
		}
		media.SortByCreated(items)
		assert.Equal(t, uint(3), items[0].ID)
	})

	t.Run("Prefix before first dot only", func(t *testing.T) {
		items := []models.Media{
			mediaRow(1, "10.x.jpg", day),
			mediaRow(2, "2.y.jpg", day),
		}
		media.SortByCreated(items)
		assert.Equal(t, []string{"2.y.jpg", "10.x.jpg"}, filenames(items))
	})
}

func TestSortByTaken(t *testing.T) {
	day := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	taken1 := day.Add(-48 * time.Hour)
	taken2 := day.Add(-24 * time.Hour)

	t.Run("Nulls sort last", func(t *testing.T) {
		items := []models.Media{
			{ID: 1, Filename: "no-taken.jpg", CreatedAt: day},
			{ID: 2, Filename: "b.jpg", TakenAt: &taken2, CreatedAt: day},
			{ID: 3, Filename: "a.jpg", TakenAt: &taken1, CreatedAt: day},
		}
		media.SortByTaken(items)
		assert.Equal(t, []string{"a.jpg", "b.jpg", "no-taken.jpg"}, filenames(items))
	})

	t.Run("Equal taken_at falls through to numeric filename", func(t *testing.T) {
		items := []models.Media{
			{ID: 1, Filename: "10.jpg", TakenAt: &taken1, CreatedAt: day},
			{ID: 2, Filename: "2.jpg", TakenAt: &taken1, CreatedAt: day},
		}
		media.SortByTaken(items)
		assert.Equal(t, []string{"2.jpg", "10.jpg"}, filenames(items))
	})
}

func TestFirstInAlbum(t *testing.T) {
	day := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("Empty album has no first item", func(t *testing.T) {
		assert.Nil(t, media.FirstInAlbum(nil))
	})

	t.Run("Picks default-order head without mutating input", func(t *testing.T) {
		items := []models.Media{
			mediaRow(1, "10.jpg", day),
			mediaRow(2, "2.jpg", day),
		}
		first := media.FirstInAlbum(items)
		assert.Equal(t, "2.jpg", first.Filename)
		assert.Equal(t, "10.jpg", items[0].Filename)
	})
}

func TestPaginate(t *testing.T) {
	day := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	items := []models.Media{
		mediaRow(1, "1.jpg", day),
		mediaRow(2, "2.jpg", day),
		mediaRow(3, "3.jpg", day),
	}

	t.Run("Middle page", func(t *testing.T) {
		page := media.Paginate(items, 2, 1)
		assert.Len(t, page, 1)
		assert.Equal(t, "2.jpg", page[0].Filename)
	})

	t.Run("Final partial page", func(t *testing.T) {
		page := media.Paginate(items, 2, 2)
		assert.Len(t, page, 1)
		assert.Equal(t, "3.jpg", page[0].Filename)
	})

	t.Run("Past the end is empty", func(t *testing.T) {
		assert.Empty(t, media.Paginate(items, 5, 2))
	})
}
