package media_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/testutils"
)

func TestUploadHandler(t *testing.T) {
	app, fake := testutils.SetupTestApp(t)
	manager := testutils.CreateTestUser(t, database.DB, "manager", "password123", models.RoleManager)
	viewer := testutils.CreateTestUser(t, database.DB, "viewer", "password123", models.RoleViewer)
	managerToken := testutils.GetAuthToken(t, manager)
	viewerToken := testutils.GetAuthToken(t, viewer)

	t.Run("Success - Upload image", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "sunset.jpg", Content: []byte("jpeg bytes 1"), MimeType: "image/jpeg"},
		}, nil, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var m models.Media
		assert.NoError(t, database.DB.Where("filename = ?", "sunset.jpg").First(&m).Error)
		assert.Equal(t, models.MediaTypeImage, m.Type)
		assert.Equal(t, manager.ID, m.OwnerID)
		assert.Len(t, m.SHA256, 64)
		assert.NotEmpty(t, m.StoragePath)
		assert.Empty(t, m.PreviewPath)
		// No title given, so the filename stands in.
		assert.Equal(t, "sunset.jpg", m.Title)
	})

	t.Run("Success - Explicit title wins over filename", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "titled.jpg", Content: []byte("titled bytes"), MimeType: "image/jpeg"},
		}, map[string]string{"title": "Golden hour"}, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var m models.Media
		assert.NoError(t, database.DB.Where("filename = ?", "titled.jpg").First(&m).Error)
		assert.Equal(t, "Golden hour", m.Title)
	})

	t.Run("Success - Video upload generates preview", func(t *testing.T) {
		before := fake.Calls
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "clip.mp4", Content: []byte("video bytes 1"), MimeType: "video/mp4"},
		}, nil, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
		assert.Equal(t, before+1, fake.Calls)

		var m models.Media
		assert.NoError(t, database.DB.Where("filename = ?", "clip.mp4").First(&m).Error)
		assert.Equal(t, models.MediaTypeVideo, m.Type)
		assert.NotEmpty(t, m.PreviewPath)
	})

	t.Run("Success - Batch of files in one call", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "one.jpg", Content: []byte("batch one"), MimeType: "image/jpeg"},
			{Field: "file", Name: "two.jpg", Content: []byte("batch two"), MimeType: "image/jpeg"},
		}, nil, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var count int64
		database.DB.Model(&models.Media{}).Where("filename IN ?", []string{"one.jpg", "two.jpg"}).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Error - No files", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", nil,
			map[string]string{"title": "empty batch"}, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, 40000)
	})

	t.Run("Error - Empty file", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "blank.jpg", Content: nil, MimeType: "image/jpeg"},
		}, nil, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, 40001)
	})

	t.Run("Error - Duplicate content", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "copy.jpg", Content: []byte("jpeg bytes 1"), MimeType: "image/jpeg"},
		}, nil, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)
		testutils.AssertError(t, resp, 40900)
	})

	t.Run("Error - Duplicate inside batch aborts whole batch", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "fresh.jpg", Content: []byte("entirely new bytes"), MimeType: "image/jpeg"},
			{Field: "file", Name: "dupe.jpg", Content: []byte("jpeg bytes 1"), MimeType: "image/jpeg"},
		}, nil, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)

		var count int64
		database.DB.Model(&models.Media{}).Where("filename = ?", "fresh.jpg").Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Error - Invalid taken_at", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "dated.jpg", Content: []byte("dated bytes"), MimeType: "image/jpeg"},
		}, map[string]string{"taken_at": "not-a-date"}, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, 40003)
	})

	t.Run("Error - Unknown album", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "filed.jpg", Content: []byte("filed bytes"), MimeType: "image/jpeg"},
		}, map[string]string{"album_id": "9999"}, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - File over the size cap", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "huge.jpg", Content: make([]byte, 1<<20+1), MimeType: "image/jpeg"},
		}, nil, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, 40002)
	})

	t.Run("Error - Manager cannot file into another's private album", func(t *testing.T) {
		dev := testutils.CreateTestUser(t, database.DB, "albumowner", "password123", models.RoleDeveloper)
		private := models.Album{OwnerID: dev.ID, Title: "Locked", Visibility: models.VisibilityPrivate}
		assert.NoError(t, database.DB.Create(&private).Error)

		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "intruder.jpg", Content: []byte("intruder bytes"), MimeType: "image/jpeg"},
		}, map[string]string{"album_id": fmt.Sprint(private.ID)}, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, 40301)

		// A non-private album owned by someone else is fine.
		shared := models.Album{OwnerID: dev.ID, Title: "Shared", Visibility: models.VisibilityUnlisted}
		assert.NoError(t, database.DB.Create(&shared).Error)

		resp, err = testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "welcome.jpg", Content: []byte("welcome bytes"), MimeType: "image/jpeg"},
		}, map[string]string{"album_id": fmt.Sprint(shared.ID)}, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)
	})

	t.Run("Error - Viewer cannot upload", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", []testutils.UploadFile{
			{Field: "file", Name: "nope.jpg", Content: []byte("viewer bytes"), MimeType: "image/jpeg"},
		}, nil, viewerToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, 40301)
	})

	t.Run("Error - Missing token", func(t *testing.T) {
		resp, err := testutils.MakeUploadRequest(app, "/media/upload", nil, nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code)
	})
}

func seedCatalogRow(t *testing.T, ownerID uint, filename, title string, created time.Time, albumID *uint) models.Media {
	t.Helper()
	m := models.Media{
		OwnerID:     ownerID,
		AlbumID:     albumID,
		Type:        models.MediaTypeImage,
		Filename:    filename,
		Title:       title,
		MimeType:    "image/jpeg",
		SHA256:      fmt.Sprintf("%064x", time.Now().UnixNano()+int64(len(filename))),
		StoragePath: "2025/08/30/" + filename,
		CreatedAt:   created,
	}
	assert.NoError(t, database.DB.Create(&m).Error)
	return m
}

func TestListHandler(t *testing.T) {
	app, _ := testutils.SetupTestApp(t)
	dev := testutils.CreateTestUser(t, database.DB, "dev", "password123", models.RoleDeveloper)
	viewer := testutils.CreateTestUser(t, database.DB, "viewer2", "password123", models.RoleViewer)
	devToken := testutils.GetAuthToken(t, dev)
	viewerToken := testutils.GetAuthToken(t, viewer)

	day := time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)
	seedCatalogRow(t, dev.ID, "10.jpg", "", day, nil)
	seedCatalogRow(t, dev.ID, "a.jpg", "", day, nil)
	seedCatalogRow(t, dev.ID, "2.jpg", "", day, nil)

	listItems := func(t *testing.T, resp *testutils.StandardResponse) []interface{} {
		t.Helper()
		data, ok := resp.Data.(map[string]interface{})
		assert.True(t, ok, "Expected data object")
		items, ok := data["items"].([]interface{})
		assert.True(t, ok, "Expected items array")
		return items
	}

	t.Run("Success - Numeric then lexicographic order", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/media/", nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		items := listItems(t, &result)
		assert.Len(t, items, 3)

		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.(map[string]interface{})["filename"].(string)
		}
		assert.Equal(t, []string{"2.jpg", "10.jpg", "a.jpg"}, names)
	})

	t.Run("Success - Pagination reports full total", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/media/?page=2&size=1", nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, float64(3), data["total"])
		items := listItems(t, &result)
		assert.Len(t, items, 1)
		assert.Equal(t, "10.jpg", items[0].(map[string]interface{})["filename"])
	})

	t.Run("Success - Type filter", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/media/?type=video", nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Empty(t, listItems(t, &result))
	})

	t.Run("Success - Free-text filter matches title only", func(t *testing.T) {
		seedCatalogRow(t, dev.ID, "beach-sunrise.jpg", "holiday picnic", day, nil)

		resp, err := testutils.MakeRequest(app, "GET", "/media/?q=holiday", nil, devToken)
		assert.NoError(t, err)
		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Len(t, listItems(t, &result), 1)

		// Case-insensitive on the title.
		resp, err = testutils.MakeRequest(app, "GET", "/media/?q=HOLIDAY", nil, devToken)
		assert.NoError(t, err)
		testutils.ParseResponse(t, resp, &result)
		assert.Len(t, listItems(t, &result), 1)

		// The filename is not searched.
		resp, err = testutils.MakeRequest(app, "GET", "/media/?q=sunrise", nil, devToken)
		assert.NoError(t, err)
		testutils.ParseResponse(t, resp, &result)
		assert.Empty(t, listItems(t, &result))
	})

	t.Run("Error - Invalid type", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/media/?type=audio", nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, 42200)
	})

	t.Run("Error - Out-of-range page and size", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/media/?page=0&size=500", nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, 42200)
	})

	t.Run("Error - Invalid sort key", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/media/?sort=filename", nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 422, resp.Code)
		testutils.AssertError(t, resp, 42200)
	})

	t.Run("Visibility - Private album hidden from viewers", func(t *testing.T) {
		private := models.Album{OwnerID: dev.ID, Title: "Private", Visibility: models.VisibilityPrivate}
		assert.NoError(t, database.DB.Create(&private).Error)
		public := models.Album{OwnerID: dev.ID, Title: "Public", Visibility: models.VisibilityPublic}
		assert.NoError(t, database.DB.Create(&public).Error)

		seedCatalogRow(t, dev.ID, "secret.jpg", "alpine stash", day, &private.ID)
		seedCatalogRow(t, dev.ID, "open.jpg", "lakeside walk", day, &public.ID)

		resp, err := testutils.MakeRequest(app, "GET", "/media/?size=100", nil, viewerToken)
		assert.NoError(t, err)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		for _, it := range listItems(t, &result) {
			assert.NotEqual(t, "secret.jpg", it.(map[string]interface{})["filename"])
		}

		resp, err = testutils.MakeRequest(app, "GET", "/media/?q=lakeside&size=100", nil, viewerToken)
		assert.NoError(t, err)
		testutils.ParseResponse(t, resp, &result)
		assert.Len(t, listItems(t, &result), 1)

		resp, err = testutils.MakeRequest(app, "GET", "/media/?q=alpine&size=100", nil, viewerToken)
		assert.NoError(t, err)
		testutils.ParseResponse(t, resp, &result)
		assert.Empty(t, listItems(t, &result))

		// Developers see everything.
		resp, err = testutils.MakeRequest(app, "GET", "/media/?q=alpine&size=100", nil, devToken)
		assert.NoError(t, err)
		testutils.ParseResponse(t, resp, &result)
		assert.Len(t, listItems(t, &result), 1)
	})
}

func TestMediaCRUD(t *testing.T) {
	app, _ := testutils.SetupTestApp(t)
	dev := testutils.CreateTestUser(t, database.DB, "dev3", "password123", models.RoleDeveloper)
	devToken := testutils.GetAuthToken(t, dev)

	day := time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC)
	row := seedCatalogRow(t, dev.ID, "subject.jpg", "", day, nil)

	t.Run("Success - Get media", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", fmt.Sprintf("/media/%d", row.ID), nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)
		testutils.AssertSuccess(t, resp)
	})

	t.Run("Error - Unknown media", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", "/media/99999", nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
		testutils.AssertError(t, resp, 40400)
	})

	t.Run("Error - Hidden media is forbidden, not missing", func(t *testing.T) {
		viewer := testutils.CreateTestUser(t, database.DB, "peeker", "password123", models.RoleViewer)
		viewerToken := testutils.GetAuthToken(t, viewer)

		private := models.Album{OwnerID: dev.ID, Title: "Vault", Visibility: models.VisibilityPrivate}
		assert.NoError(t, database.DB.Create(&private).Error)
		hidden := seedCatalogRow(t, dev.ID, "vaulted.jpg", "", day, &private.ID)

		resp, err := testutils.MakeRequest(app, "GET", fmt.Sprintf("/media/%d", hidden.ID), nil, viewerToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, 40301)
	})

	t.Run("Error - Manager cannot move media into another's private album", func(t *testing.T) {
		manager := testutils.CreateTestUser(t, database.DB, "mover", "password123", models.RoleManager)
		managerToken := testutils.GetAuthToken(t, manager)
		owned := seedCatalogRow(t, manager.ID, "mine.jpg", "", day, nil)

		private := models.Album{OwnerID: dev.ID, Title: "Keep out", Visibility: models.VisibilityPrivate}
		assert.NoError(t, database.DB.Create(&private).Error)

		body := map[string]interface{}{"album_id": private.ID}
		resp, err := testutils.MakeRequest(app, "PATCH", fmt.Sprintf("/media/%d", owned.ID), body, managerToken)
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
		testutils.AssertError(t, resp, 40301)

		var fresh models.Media
		assert.NoError(t, database.DB.First(&fresh, owned.ID).Error)
		assert.Nil(t, fresh.AlbumID)
	})

	t.Run("Error - Missing stored file", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", fmt.Sprintf("/media/%d/file", row.ID), nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - Missing preview", func(t *testing.T) {
		resp, err := testutils.MakeRequest(app, "GET", fmt.Sprintf("/media/%d/preview", row.ID), nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Success - Patch title and taken_at", func(t *testing.T) {
		body := map[string]interface{}{
			"title":    "A <b>new</b> title",
			"taken_at": "2025-07-01T09:30:00Z",
		}
		resp, err := testutils.MakeRequest(app, "PATCH", fmt.Sprintf("/media/%d", row.ID), body, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var fresh models.Media
		assert.NoError(t, database.DB.First(&fresh, row.ID).Error)
		assert.Equal(t, "A new title", fresh.Title)
		assert.NotNil(t, fresh.TakenAt)
	})

	t.Run("Success - Empty taken_at clears it", func(t *testing.T) {
		body := map[string]interface{}{"taken_at": ""}
		resp, err := testutils.MakeRequest(app, "PATCH", fmt.Sprintf("/media/%d", row.ID), body, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var fresh models.Media
		assert.NoError(t, database.DB.First(&fresh, row.ID).Error)
		assert.Nil(t, fresh.TakenAt)
	})

	t.Run("Error - Patch with bad taken_at", func(t *testing.T) {
		body := map[string]interface{}{"taken_at": "yesterday"}
		resp, err := testutils.MakeRequest(app, "PATCH", fmt.Sprintf("/media/%d", row.ID), body, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, 40003)
	})

	t.Run("Success - Set tags creates unknown names", func(t *testing.T) {
		existing := models.Tag{Name: "travel"}
		assert.NoError(t, database.DB.Create(&existing).Error)

		body := map[string]interface{}{"tags": []string{"travel", "family"}}
		resp, err := testutils.MakeRequest(app, "POST", fmt.Sprintf("/media/%d/tags", row.ID), body, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var fresh models.Media
		assert.NoError(t, database.DB.Preload("Tags").First(&fresh, row.ID).Error)
		assert.Len(t, fresh.Tags, 2)

		var count int64
		database.DB.Model(&models.Tag{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("Success - Replacing shrinks the set", func(t *testing.T) {
		body := map[string]interface{}{"tags": []string{"family"}}
		resp, err := testutils.MakeRequest(app, "POST", fmt.Sprintf("/media/%d/tags", row.ID), body, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var fresh models.Media
		assert.NoError(t, database.DB.Preload("Tags").First(&fresh, row.ID).Error)
		assert.Len(t, fresh.Tags, 1)
	})

	t.Run("Error - Blank tag name", func(t *testing.T) {
		body := map[string]interface{}{"tags": []string{"  "}}
		resp, err := testutils.MakeRequest(app, "POST", fmt.Sprintf("/media/%d/tags", row.ID), body, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
		testutils.AssertError(t, resp, 40006)
	})

	t.Run("Success - Delete clears album cover reference", func(t *testing.T) {
		album := models.Album{OwnerID: dev.ID, Title: "Covers", Visibility: models.VisibilityPublic}
		assert.NoError(t, database.DB.Create(&album).Error)
		covered := seedCatalogRow(t, dev.ID, "cover.jpg", "", day, &album.ID)
		assert.NoError(t, database.DB.Model(&album).Update("cover_media_id", covered.ID).Error)

		resp, err := testutils.MakeRequest(app, "DELETE", fmt.Sprintf("/media/%d", covered.ID), nil, devToken)
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var count int64
		database.DB.Model(&models.Media{}).Where("id = ?", covered.ID).Count(&count)
		assert.Equal(t, int64(0), count)

		var fresh models.Album
		assert.NoError(t, database.DB.First(&fresh, album.ID).Error)
		assert.Nil(t, fresh.CoverMediaID)
	})
}
