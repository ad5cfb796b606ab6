package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/suzuhara/media-api/internal/config"
	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/media"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/server"
	"github.com/suzuhara/media-api/internal/storage"
	"github.com/suzuhara/media-api/internal/utils"
)

func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	assert.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&models.User{},
		&models.Album{},
		&models.Media{},
		&models.Tag{},
	)
	assert.NoError(t, err, "Failed to migrate test database")

	return db
}

// FakePreviewGenerator stands in for ffmpeg: it writes a stub jpeg at the
// mirrored preview path and counts invocations so tests can assert on the
// sweep's behavior.
type FakePreviewGenerator struct {
	Calls int
	Fail  bool
}

func (g *FakePreviewGenerator) Generate(srcRelPath string) string {
	g.Calls++
	if g.Fail {
		return ""
	}
	rel := media.PreviewPathFor(srcRelPath)
	if _, err := media.Files.Save(rel, strings.NewReader("stub-preview")); err != nil {
		return ""
	}
	return rel
}

func SetupTestApp(t *testing.T) (*fiber.App, *FakePreviewGenerator) {
	db := TestDB(t)
	database.DB = db

	store, err := storage.NewLocalStore(t.TempDir())
	assert.NoError(t, err, "Failed to initialize storage")

	fake := &FakePreviewGenerator{}
	media.Setup(store, fake, media.NewSweep())
	media.Cfg = &config.Config{
		MaxUploadMB:   1,
		FFmpegTimeout: time.Second,
	}

	// The cors middleware refuses a wildcard origin when credentials are
	// allowed, so the harness pins a concrete one.
	cfg := &config.Config{
		MaxUploadMB: 1,
		CORSOrigins: "http://localhost:5173",
	}
	app := server.New(db, cfg)
	return app, fake
}

func CreateTestUser(t *testing.T, db *gorm.DB, username, password, role string) *models.User {
	hashedPassword, _ := utils.HashPassword(password)

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hashedPassword,
		Role:         role,
	}

	err := db.Create(user).Error
	assert.NoError(t, err, "Failed to create test user")

	return user
}

func GetAuthToken(t *testing.T, user *models.User) string {
	token, err := utils.GenerateJWT(user.ID, user.Role, time.Hour)
	assert.NoError(t, err, "Failed to generate test token")
	return token
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

// UploadFile is one part of a multipart upload request.
type UploadFile struct {
	Field    string
	Name     string
	Content  []byte
	MimeType string
}

func MakeUploadRequest(app *fiber.App, url string, files []UploadFile, fields map[string]string, token string) (*httptest.ResponseRecorder, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, val := range fields {
		writer.WriteField(key, val)
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.Field+`"; filename="`+f.Name+`"`)
		if f.MimeType != "" {
			h.Set("Content-Type", f.MimeType)
		}
		part, err := writer.CreatePart(h)
		if err != nil {
			return nil, err
		}
		part.Write(f.Content)
	}
	writer.Close()

	req := httptest.NewRequest("POST", url, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil && err != io.EOF {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason"`
	Details interface{} `json:"details"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode int) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	assert.NotNil(t, result.Error, "Expected error object")
	if result.Error != nil {
		assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
	}
}
