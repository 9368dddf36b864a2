package handlers_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"idcards/internal/config"
	"idcards/internal/handlers"
	"idcards/internal/metrics"
	"idcards/internal/middleware"
	"idcards/internal/repo"
	"idcards/internal/service"
	"idcards/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type testEnv struct {
	router  http.Handler
	cfg     *config.Config
	files   *storage.DiskStore
	metrics *metrics.Metrics
}

// newTestEnv собирает роутер поверх sqlite в памяти и хранилища во временном каталоге.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.Migrate(db))

	files, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{AuthSecret: "test-secret", TokenTTL: time.Hour, MaxUploadMB: 1}
	log := zap.NewNop().Sugar()
	m := metrics.New()
	cardSvc := service.NewIDCardService(repo.NewIDCardRepository(db), files, m, log)
	userSvc := service.NewUserService(repo.NewUserRepository(db))
	h := handlers.NewHandler(cardSvc, userSvc, files, m, log, cfg)

	return &testEnv{router: h.Router, cfg: cfg, files: files, metrics: m}
}

// do выполняет запрос; непустой owner добавляет Bearer-токен.
func (e *testEnv) do(t *testing.T, req *http.Request, owner string) *httptest.ResponseRecorder {
	t.Helper()
	if owner != "" {
		tok, err := middleware.NewToken(owner, e.cfg.AuthSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// multipartRequest строит multipart-запрос; пустой fileField — без файла.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type cardJSON struct {
	ID          string  `json:"_id"`
	User        string  `json:"user"`
	FullName    string  `json:"fullName"`
	Designation string  `json:"designation"`
	Department  string  `json:"department"`
	IDNumber    string  `json:"idNumber"`
	IssueDate   *string `json:"issueDate"`
	ExpiryDate  *string `json:"expiryDate"`
	Photo       *string `json:"photo"`
}

// createCard создаёт удостоверение через API и возвращает ответ.
func (e *testEnv) createCard(t *testing.T, owner string, fields map[string]string) cardJSON {
	t.Helper()
	rr := e.do(t, multipartRequest(t, http.MethodPost, "/api/idcards", fields, "", "", nil), owner)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp struct {
		IDCard cardJSON `json:"idCard"`
	}
	decode(t, rr, &resp)
	return resp.IDCard
}
