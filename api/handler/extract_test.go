package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arkaf/wantmeta/cache"
	"github.com/arkaf/wantmeta/config"
	"github.com/arkaf/wantmeta/extractor"
	"github.com/arkaf/wantmeta/fetcher"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newExtractRouter(t *testing.T) *gin.Engine {
	t.Helper()
	f := fetcher.New(config.FetcherConfig{
		Attempts:         2,
		Timeout:          5 * time.Second,
		ProfileMemoryTTL: time.Hour,
	})
	t.Cleanup(f.Close)
	c := cache.New(time.Hour, 100)
	t.Cleanup(c.Stop)
	ex := extractor.New(f, c)

	r := gin.New()
	r.GET("/extract", Extract(ex))
	return r
}

// originPage is padded so the body does not classify as a block page.
func originPage() string {
	return `<!doctype html><html><head>
<meta property="og:title" content="Linen Shirt">
<meta property="og:image" content="https://cdn.shop.test/shirt.jpg">
<meta property="product:price:amount" content="45.00">
<meta property="product:price:currency" content="EUR">
</head><body><p>` + strings.Repeat("product copy ", 50) + `</p></body></html>`
}

func TestExtract_MissingURLParam(t *testing.T) {
	r := newExtractRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/extract", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"error":"missing url"}` {
		t.Errorf("body = %s", body)
	}
}

func TestExtract_InvalidURLParam(t *testing.T) {
	r := newExtractRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/extract?url=ftp%3A%2F%2Fhost%2Ffile", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"error":"missing url"}` {
		t.Errorf("body = %s", body)
	}
}

func TestExtract_Success(t *testing.T) {
	var hits atomic.Int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		w.Write([]byte(originPage()))
	}))
	defer origin.Close()

	r := newExtractRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/extract?url="+origin.URL+"/p/shirt", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}

	var got struct {
		Title     string `json:"title"`
		Image     string `json:"image"`
		Price     string `json:"price"`
		Domain    string `json:"domain"`
		URL       string `json:"url"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Title != "Linen Shirt" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Image != "https://cdn.shop.test/shirt.jpg" {
		t.Errorf("image = %q", got.Image)
	}
	if got.Price != "€45" {
		t.Errorf("price = %q, want €45", got.Price)
	}
	if got.Timestamp == 0 {
		t.Error("timestamp missing")
	}
	if hits.Load() != 1 {
		t.Errorf("origin fetched %d times, want 1", hits.Load())
	}
}

func TestExtract_FetchFailure(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	origin.Close() // nothing listening

	r := newExtractRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/extract?url="+origin.URL+"/p", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != `{"error":"Failed to fetch content"}` {
		t.Errorf("body = %s", body)
	}
}
