package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
)

func testFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f := NewFetcher(t.TempDir(), logger.New("error"))
	f.retryDelay = time.Millisecond
	return f
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFetchReturnsImageBytes(t *testing.T) {
	payload := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	data := testFetcher(t).Fetch(context.Background(), server.URL+"/shirt.png")
	assert.Equal(t, payload, data)
}

func TestFetchReturnsNilOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.Nil(t, testFetcher(t).Fetch(context.Background(), server.URL+"/missing.png"))
}

func TestStoreTranscodedWritesJPEG(t *testing.T) {
	fetcher := testFetcher(t)

	path, err := fetcher.StoreTranscoded(pngBytes(t), filepath.Join("product", "p-1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join("product", "p-1")))
	assert.True(t, strings.HasSuffix(path, ".jpg"))

	img, err := imaging.Open(filepath.Join(fetcher.basePath, path))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestStoreTranscodedRejectsGarbage(t *testing.T) {
	_, err := testFetcher(t).StoreTranscoded([]byte("not an image"), "product")
	assert.Error(t, err)
}

func TestStoreTranscodedPathsNeverCollide(t *testing.T) {
	fetcher := testFetcher(t)
	payload := pngBytes(t)

	first, err := fetcher.StoreTranscoded(payload, "brand/b-1")
	require.NoError(t, err)
	second, err := fetcher.StoreTranscoded(payload, "brand/b-1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestAcquire(t *testing.T) {
	payload := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	fetcher := testFetcher(t)
	path := fetcher.Acquire(context.Background(), server.URL+"/logo.png", "brand/b-2")
	require.NotNil(t, path)

	_, err := os.Stat(filepath.Join(fetcher.basePath, *path))
	assert.NoError(t, err)

	assert.Nil(t, fetcher.Acquire(context.Background(), "", "brand/b-2"))
}
