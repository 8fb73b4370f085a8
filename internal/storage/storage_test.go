package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	data, contentType, err := ProcessImage(bytes.NewReader(encodePNG(t, 640, 480)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 480, img.Bounds().Dy())
}

func TestProcessImageShrinksWideImages(t *testing.T) {
	data, _, err := ProcessImage(bytes.NewReader(encodePNG(t, 4000, 1000)))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, MaxImageWidth, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

// singlePixelGIF is a 1x1 GIF89a. The package registers no decoders itself, so this relies on imaging's.
var singlePixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

func TestProcessImageDecodesGIF(t *testing.T) {
	data, contentType, err := ProcessImage(bytes.NewReader(singlePixelGIF))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	_, _, err := ProcessImage(strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

type recordedRequest struct {
	method string
	path   string
	body   []byte
}

func newFakeS3(t *testing.T) (*httptest.Server, *[]recordedRequest) {
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()

		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestStorage(t *testing.T, endpoint string) *S3Storage {
	s, err := NewS3Storage(context.Background(), S3Config{
		Endpoint:  endpoint,
		Region:    "us-east-1",
		Bucket:    "catalog",
		AccessKey: "test",
		SecretKey: "test",
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	return s
}

func TestS3UploadAndDelete(t *testing.T) {
	srv, requests := newFakeS3(t)
	s := newTestStorage(t, srv.URL)
	ctx := context.Background()

	url, err := s.Upload(ctx, []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/products/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	require.Len(t, *requests, 1)
	put := (*requests)[0]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/catalog/"+strings.TrimPrefix(url, "https://cdn.example.com/"), put.path)

	require.NoError(t, s.Delete(ctx, url))
	require.Len(t, *requests, 2)
	assert.Equal(t, http.MethodDelete, (*requests)[1].method)
}

func TestS3DeleteRejectsForeignURL(t *testing.T) {
	srv, requests := newFakeS3(t)
	s := newTestStorage(t, srv.URL)

	err := s.Delete(context.Background(), "https://elsewhere.example.com/products/x.jpg")

	assert.ErrorIs(t, err, ErrForeignURL)
	assert.Empty(t, *requests)
}
