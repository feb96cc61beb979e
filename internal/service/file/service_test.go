package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestFileService(t *testing.T) (*fileServiceImpl, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://files.test/uploads")
	require.NoError(t, err)
	svc := NewFileService(local).(*fileServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return svc, local
}

func TestUploadSignature_StoresJPEG(t *testing.T) {
	svc, local := newTestFileService(t)
	ctx := context.Background()

	url, err := svc.UploadSignature(ctx, "pay-1", bytes.NewReader(testPNG(t, 64, 32)), "sign.PNG")
	require.NoError(t, err)

	prefix := "http://files.test/uploads/signatures/2024-06/pay-1-"
	require.True(t, strings.HasPrefix(url, prefix), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	exists, err := local.Exists(ctx, strings.TrimPrefix(url, "http://files.test/uploads/"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUploadVoucher_RejectsUnsupportedType(t *testing.T) {
	svc, _ := newTestFileService(t)

	_, err := svc.UploadVoucher(context.Background(), "pay-1", strings.NewReader("%PDF"), "voucher.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestUploadVoucher_RejectsUndecodableImage(t *testing.T) {
	svc, _ := newTestFileService(t)

	_, err := svc.UploadVoucher(context.Background(), "pay-1", strings.NewReader("not an image"), "voucher.jpg")
	assert.Error(t, err)
}

func TestCompressImage_ReencodesAsJPEG(t *testing.T) {
	raw := testPNG(t, 256, 256)

	out, err := compressImage(raw, 4*1024, 1024)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	_, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}
