package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoding
	"io"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/storage"
	"golang.org/x/image/draw"
)

var ErrUnsupportedImage = errors.New("invalid file type: only jpg, jpeg, png allowed")

// Compressed payment images land between these sizes.
const (
	maxImageBytes = 300 * 1024
	minImageBytes = 30 * 1024
)

type FileService interface {
	// UploadSignature stores the worker's signature for a payment and returns its URL
	UploadSignature(ctx context.Context, paymentID string, file io.Reader, filename string) (string, error)

	// UploadVoucher stores the payout voucher for a payment and returns its URL
	UploadVoucher(ctx context.Context, paymentID string, file io.Reader, filename string) (string, error)

	DeleteFile(ctx context.Context, path string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

func (s *fileServiceImpl) UploadSignature(ctx context.Context, paymentID string, file io.Reader, filename string) (string, error) {
	return s.uploadPaymentImage(ctx, "signatures", paymentID, file, filename)
}

func (s *fileServiceImpl) UploadVoucher(ctx context.Context, paymentID string, file io.Reader, filename string) (string, error) {
	return s.uploadPaymentImage(ctx, "vouchers", paymentID, file, filename)
}

// uploadPaymentImage re-encodes the image as JPEG under {kind}/{yyyy-mm}/{paymentID}-{uuid}.jpg.
func (s *fileServiceImpl) uploadPaymentImage(ctx context.Context, kind, paymentID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", ErrUnsupportedImage
	}

	buffer, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	compressed, err := compressImage(buffer, maxImageBytes, minImageBytes)
	if err != nil {
		return "", fmt.Errorf("failed to compress image: %w", err)
	}

	month := s.now().UTC().Format("2006-01")
	newFilename := fmt.Sprintf("%s-%s.jpg", paymentID, uuid.New().String())
	path := filepath.ToSlash(filepath.Join(kind, month, newFilename))

	key, err := s.storage.Upload(ctx, bytes.NewReader(compressed), path, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload %s image: %w", strings.TrimSuffix(kind, "s"), err)
	}

	url, err := s.storage.GetURL(ctx, key, 0)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %w", err)
	}
	return url, nil
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// ==================== HELPER FUNCTIONS ====================

// compressImage re-encodes buffer as JPEG, lowering quality and then scaling down
// until the result is at most maxSize. Images already in range that are JPEG are kept as-is.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if format == "jpeg" && len(buffer) <= maxSize && len(buffer) >= minSize {
		return buffer, nil
	}

	var compressed []byte
	for quality := 85; quality >= 50; quality -= 5 {
		compressed, err = encodeJPEG(img, quality)
		if err != nil {
			return nil, err
		}
		if len(compressed) <= maxSize {
			return compressed, nil
		}
	}

	// Still too large: scale towards the target keeping the aspect ratio
	bounds := img.Bounds()
	ratio := math.Sqrt(float64(maxSize) / float64(len(compressed)))
	width := max(int(float64(bounds.Dx())*ratio), 1)
	height := max(int(float64(bounds.Dy())*ratio), 1)

	return encodeJPEG(resizeImage(img, width, height), 70)
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage scales src with CatmullRom interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
