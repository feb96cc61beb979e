package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/domain/attendance"
	"github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// IssueToken implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) IssueToken(ctx context.Context, workerID string) (attendance.QRTokenResponse, error) {
	id, err := s.resolveWorkerID(ctx, workerID)
	if err != nil {
		return attendance.QRTokenResponse{}, err
	}

	w, err := s.getWorker(ctx, id)
	if err != nil {
		return attendance.QRTokenResponse{}, err
	}

	issuedAt := s.now()
	content, err := s.codec.Encode(w.UID, issuedAt)
	if err != nil {
		return attendance.QRTokenResponse{}, fmt.Errorf("failed to issue QR token: %w", err)
	}

	return attendance.QRTokenResponse{
		Content:       content,
		ValidDuration: formatValidity(s.codec.TTL()),
		ExpiresAt:     issuedAt.Add(s.codec.TTL()).UTC().Format(time.RFC3339),
	}, nil
}

// RenderTokenPNG implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RenderTokenPNG(ctx context.Context, workerID string) ([]byte, error) {
	token, err := s.IssueToken(ctx, workerID)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(token.Content, qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR image: %w", err)
	}
	return png, nil
}

// formatValidity renders a TTL as "24 hours", falling back to Go duration syntax.
func formatValidity(ttl time.Duration) string {
	if ttl%time.Hour == 0 {
		hours := int(ttl / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return ttl.String()
}
