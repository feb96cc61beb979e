package salary

import (
	"testing"

	"github.com/harvestlink/harvest-backend-go/internal/domain/base"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		name      string
		payType   base.PayType
		unitPrice string
		duration  string
		count     int
		want      string
	}{
		{"fixed ignores duration and count", base.PayTypeFixed, "200", "5", 9, "200"},
		{"hourly", base.PayTypeHourly, "25", "8", 0, "200"},
		{"hourly fractional", base.PayTypeHourly, "20", "6.5", 0, "130"},
		{"piecework", base.PayTypePiecework, "1.5", "0", 100, "150"},
		{"piecework zero pieces", base.PayTypePiecework, "1.5", "0", 0, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Calculate(tc.payType,
				decimal.RequireFromString(tc.unitPrice),
				decimal.RequireFromString(tc.duration),
				tc.count,
			)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestCalculate_NoFloatDrift(t *testing.T) {
	got, err := Calculate(base.PayTypeHourly, decimal.RequireFromString("0.1"), decimal.RequireFromString("3"), 0)
	require.NoError(t, err)
	assert.Equal(t, "0.3", got.String())
}

func TestCalculate_UnknownPayType(t *testing.T) {
	_, err := Calculate(base.PayType("DAILY_BONUS"), decimal.NewFromInt(1), decimal.Zero, 0)
	assert.ErrorIs(t, err, ErrUnknownPayType)
}

func TestSalaryDraft_IsLocked(t *testing.T) {
	assert.False(t, (&SalaryDraft{Status: SalaryStatusPending}).IsLocked())
	assert.True(t, (&SalaryDraft{Status: SalaryStatusConfirmed}).IsLocked())
	assert.True(t, (&SalaryDraft{Status: SalaryStatusPaid}).IsLocked())
}

func TestDraftSalaryRequest_Validate(t *testing.T) {
	dur := "6"
	req := DraftSalaryRequest{SignupID: "0190a1b2-7c3d-7e4f-8a9b-0c1d2e3f4a5b", WorkDuration: &dur}
	require.NoError(t, req.Validate())
	assert.True(t, req.Duration().Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 0, req.Count())
	assert.Equal(t, PayoutCash, req.Payout())

	neg := -1
	tooLong := "30"
	payout := "CHEQUE"
	bad := DraftSalaryRequest{SignupID: "x", WorkDuration: &tooLong, PieceCount: &neg, PayoutType: &payout}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signup_id")
	assert.Contains(t, err.Error(), "work_duration")
	assert.Contains(t, err.Error(), "piece_count")
	assert.Contains(t, err.Error(), "payout_type")
}

func TestDraftSalaryRequest_ValidateColumnBounds(t *testing.T) {
	id := "0190a1b2-7c3d-7e4f-8a9b-0c1d2e3f4a5b"

	for _, dur := range []string{"8.333", "0.001"} {
		req := DraftSalaryRequest{SignupID: id, WorkDuration: &dur}
		err := req.Validate()
		require.Error(t, err, dur)
		assert.Contains(t, err.Error(), "at most 2 decimal places")
	}

	for _, dur := range []string{"8.33", "8.330", "24"} {
		req := DraftSalaryRequest{SignupID: id, WorkDuration: &dur}
		assert.NoError(t, req.Validate(), dur)
	}

	huge := MaxPieceCount + 1
	req := DraftSalaryRequest{SignupID: id, PieceCount: &huge}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "piece_count")

	limit := MaxPieceCount
	req = DraftSalaryRequest{SignupID: id, PieceCount: &limit}
	assert.NoError(t, req.Validate())
}

func TestCheckTotal(t *testing.T) {
	assert.NoError(t, CheckTotal(MaxTotalAmount))
	assert.NoError(t, CheckTotal(decimal.RequireFromString("9999999999.994")))

	over, err := Calculate(base.PayTypePiecework, decimal.RequireFromString("99999.99"), decimal.Zero, MaxPieceCount)
	require.NoError(t, err)
	err = CheckTotal(over)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "total_amount")
}
