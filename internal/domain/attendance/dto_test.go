package attendance

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/harvestlink/harvest-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseID = "0190a1b2-7c3d-7e4f-8a9b-0c1d2e3f4a5b"
	testJobID  = "0190a1b2-7c3d-7e4f-8a9b-0c1d2e3f4a5c"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected validation errors, got %v", err)
	return verrs.ToMap()
}

func TestSignUpRequest_Validate(t *testing.T) {
	req := SignUpRequest{BaseID: testBaseID, JobID: testJobID}
	assert.NoError(t, req.Validate())

	bad := "2024/06/01"
	req = SignUpRequest{
		BaseID:         "nope",
		WorkDate:       &bad,
		ProxyWorkerIDs: []string{testJobID, "x"},
	}
	fields := fieldErrors(t, req.Validate())
	assert.Contains(t, fields, "base_id")
	assert.Contains(t, fields, "job_id")
	assert.Contains(t, fields, "work_date")
	assert.Contains(t, fields, "proxy_worker_ids[1]")
	assert.NotContains(t, fields, "proxy_worker_ids[0]")
}

func TestCheckInRequest_Validate(t *testing.T) {
	req := CheckInRequest{QRContent: "  abc  ", BaseID: testBaseID}
	require.NoError(t, req.Validate())
	assert.Equal(t, "abc", req.QRContent)

	req = CheckInRequest{}
	fields := fieldErrors(t, req.Validate())
	assert.Len(t, fields, 2)
}

func TestSyncRequest_Validate(t *testing.T) {
	req := SyncRequest{}
	assert.Contains(t, fieldErrors(t, req.Validate()), "records")

	req = SyncRequest{Records: make([]OfflineRecord, MaxSyncBatch+1)}
	assert.Contains(t, fieldErrors(t, req.Validate()), "records")

	// malformed items are reported per record during sync, not here
	req = SyncRequest{Records: []OfflineRecord{{UID: ""}}}
	assert.NoError(t, req.Validate())
}

func TestRecordFilter_Defaults(t *testing.T) {
	f := RecordFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "work_date", f.SortBy)
	assert.Equal(t, "desc", f.SortOrder)

	f = RecordFilter{SortOrder: "ASC"}
	require.NoError(t, f.Validate())
	assert.Equal(t, "asc", f.SortOrder)
}

func TestRecordFilter_Invalid(t *testing.T) {
	status := "PRESENT"
	f := RecordFilter{Limit: 500, SortBy: "name", Status: &status}
	fields := fieldErrors(t, f.Validate())
	assert.Contains(t, fields, "limit")
	assert.Contains(t, fields, "sort_by")
	assert.True(t, strings.HasPrefix(fields["status"], "status must be one of"))
}

func TestSignupRecord_MarkCheckedIn(t *testing.T) {
	r := SignupRecord{Status: StatusSignedUp}
	assert.False(t, r.IsCheckedIn())

	now := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	r.MarkCheckedIn(now, true)
	assert.True(t, r.IsCheckedIn())
	require.NotNil(t, r.CheckinTime)
	assert.True(t, r.CheckinTime.Equal(now))
	assert.True(t, r.IsOfflineSync)
}
