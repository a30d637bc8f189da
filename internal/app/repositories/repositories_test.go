package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/campusdesk/internal/app/models"
	"github.com/yigit/campusdesk/internal/pkg/realtime"
)

func TestPage(t *testing.T) {
	sql, _, err := page(newBuilder().Select("id").From("marks"), 20, 40).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM marks LIMIT 20 OFFSET 40", sql)

	sql, _, err = page(newBuilder().Select("id").From("marks"), 0, 0).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM marks", sql)
}

func TestProfileFilter(t *testing.T) {
	verified := false
	where := profileFilter(models.ProfileFilter{
		Department: "CSE",
		Semester:   5,
		Verify:     &verified,
		Search:     "asha",
	})

	sql, args, err := newBuilder().Select("id").From("profiles").Where(where).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM profiles WHERE (department = $1 AND semester = $2 AND verify = $3 AND (full_name ILIKE $4 OR enrollment_number ILIKE $5))",
		sql)
	assert.Equal(t, []interface{}{"CSE", 5, false, "%asha%", "%asha%"}, args)
}

func TestProfileFilter_Empty(t *testing.T) {
	sql, args, err := newBuilder().Select("id").From("profiles").Where(profileFilter(models.ProfileFilter{})).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "department")
	assert.NotContains(t, sql, "ILIKE")
	assert.Empty(t, args)
}

func TestAttendanceFilter_DateRange(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	sql, args, err := newBuilder().Select("id").From("attendance").
		Where(attendanceFilter(models.AttendanceFilter{EnrollmentNumber: "21CS1042", From: &from, To: &to})).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM attendance WHERE (enrollment_number = $1 AND date >= $2 AND date <= $3)", sql)
	assert.Equal(t, []interface{}{"21CS1042", from, to}, args)
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "45", formatScore(45))
	assert.Equal(t, "45.5", formatScore(45.5))
	assert.Equal(t, "100", formatScore(100))
}

func TestStreamSourcesCoverEveryStream(t *testing.T) {
	for _, s := range realtime.Streams {
		src, err := sourceFor(s)
		require.NoError(t, err, s)
		assert.Equal(t, "id", src.columns[0], "first column of %s must be the row id", s)
		assert.Equal(t, "created_at", src.columns[1])
	}

	_, err := sourceFor("users")
	assert.Error(t, err)
}

func TestJoinColumns(t *testing.T) {
	assert.Equal(t, "id, title", joinColumns([]string{"id", "title"}))
}
