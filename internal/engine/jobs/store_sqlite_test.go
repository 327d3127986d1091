package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tuneit/internal/salary"
)

// newTestStore opens a fresh SQLite store in a temp dir.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "nested", "tuneit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func hourlyDetails() *salary.Details {
	return salary.Normalize(&salary.Input{Min: salary.Num(50), Max: salary.Num(65), Currency: "USD", Period: "hour"})
}

func TestOpenSQLiteStore_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := OpenSQLiteStore("")
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(home, ".go_tuneit", "tuneit.db"))
	assert.NoError(t, err)
}

func TestSQLiteStore_InsertGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := &UserJob{
		UserID:         "u1",
		CompanyName:    "Acme",
		JobTitle:       "Backend Engineer",
		JobDescription: "# Acme: Backend Engineer",
		ApplyURL:       "https://acme.com/apply",
	}
	j.setSalary(hourlyDetails())
	require.NoError(t, s.InsertJob(ctx, j))
	require.NotEmpty(t, j.ID)
	assert.False(t, j.CreatedAt.IsZero())

	got, err := s.GetJob(ctx, "u1", j.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, "https://acme.com/apply", got.ApplyURL)
	assert.Empty(t, got.PortalURL)
	require.NotNil(t, got.Salary)
	assert.Equal(t, 50.0, *got.Salary.Min)
	assert.Equal(t, 65.0, *got.Salary.Max)
	assert.Equal(t, salary.Hour, got.Salary.Period)
	require.NotNil(t, got.HourlyRate)
	assert.Equal(t, 50.0, *got.HourlyRate)
	assert.Equal(t, "$50 - $65 per hour", got.SalaryLabel)
	assert.True(t, got.CreatedAt.Equal(j.CreatedAt))
}

func TestSQLiteStore_NoSalary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := &UserJob{UserID: "u1", CompanyName: "Acme", JobTitle: "Role", JobDescription: "x"}
	j.setSalary(nil)
	require.NoError(t, s.InsertJob(ctx, j))

	got, err := s.GetJob(ctx, "u1", j.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Salary)
	assert.Nil(t, got.HourlyRate)
	assert.Equal(t, salary.NotProvided, got.SalaryLabel)
}

func TestSQLiteStore_UserScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := &UserJob{UserID: "owner", CompanyName: "Acme", JobTitle: "Role", JobDescription: "x"}
	require.NoError(t, s.InsertJob(ctx, j))

	_, err := s.GetJob(ctx, "intruder", j.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.True(t, errors.Is(s.DeleteJob(ctx, "intruder", j.ID), ErrNotFound))

	other := *j
	other.UserID = "intruder"
	other.CompanyName = "Hijacked"
	assert.True(t, errors.Is(s.UpdateJob(ctx, &other), ErrNotFound))

	jobs, err := s.ListJobs(ctx, "intruder", 0)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, s.InsertJob(ctx, &UserJob{UserID: "u1", CompanyName: "Acme", JobTitle: title, JobDescription: title}))
	}

	jobs, err := s.ListJobs(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	assert.Equal(t, "third", jobs[0].JobTitle)
	assert.Equal(t, "first", jobs[2].JobTitle)

	limited, err := s.ListJobs(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSQLiteStore_UpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	j := &UserJob{UserID: "u1", CompanyName: "Acme", JobTitle: "Role", JobDescription: "x", ApplyURL: "https://a.com"}
	require.NoError(t, s.InsertJob(ctx, j))

	j.TailoredResume = "# Jane"
	j.ApplyURL = ""
	j.setSalary(hourlyDetails())
	require.NoError(t, s.UpdateJob(ctx, j))

	got, err := s.GetJob(ctx, "u1", j.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Jane", got.TailoredResume)
	assert.Empty(t, got.ApplyURL)
	assert.Equal(t, 50.0, *got.HourlyRate)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, s.DeleteJob(ctx, "u1", j.ID))
	_, err = s.GetJob(ctx, "u1", j.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.DeleteJob(ctx, "u1", j.ID), ErrNotFound))
}

func TestSQLiteStore_BaseResume(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetBaseResume(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.SaveBaseResume(ctx, "u1", "# Jane"))
	require.NoError(t, s.SaveBaseResume(ctx, "u1", "# Jane Doe"))
	require.NoError(t, s.SaveBaseResume(ctx, "u2", "# Bob"))

	got, err = s.GetBaseResume(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "# Jane Doe", got)
}
