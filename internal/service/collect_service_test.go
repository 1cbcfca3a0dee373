package service_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avetisov/seminarbot/config"
	"github.com/avetisov/seminarbot/internal/model"
	"github.com/avetisov/seminarbot/internal/repository"
	"github.com/avetisov/seminarbot/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminID int64 = 42

// newCollect wires a collection service over a real CSV store in a temp dir.
func newCollect(t *testing.T) (service.CollectService, repository.RecordRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.csv")
	cfg := &config.Config{
		Telegram: config.Telegram{AdminIDs: []int64{adminID}},
		Store:    config.Store{Path: path},
	}
	repo := repository.NewRecordRepository(cfg)
	return service.NewCollectService(cfg, repo), repo, path
}

func recordAt(ts time.Time, seminarNo string) *model.Record {
	return &model.Record{
		Timestamp:    ts,
		SenderID:     100,
		SenderHandle: "student",
		FullName:     "Ivanov I.",
		Group:        "RG21",
		TaskType:     "retake",
		SeminarNo:    seminarNo,
		TaskText:     "text",
		Feedback:     "feedback",
	}
}

type spyRepo struct {
	scanned bool
}

func (s *spyRepo) EnsureInitialized() error   { return nil }
func (s *spyRepo) Append(*model.Record) error { return nil }

func (s *spyRepo) ScanAll(func(row []string) error) error {
	s.scanned = true
	return nil
}

func TestCollectAccessDenied(t *testing.T) {
	repo := &spyRepo{}
	cfg := &config.Config{Telegram: config.Telegram{AdminIDs: []int64{adminID}}}
	svc := service.NewCollectService(cfg, repo)

	export, err := svc.Collect(7, time.Now())
	assert.Nil(t, export)
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	assert.False(t, repo.scanned, "denied request must not read the store")
}

func TestCollectEmptyStore(t *testing.T) {
	svc, _, _ := newCollect(t)

	export, err := svc.Collect(adminID, time.Now())
	assert.Nil(t, export)
	assert.ErrorIs(t, err, service.ErrNoRecordsToday)
}

func TestCollectUTCDayBoundary(t *testing.T) {
	svc, repo, _ := newCollect(t)
	require.NoError(t, repo.Append(recordAt(time.Date(2024, 3, 1, 23, 59, 59, 0, time.UTC), "1")))

	t.Run("excluded just after midnight", func(t *testing.T) {
		_, err := svc.Collect(adminID, time.Date(2024, 3, 2, 0, 0, 1, 0, time.UTC))
		assert.ErrorIs(t, err, service.ErrNoRecordsToday)
	})

	t.Run("included on its own day", func(t *testing.T) {
		export, err := svc.Collect(adminID, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 1, export.Count)
	})
}

func TestCollectFiltersAndSerializes(t *testing.T) {
	svc, repo, _ := newCollect(t)
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(recordAt(now.Add(-24*time.Hour), "old")))
	require.NoError(t, repo.Append(recordAt(now.Add(-2*time.Hour), "1")))
	require.NoError(t, repo.Append(recordAt(now.Add(-1*time.Hour), "2")))

	export, err := svc.Collect(adminID, now)
	require.NoError(t, err)
	assert.Equal(t, "homework_2024-03-02.csv", export.Filename)
	assert.Equal(t, 2, export.Count)
	assert.Zero(t, export.Skipped)

	rows, err := csv.NewReader(bytes.NewReader(export.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus the two matching rows")
	assert.Equal(t, model.CSVHeader, rows[0])
	assert.Equal(t, "1", rows[1][6])
	assert.Equal(t, "2", rows[2][6])
}

func TestCollectSkipsMalformedRows(t *testing.T) {
	svc, repo, path := newCollect(t)
	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(recordAt(now.Add(-time.Hour), "1")))

	// Corrupt the log by hand: a short row and a row with a broken timestamp.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("garbage,row\n" +
		"not-a-timestamp,100,student,Ivanov I.,RG21,retake,2,text,feedback\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	export, err := svc.Collect(adminID, now)
	require.NoError(t, err)
	assert.Equal(t, 1, export.Count)
	assert.Equal(t, 2, export.Skipped)
}
