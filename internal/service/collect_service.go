package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/avetisov/seminarbot/config"
	"github.com/avetisov/seminarbot/internal/model"
	"github.com/avetisov/seminarbot/internal/repository"
	"github.com/rs/zerolog/log"
)

// Export is the day's submissions as a standalone CSV document.
type Export struct {
	Filename string
	Data     []byte
	// Count is the number of record rows in the document.
	Count int
	// Skipped counts stored rows with an unparsable timestamp or a wrong
	// column count; they are left out rather than failing the whole export.
	Skipped int
}

type CollectService interface {
	// Collect builds the export of all records whose timestamp falls on the
	// same UTC calendar day as now. Requesters outside the allow-list get
	// ErrAccessDenied before any store read; a day with no matching rows is
	// ErrNoRecordsToday.
	Collect(requesterID int64, now time.Time) (*Export, error)
}

type collectService struct {
	recordRepo repository.RecordRepository
	adminIDs   []int64
}

func NewCollectService(cfg *config.Config, recordRepo repository.RecordRepository) CollectService {
	return &collectService{
		recordRepo: recordRepo,
		adminIDs:   cfg.Telegram.AdminIDs,
	}
}

func (s *collectService) Collect(requesterID int64, now time.Time) (*Export, error) {
	if !s.isAdmin(requesterID) {
		log.Warn().Int64("requester_id", requesterID).Msg("Collect denied")
		return nil, fmt.Errorf("%w: id %d", ErrAccessDenied, requesterID)
	}

	day := now.UTC()
	year, month, dom := day.Date()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	export := Export{
		Filename: fmt.Sprintf("homework_%s.csv", day.Format("2006-01-02")),
	}

	first := true
	err := s.recordRepo.ScanAll(func(row []string) error {
		if first {
			first = false
			return w.Write(row)
		}
		if len(row) != len(model.CSVHeader) {
			export.Skipped++
			log.Warn().Int("columns", len(row)).Msg("Skipping malformed row in export")
			return nil
		}
		ts, err := time.Parse(time.RFC3339, row[0])
		if err != nil {
			export.Skipped++
			log.Warn().Str("timestamp", row[0]).Msg("Skipping row with unparsable timestamp")
			return nil
		}
		y, m, d := ts.UTC().Date()
		if y != year || m != month || d != dom {
			return nil
		}
		export.Count++
		return w.Write(row)
	})
	if err != nil {
		// A store that was never created simply has no records yet.
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoRecordsToday
		}
		return nil, err
	}

	if export.Count == 0 {
		return nil, ErrNoRecordsToday
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("serialize export: %w", err)
	}
	export.Data = buf.Bytes()

	log.Info().
		Int64("requester_id", requesterID).
		Str("filename", export.Filename).
		Int("records", export.Count).
		Int("skipped", export.Skipped).
		Msg("Export built")
	return &export, nil
}

func (s *collectService) isAdmin(id int64) bool {
	for _, admin := range s.adminIDs {
		if admin == id {
			return true
		}
	}
	return false
}
