package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/avetisov/seminarbot/config"
	"github.com/avetisov/seminarbot/internal/model"
	"github.com/rs/zerolog/log"
)

// ErrStoreUnavailable signals that the backing log file could not be created,
// written, or read. Fatal for the triggering operation, not for the process.
var ErrStoreUnavailable = errors.New("record store unavailable")

type RecordRepository interface {
	// EnsureInitialized creates the log file with the fixed header if and only
	// if it does not already exist. Idempotent and safe to call concurrently.
	EnsureInitialized() error
	// Append durably writes one record as the new last row. The write is
	// flushed to stable storage before Append returns.
	Append(rec *model.Record) error
	// ScanAll streams every row of the log, header included, in insertion
	// order to fn. Each call is a fresh pass from the beginning. Rows appended
	// after the scan started may or may not be seen. A non-nil error from fn
	// stops the scan and is returned as-is.
	ScanAll(fn func(row []string) error) error
}

type csvRecordRepository struct {
	path string
	mu   sync.Mutex
}

func NewRecordRepository(cfg *config.Config) RecordRepository {
	return &csvRecordRepository{path: cfg.Store.Path}
}

func (r *csvRecordRepository) EnsureInitialized() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked()
}

// ensureLocked must be called with r.mu held.
func (r *csvRecordRepository) ensureLocked() error {
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: stat %s: %w", ErrStoreUnavailable, r.path, err)
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrStoreUnavailable, r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(model.CSVHeader); err != nil {
		return fmt.Errorf("%w: write header: %w", ErrStoreUnavailable, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush header: %w", ErrStoreUnavailable, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync header: %w", ErrStoreUnavailable, err)
	}
	log.Info().Str("path", r.path).Msg("Created new log file")
	return nil
}

func (r *csvRecordRepository) Append(rec *model.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureLocked(); err != nil {
		return err
	}

	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrStoreUnavailable, r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(rec.CSVRow()); err != nil {
		return fmt.Errorf("%w: write row: %w", ErrStoreUnavailable, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush row: %w", ErrStoreUnavailable, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync row: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *csvRecordRepository) ScanAll(fn func(row []string) error) error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrStoreUnavailable, r.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Row-quality policy is the caller's; deliver short/long/odd rows as-is.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", ErrStoreUnavailable, r.path, err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
}
