package inventory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/inventory-updater/internal/alma"
)

// ItemAPI is the library service the workflow reads from and writes to
type ItemAPI interface {
	// LookupItem returns the item record document for a barcode
	LookupItem(ctx context.Context, barcode string) ([]byte, error)

	// UpdateItem submits a patched item record
	UpdateItem(ctx context.Context, ids alma.ItemIDs, record []byte) error
}

// Renderer presents a scan outcome to the operator
type Renderer interface {
	Render(outcome *Outcome) error
}

// IDGenerator generates unique IDs for scans
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates time-ordered UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service runs the scan workflow: lookup, classify, patch, update
type Service struct {
	cfg         Config
	api         ItemAPI
	journal     Journal
	idGenerator IDGenerator
	timeSource  TimeSource

	// mu serialises scans; one item is finished before the next is looked up
	mu sync.Mutex
}

// NewService creates a new Service with default ID generator and time source.
// journal may be nil.
func NewService(cfg Config, api ItemAPI, journal Journal) *Service {
	return NewServiceWithDeps(cfg, api, journal, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(cfg Config, api ItemAPI, journal Journal, idGen IDGenerator, timeSrc TimeSource) *Service {
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = alma.DefaultTimeout
	}
	return &Service{
		cfg:         cfg,
		api:         api,
		journal:     journal,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Config returns the configuration the service was built with
func (s *Service) Config() Config {
	return s.cfg
}

// Idle returns the outcome shown before the first scan or after a clear
func (s *Service) Idle() *Outcome {
	return &Outcome{
		State:     StateIdle,
		Directive: DirectiveFor(StateIdle, Classification{}, false, s.cfg.DefaultMessage),
	}
}

// Scan runs one barcode through the workflow. It never returns nil; the
// error that ended the scan, if any, is available from Outcome.Err.
func (s *Service) Scan(ctx context.Context, barcode string) *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.timeSource.Now()
	outcome := &Outcome{
		ID:        s.idGenerator.Generate(),
		Barcode:   barcode,
		State:     StateLookingUp,
		ScanDate:  ScanDate(now),
		ScannedAt: now,
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.ScanTimeout)
	defer cancel()

	s.run(ctx, outcome)

	outcome.Directive = DirectiveFor(outcome.State, outcome.Status, outcome.InTempLocation(), s.cfg.DefaultMessage)
	s.finish(outcome)
	return outcome
}

// ScanBatch scans barcodes in order
func (s *Service) ScanBatch(ctx context.Context, barcodes []string) []*Outcome {
	outcomes := make([]*Outcome, 0, len(barcodes))
	for _, barcode := range barcodes {
		outcomes = append(outcomes, s.Scan(ctx, barcode))
	}
	return outcomes
}

func (s *Service) run(ctx context.Context, outcome *Outcome) {
	start := time.Now()
	doc, err := s.api.LookupItem(ctx, outcome.Barcode)
	observeAPI("lookup", start)
	if err != nil {
		if errors.Is(err, alma.ErrNotFound) {
			outcome.fail(StateNotFound, err)
		} else {
			outcome.fail(StateConnectionFailed, err)
		}
		return
	}
	outcome.State = StateFound

	record, err := ParseRecord(doc)
	if err != nil {
		outcome.fail(StateMalformed, err)
		return
	}
	outcome.Record = record

	outcome.State = StateClassifying
	outcome.Status = s.cfg.Statuses.Classify(record.ProcessStatus)
	if outcome.Status.BlocksUpdate && s.cfg.Policy == PolicyHold {
		outcome.State = StateBlocked
		return
	}

	patched, err := Patch(record.Raw(), outcome.ScanDate)
	if err != nil {
		outcome.fail(StateMalformed, err)
		return
	}

	outcome.State = StateUpdating
	start = time.Now()
	err = s.api.UpdateItem(ctx, record.IDs, patched)
	observeAPI("update", start)
	if err != nil {
		outcome.fail(StateUpdateFailed, err)
		return
	}

	outcome.State = StateUpdated
	outcome.Updated = true
}

// finish logs, counts and journals a completed scan
func (s *Service) finish(outcome *Outcome) {
	attrs := []any{
		"barcode", outcome.Barcode,
		"state", string(outcome.State),
	}
	if outcome.Status.Code != "" {
		attrs = append(attrs, "process_status", outcome.Status.Code)
	}
	if outcome.InTempLocation() {
		attrs = append(attrs, "temp_location", true)
	}
	if outcome.err != nil {
		attrs = append(attrs, "error", outcome.err)
	}

	switch outcome.State {
	case StateConnectionFailed:
		slog.Error("Connection attempt failed", attrs...)
	case StateNotFound:
		slog.Error("Item not found in Alma", attrs...)
	case StateMalformed:
		slog.Error("Item record failed integrity check", attrs...)
	case StateBlocked:
		slog.Error("Item has process status, inventory date not updated", attrs...)
	case StateUpdateFailed:
		slog.Error("Inventory date not updated", attrs...)
	case StateUpdated:
		slog.Info("Inventory date updated", append(attrs, "scan_date", outcome.ScanDate)...)
	}

	scansTotal.WithLabelValues(string(outcome.State)).Inc()

	if s.journal == nil {
		return
	}
	if err := s.journal.SaveScan(outcome); err != nil {
		slog.Warn("Failed to journal scan", "barcode", outcome.Barcode, "error", err)
	}
}
