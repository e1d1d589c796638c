package core

// service.go ties the pure pieces together for stateful frontends. A
// Service reads one upload at a time (size capped, BOM stripped, UTF-8
// sanitized), runs Extract/Flatten/Analyze over it, and keeps the
// resulting Conversion snapshot in memory under a fresh ID until the
// retention window lapses. Snapshots are immutable: a new file produces a
// new Conversion, never a merge into an old one.

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Default service settings, applied when the corresponding Options fields
// are zero.
const (
	DefaultMaxFileSize = 10 << 20 // rosters are small; 10 MB is generous
	DefaultRetention   = 30 * time.Minute
)

// Options configures a Service. Zero values fall back to the defaults
// above (and to the limiter's own defaults for the concurrency fields).
type Options struct {
	MaxFileSize   int64         // upload size cap in bytes
	Retention     time.Duration // how long a Conversion stays retrievable
	MaxConcurrent int           // parallel Convert calls allowed
	MaxWait       time.Duration // how long Convert waits for a slot
}

// Service owns the in-memory conversion store shared by the web frontend.
type Service struct {
	maxFileSize int64
	retention   time.Duration
	limiter     *ConvertLimiter

	mu          sync.RWMutex
	conversions map[string]*Conversion
}

// NewService creates a Service with the given options.
func NewService(opts Options) *Service {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}

	return &Service{
		maxFileSize: opts.MaxFileSize,
		retention:   opts.Retention,
		limiter:     NewConvertLimiter(opts.MaxConcurrent, opts.MaxWait),
		conversions: make(map[string]*Conversion),
	}
}

// Convert reads one CSV upload from src and turns it into a stored
// Conversion. It fails with the extraction errors (ErrEmptyInput,
// *MissingColumnsError), with a size-cap error, or with a limiter error
// when too many conversions are already running. An upload whose rows all
// get excluded still succeeds, with zero records; deciding how to present
// that is the frontend's concern.
func (s *Service) Convert(ctx context.Context, filename string, src io.Reader) (*Conversion, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	reader, counter := WrapUpload(io.LimitReader(src, s.maxFileSize+1))
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if counter.BytesRead > s.maxFileSize {
		return nil, fmt.Errorf("%w: limit is %s", ErrFileTooLarge, humanize.Bytes(uint64(s.maxFileSize)))
	}

	text := string(data)
	records, err := Extract(text)
	if err != nil {
		return nil, err
	}
	analysis, err := Analyze(text)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	conv := &Conversion{
		ID:        uuid.New().String(),
		Filename:  SanitizeString(filename),
		Size:      counter.BytesRead,
		SizeHuman: humanize.Bytes(uint64(counter.BytesRead)),
		Records:   records,
		Output:    Flatten(records),
		Analysis:  analysis,
		CreatedAt: now,
		ExpiresAt: now.Add(s.retention),
	}

	s.mu.Lock()
	s.conversions[conv.ID] = conv
	s.mu.Unlock()

	s.scheduleExpiry(conv.ID)

	return conv, nil
}

// Get returns the conversion stored under id, or ErrConversionNotFound.
func (s *Service) Get(id string) (*Conversion, error) {
	s.mu.RLock()
	conv, ok := s.conversions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrConversionNotFound
	}
	return conv, nil
}

// Remove drops a conversion before its retention window lapses. Returns
// ErrConversionNotFound when the id is unknown or already expired.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversions[id]; !ok {
		return ErrConversionNotFound
	}
	delete(s.conversions, id)
	return nil
}

// Len returns the number of conversions currently stored.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversions)
}

// MaxFileSize returns the upload size cap in bytes, for transport layers
// that enforce it earlier (http.MaxBytesReader).
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// LimiterStatus reports the conversion limiter state for monitoring.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until in-flight conversions finish or ctx is
// cancelled. Used during graceful shutdown.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// scheduleExpiry drops the conversion after the retention window. Expiry
// of an ID that was already removed is a no-op.
func (s *Service) scheduleExpiry(id string) {
	time.AfterFunc(s.retention, func() {
		s.mu.Lock()
		delete(s.conversions, id)
		s.mu.Unlock()
	})
}
