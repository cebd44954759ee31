package sink

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-tangra/go-tangra-hwreport/internal/convert"
	"github.com/go-tangra/go-tangra-hwreport/internal/store"
)

// History is the part of the report store a StoreSink needs.
type History interface {
	Insert(ctx context.Context, rec *store.ReportRecord) (int64, time.Time, error)
	Latest(ctx context.Context, hostname, systemUUID string) (*store.ReportRecord, error)
	Purge(ctx context.Context, olderThan time.Duration) (int64, error)
}

// StoreSink records reports in the local history. The path is kept as the
// record name. A report identical to the latest one stored for the same
// machine is not stored again.
type StoreSink struct {
	history   History
	hostname  string
	format    string
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// StoreOption configures a StoreSink.
type StoreOption func(*StoreSink)

// WithRetention purges records older than d after every insert.
func WithRetention(d time.Duration) StoreOption {
	return func(s *StoreSink) { s.retention = d }
}

// WithStoreLogger sets the logger for skipped and purged records.
func WithStoreLogger(log zerolog.Logger) StoreOption {
	return func(s *StoreSink) { s.log = log }
}

// NewStoreSink returns a sink recording reports serialized in format for
// the machine named hostname.
func NewStoreSink(h History, hostname, format string, opts ...StoreOption) *StoreSink {
	s := &StoreSink{
		history:  h,
		hostname: hostname,
		format:   format,
		now:      func() time.Time { return time.Now().UTC() },
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *StoreSink) Write(ctx context.Context, path string, data []byte) error {
	rec, err := convert.ToRecord(path, s.hostname, s.format, data, s.now())
	if err != nil {
		return &SinkError{Path: path, Err: Permanent(err)}
	}

	latest, err := s.history.Latest(ctx, s.hostname, rec.SystemUUID)
	switch {
	case err == nil && latest.Digest == rec.Digest && latest.Format == rec.Format:
		s.log.Debug().Int64("id", latest.ID).Str("digest", rec.Digest).Msg("report unchanged; not stored")
		return nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return &SinkError{Path: path, Err: err}
	}

	id, _, err := s.history.Insert(ctx, rec)
	if err != nil {
		return &SinkError{Path: path, Err: err}
	}
	s.log.Info().Int64("id", id).Str("digest", rec.Digest).Msg("report stored")

	if s.retention > 0 {
		n, err := s.history.Purge(ctx, s.retention)
		if err != nil {
			return &SinkError{Path: path, Err: err}
		}
		if n > 0 {
			s.log.Info().Int64("records", n).Msg("purged old reports")
		}
	}
	return nil
}
