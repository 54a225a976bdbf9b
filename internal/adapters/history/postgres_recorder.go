package history

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Birgenshire/homink/internal/domain"
	"github.com/Birgenshire/homink/internal/ports"
)

// PostgresRecorder persists accepted readings for history display (daily
// totals, charts). It is entirely optional; the refresh core never waits on it.
type PostgresRecorder struct {
	db        *sql.DB
	tableName string
}

func NewPostgresRecorder(db *sql.DB, table string) *PostgresRecorder {
	return &PostgresRecorder{db: db, tableName: table}
}

func (r *PostgresRecorder) Name() string { return "postgres" }

func (r *PostgresRecorder) Record(readings []domain.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(r.tableName)
	b.WriteString(" (source_id, state, available, at) VALUES ")

	args := make([]any, 0, len(readings)*4)
	for i, reading := range readings {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(fmt.Sprintf("($%d,$%d,$%d,$%d)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4))
		args = append(args,
			reading.SourceID,
			reading.State,
			reading.Available,
			reading.At,
		)
	}

	b.WriteString(" ON CONFLICT (source_id, at) DO NOTHING")

	_, err := r.db.Exec(b.String(), args...)
	return err
}

var _ ports.Recorder = (*PostgresRecorder)(nil)
