package probe

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/entrygate/entrygate/pkg/retry"
)

// WaitPostgres blocks until the postgres server behind dsn accepts
// queries. A TCP accept only proves something is listening; during
// startup postgres answers the socket before it answers protocol, so
// the deep probe pings until the handshake works. Same fixed-interval,
// no-cap policy as the TCP gate.
func (p *Prober) WaitPostgres(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		// DSN parse failure is a configuration error, not a
		// transient condition
		return fmt.Errorf("invalid postgres DSN: %w", err)
	}
	defer db.Close()

	// One connection is all a ping needs
	db.SetMaxOpenConns(1)

	log := p.log.WithField("endpoint", "postgres")
	log.Info("waiting for postgres to accept queries")

	attempts := 0
	err = retry.Do(ctx, retry.Fixed(p.interval), func() error {
		attempts++
		pingCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		return fmt.Errorf("waiting for postgres: %w", err)
	}

	log.Info("postgres is ready", map[string]interface{}{"attempts": attempts})
	return nil
}
