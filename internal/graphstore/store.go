// Package graphstore wraps a Memgraph connection with the typed graph
// operations the rest of codegraphd needs: upserting bi-temporally versioned
// nodes, writing SUPERSEDES chains, and running the Cypher reads that back
// retrieval, context packs, and coordination.
package graphstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Config holds the connection parameters for a Memgraph instance, which
// speaks the Bolt protocol and is therefore reachable with the standard
// Neo4j Go driver.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string

	MaxRetries          int           // -1 = retry forever
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	BackoffFactor       float64
	LongOutageThreshold int
	LongOutageInterval  time.Duration
}

// DefaultConfig returns the retry tuning used when a caller does not
// override it: fast initial backoff, capped at a minute, falling back to a
// slow poll after repeated consecutive failures.
func DefaultConfig() Config {
	return Config{
		Host:                "127.0.0.1",
		Port:                7687,
		MaxRetries:          5,
		InitialBackoff:      500 * time.Millisecond,
		MaxBackoff:          1 * time.Minute,
		BackoffFactor:       2.0,
		LongOutageThreshold: 5,
		LongOutageInterval:  2 * time.Minute,
	}
}

// Store is a retrying wrapper around a neo4j.DriverWithContext connected to
// Memgraph. All graph mutation and read paths in the builder, retrieval,
// episodes, and coordination packages go through a Store.
type Store struct {
	driver neo4j.DriverWithContext
	logger *slog.Logger
	cfg    Config
}

// Open connects to Memgraph at cfg.Host:cfg.Port and verifies connectivity.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	uri := fmt.Sprintf("bolt://%s:%d", cfg.Host, cfg.Port)
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("graphstore: creating driver: %w", err)
	}
	s := &Store{driver: driver, logger: logger, cfg: cfg}
	if err := s.withRetry(ctx, "verify connectivity", func() error {
		return driver.VerifyConnectivity(ctx)
	}); err != nil {
		return nil, fmt.Errorf("graphstore: connecting to %s: %w", uri, err)
	}
	return s, nil
}

// Close releases the underlying driver's connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Record is a single row returned by ExecuteRead/ExecuteWrite, keyed by
// Cypher return alias.
type Record map[string]any

// ExecuteWrite runs a Cypher statement in a write transaction and returns
// all resulting rows, retrying on transient connection errors.
func (s *Store) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return s.execute(ctx, neo4j.AccessModeWrite, cypher, params)
}

// ExecuteRead runs a Cypher statement in a read transaction and returns all
// resulting rows, retrying on transient connection errors.
func (s *Store) ExecuteRead(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return s.execute(ctx, neo4j.AccessModeRead, cypher, params)
}

func (s *Store) execute(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]Record, error) {
	var rows []Record
	op := fmt.Sprintf("cypher[%s]", firstWords(cypher, 4))
	err := s.withRetry(ctx, op, func() error {
		session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode})
		defer session.Close(ctx)

		result, err := session.Run(ctx, cypher, params)
		if err != nil {
			return err
		}
		rows = nil
		for result.Next(ctx) {
			rec := result.Record()
			row := make(Record, len(rec.Keys))
			for _, k := range rec.Keys {
				v, _ := rec.Get(k)
				row[k] = v
			}
			rows = append(rows, row)
		}
		return result.Err()
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func firstWords(s string, n int) string {
	words := 0
	for i, r := range s {
		if r == ' ' || r == '\n' {
			words++
			if words >= n {
				return s[:i]
			}
		}
	}
	return s
}

// shouldRetry mirrors the teacher's retry classification: network, timeout,
// and connection-reset style errors are transient; anything else (bad
// Cypher, constraint violations) is not.
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	switch err.Error() {
	case "EOF", "unexpected EOF", "connection reset by peer", "broken pipe":
		return true
	}
	return neo4j.IsRetryable(err)
}

// withRetry wraps an operation with exponential backoff, switching to a
// slow long-outage poll interval after LongOutageThreshold consecutive
// failures. MaxRetries == -1 retries forever.
func (s *Store) withRetry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	attempt := 0
	consecutiveFailures := 0

	for {
		if s.cfg.MaxRetries >= 0 && attempt > s.cfg.MaxRetries {
			break
		}
		if attempt > 0 {
			backoff := s.cfg.InitialBackoff
			if consecutiveFailures >= s.cfg.LongOutageThreshold {
				backoff = s.cfg.LongOutageInterval
				s.logger.Warn("retrying graph operation in long outage mode",
					"operation", operation, "attempt", attempt,
					"consecutive_failures", consecutiveFailures, "backoff", backoff, "error", lastErr)
			} else {
				multiplier := 1 << uint(attempt-1)
				backoff = s.cfg.InitialBackoff * time.Duration(multiplier)
				if backoff > s.cfg.MaxBackoff {
					backoff = s.cfg.MaxBackoff
				}
				s.logger.Warn("retrying graph operation", "operation", operation,
					"attempt", attempt, "backoff", backoff, "error", lastErr)
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return fmt.Errorf("%s: context cancelled during retry: %w", operation, ctx.Err())
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) {
			return fmt.Errorf("%s: %w", operation, err)
		}
		attempt++
		consecutiveFailures++
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", operation, s.cfg.MaxRetries+1, lastErr)
}
