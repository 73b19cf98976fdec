// Package store implements the Postgres persistence adapter: call
// records, user profiles, spam profiles, and analysis results. Read:
// conversation records by call id, recent conversations by user, call
// record by id, user profile. Write: analysis result rows keyed by
// (call_id, analysis_type). The core dialogue/pipeline packages depend
// only on this package's narrow contract, never on pgx directly.
package store

import (
	"context"
	"encoding/json"
	"time"

	"ninjaengine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres-backed persistence adapter.
type Store struct {
	pool *pgxpool.Pool
}

// Open creates a connection pool with conservative defaults and verifies
// connectivity with a bounded ping, mirroring the teacher's own pool
// bootstrap.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 16
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Init creates the schema if absent; development-time best-effort, not a
// migration tool.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS call_records (
	call_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	caller_fingerprint TEXT NOT NULL,
	final_stage TEXT NOT NULL,
	turn_count INT NOT NULL,
	end_reason TEXT,
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ,
	turns JSONB NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS user_profiles (
	user_id TEXT PRIMARY KEY,
	profile JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS spam_profiles (
	caller_fingerprint TEXT PRIMARY KEY,
	profile JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analysis_results (
	call_id TEXT NOT NULL,
	analysis_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (call_id, analysis_type)
);

CREATE INDEX IF NOT EXISTS idx_call_records_user ON call_records (user_id, started_at DESC);
`)
	return err
}

// SaveCallRecord upserts a completed call's summary and turn history.
func (s *Store) SaveCallRecord(ctx context.Context, state *domain.DialogueState, endedAt time.Time) error {
	turns, err := json.Marshal(state.Turns)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO call_records (call_id, user_id, caller_fingerprint, final_stage, turn_count, end_reason, started_at, ended_at, turns)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (call_id) DO UPDATE SET
	final_stage = EXCLUDED.final_stage,
	turn_count = EXCLUDED.turn_count,
	end_reason = EXCLUDED.end_reason,
	ended_at = EXCLUDED.ended_at,
	turns = EXCLUDED.turns
`, state.CallID, state.UserID, state.CallerFingerprint, string(state.Stage), state.TurnCount, state.EndReason, state.StartedAt, endedAt, turns)
	return err
}

// CallRecord is a row from call_records.
type CallRecord struct {
	CallID            string
	UserID            string
	CallerFingerprint string
	FinalStage        string
	TurnCount         int
	EndReason         string
	StartedAt         time.Time
	EndedAt           *time.Time
	Turns             []domain.TurnRecord
}

// GetCallRecord reads one call by id.
func (s *Store) GetCallRecord(ctx context.Context, callID string) (CallRecord, error) {
	row := s.pool.QueryRow(ctx, `
SELECT call_id, user_id, caller_fingerprint, final_stage, turn_count, end_reason, started_at, ended_at, turns
FROM call_records WHERE call_id = $1
`, callID)
	return scanCallRecord(row)
}

// ListRecentCallsByUser reads up to limit call records for userID, newest
// first.
func (s *Store) ListRecentCallsByUser(ctx context.Context, userID string, limit int) ([]CallRecord, error) {
	rows, err := s.pool.Query(ctx, `
SELECT call_id, user_id, caller_fingerprint, final_stage, turn_count, end_reason, started_at, ended_at, turns
FROM call_records WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2
`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		rec, err := scanCallRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanCallRecord(row pgx.Row) (CallRecord, error) {
	var rec CallRecord
	var turns []byte
	if err := row.Scan(&rec.CallID, &rec.UserID, &rec.CallerFingerprint, &rec.FinalStage, &rec.TurnCount, &rec.EndReason, &rec.StartedAt, &rec.EndedAt, &turns); err != nil {
		return CallRecord{}, err
	}
	if err := json.Unmarshal(turns, &rec.Turns); err != nil {
		return CallRecord{}, err
	}
	return rec, nil
}

// SaveUserProfile upserts a caller's personalization profile.
func (s *Store) SaveUserProfile(ctx context.Context, profile domain.UserProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO user_profiles (user_id, profile, updated_at) VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET profile = EXCLUDED.profile, updated_at = now()
`, profile.UserID, payload)
	return err
}

// GetUserProfile reads a caller's personalization profile.
func (s *Store) GetUserProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT profile FROM user_profiles WHERE user_id = $1`, userID).Scan(&payload)
	if err != nil {
		return domain.UserProfile{}, err
	}
	var profile domain.UserProfile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return domain.UserProfile{}, err
	}
	return profile, nil
}

// SaveSpamProfile upserts a fingerprinted caller's spam-classification
// profile. Never keyed by raw phone number.
func (s *Store) SaveSpamProfile(ctx context.Context, profile domain.SpamProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO spam_profiles (caller_fingerprint, profile, updated_at) VALUES ($1, $2, now())
ON CONFLICT (caller_fingerprint) DO UPDATE SET profile = EXCLUDED.profile, updated_at = now()
`, profile.CallerFingerprint, payload)
	return err
}

// SaveAnalysisResult writes one analysis-type row for a call, per
// spec.md §6's "(call_id, analysis_type, payload)" write contract.
func (s *Store) SaveAnalysisResult(ctx context.Context, callID, analysisType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO analysis_results (call_id, analysis_type, payload) VALUES ($1, $2, $3)
ON CONFLICT (call_id, analysis_type) DO UPDATE SET payload = EXCLUDED.payload, created_at = now()
`, callID, analysisType, data)
	return err
}
