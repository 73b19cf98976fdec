// Package dialogue implements the Dialogue State Tracker: per-call finite
// state machine, turn history, and key-point extraction.
package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/domain"
	"ninjaengine/internal/observability"
)

const snapshotKeyPrefix = "dialogue_state:"

// Tracker owns the live DialogueState for every active call. State is
// partitioned across a fixed number of shards, each guarded by its own
// mutex, so turns on different calls never contend with each other (spec's
// per-key-mutex requirement over a single global lock).
type Tracker struct {
	shards    []*shard
	snapshots cacheutil.Store
	snapshotTTL time.Duration
	persist   bool
}

type shard struct {
	mu    sync.Mutex
	calls map[string]*domain.DialogueState
}

// Config configures a Tracker.
type Config struct {
	ShardCount  int
	SnapshotTTL time.Duration
	Persist     bool
}

// New builds a Tracker. snapshots may be nil, in which case Redis
// write-through is skipped entirely and the tracker is purely in-memory.
func New(cfg Config, snapshots cacheutil.Store) *Tracker {
	count := cfg.ShardCount
	if count <= 0 {
		count = 32
	}
	shards := make([]*shard, count)
	for i := range shards {
		shards[i] = &shard{calls: make(map[string]*domain.DialogueState)}
	}
	return &Tracker{
		shards:      shards,
		snapshots:   snapshots,
		snapshotTTL: cfg.SnapshotTTL,
		persist:     cfg.Persist && snapshots != nil,
	}
}

func (t *Tracker) shardFor(callID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(callID))
	return t.shards[h.Sum32()%uint32(len(t.shards))]
}

// GetOrCreate returns the DialogueState for callID, creating it on first
// use. Idempotent: repeated calls with the same id return the same state.
func (t *Tracker) GetOrCreate(callID, userID, callerFingerprint string) *domain.DialogueState {
	s := t.shardFor(callID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.calls[callID]; ok {
		return st
	}
	st := &domain.DialogueState{
		CallID:            callID,
		UserID:            userID,
		CallerFingerprint: callerFingerprint,
		Stage:             domain.StageInitial,
		StartedAt:         time.Now(),
	}
	s.calls[callID] = st
	return st
}

// Update appends a turn, computes the transition trigger and applies the
// transition for caller turns (AI turns leave the stage unchanged), and
// extracts at most one key point. Returns domain.ErrStateClosed
// wrapped if the call has already ended.
func (t *Tracker) Update(ctx context.Context, callID string, speaker domain.Speaker, text, intent string, intentConf float64, emotion string, emotionConf float64) (*domain.DialogueState, error) {
	s := t.shardFor(callID)
	s.mu.Lock()
	st, ok := s.calls[callID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: call %s not found", domain.ErrInputInvalid, callID)
	}
	if st.Ended {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: call %s", domain.ErrStateClosed, callID)
	}

	turn := domain.TurnRecord{
		Speaker:     speaker,
		Text:        text,
		Timestamp:   time.Now(),
		Intent:      intent,
		IntentConf:  intentConf,
		Emotion:     emotion,
		EmotionConf: emotionConf,
	}
	st.Turns = append(st.Turns, turn)
	st.TurnCount++

	if speaker == domain.SpeakerCaller && intent != "" {
		st.IntentHistory = append(st.IntentHistory, intent)
	}
	if speaker == domain.SpeakerCaller && emotion != "" {
		st.EmotionHistory = append(st.EmotionHistory, emotion)
	}

	recent := st.IntentHistory
	if len(recent) > 0 {
		recent = recent[:len(recent)-1] // "last 3 turns" excludes the turn just appended
	}
	if speaker == domain.SpeakerCaller {
		st.Stage = nextStage(st.Stage, text, emotion, intent, recent)
	}

	if kp, found := extractKeyPoint(intent, text); found {
		st.KeyPoints = append(st.KeyPoints, kp)
	}

	snap := st.Clone()
	s.mu.Unlock()

	t.writeSnapshot(ctx, snap)
	return snap, nil
}

// Snapshot returns a read-only copy of the current state, or nil if the
// call id is unknown.
func (t *Tracker) Snapshot(callID string) *domain.DialogueState {
	s := t.shardFor(callID)
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.calls[callID]
	if !ok {
		return nil
	}
	return st.Clone()
}

// End terminates the call state. Further Update calls fail with
// domain.ErrStateClosed.
func (t *Tracker) End(ctx context.Context, callID, reason string) (domain.Summary, error) {
	s := t.shardFor(callID)
	s.mu.Lock()
	st, ok := s.calls[callID]
	if !ok {
		s.mu.Unlock()
		return domain.Summary{}, fmt.Errorf("%w: call %s not found", domain.ErrInputInvalid, callID)
	}
	if st.Ended {
		s.mu.Unlock()
		return domain.Summary{}, fmt.Errorf("%w: call %s", domain.ErrStateClosed, callID)
	}
	st.Ended = true
	st.EndReason = reason
	st.Stage = domain.StageCallEnd
	endedAt := time.Now()

	summary := domain.Summary{
		CallID:    st.CallID,
		UserID:    st.UserID,
		Stage:     st.Stage,
		TurnCount: st.TurnCount,
		Duration:  endedAt.Sub(st.StartedAt),
		EndReason: reason,
		StartedAt: st.StartedAt,
		EndedAt:   endedAt,
	}
	snap := st.Clone()
	s.mu.Unlock()

	t.writeSnapshot(ctx, snap)
	return summary, nil
}

// writeSnapshot best-effort persists the call state to Redis. A failure
// here is logged and never surfaced to the caller — the in-memory map
// remains the source of truth for the running process.
func (t *Tracker) writeSnapshot(ctx context.Context, st *domain.DialogueState) {
	if !t.persist || st == nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		observability.LoggerForCall(ctx, st.CallID).Warn().Err(err).Msg("dialogue snapshot marshal failed")
		return
	}
	if err := t.snapshots.Set(ctx, snapshotKeyPrefix+st.CallID, string(data), t.snapshotTTL); err != nil {
		observability.LoggerForCall(ctx, st.CallID).Warn().Err(err).Msg("dialogue snapshot write failed")
	}
}

// Rehydrate loads a call's state back from the Redis snapshot cache into
// the in-memory map, for recovering in-flight calls after a restart.
func (t *Tracker) Rehydrate(ctx context.Context, callID string) (*domain.DialogueState, error) {
	if !t.persist {
		return nil, nil
	}
	raw, ok, err := t.snapshots.Get(ctx, snapshotKeyPrefix+callID)
	if err != nil {
		return nil, fmt.Errorf("%w: rehydrate %s: %v", domain.ErrTransient, callID, err)
	}
	if !ok {
		return nil, nil
	}
	var st domain.DialogueState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("%w: rehydrate %s unmarshal: %v", domain.ErrFatal, callID, err)
	}
	s := t.shardFor(callID)
	s.mu.Lock()
	s.calls[callID] = &st
	s.mu.Unlock()
	return st.Clone(), nil
}
