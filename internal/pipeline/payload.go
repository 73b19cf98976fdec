package pipeline

import (
	"encoding/json"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/evaluator"
)

// TaskPayload is the JSON shape carried in domain.QueuedTask.Payload: a
// snapshot of the completed call plus whatever extra context the task
// type's handler needs. Carrying the snapshot inline avoids a second
// store round-trip per task.
type TaskPayload struct {
	State   *domain.DialogueState         `json:"state"`
	Profile evaluator.UserProfileSnapshot `json:"profile,omitempty"`
}

func encodePayload(p TaskPayload) ([]byte, error) {
	return json.Marshal(p)
}

func decodePayload(data []byte) (TaskPayload, error) {
	var p TaskPayload
	err := json.Unmarshal(data, &p)
	return p, err
}
