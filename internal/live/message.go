// Package live fans tracked frames out to websocket clients and redis
// subscribers. Both sinks implement rotation.Observer and never block the
// frame loop: when a consumer falls behind, messages are dropped.
package live

import (
	"encoding/json"

	"github.com/banshee-data/rotation.report/internal/monitoring"
	"github.com/banshee-data/rotation.report/internal/overlay"
	"github.com/banshee-data/rotation.report/internal/rotation"
)

var logf = monitoring.Scoped("live")

// Message is the JSON payload pushed for each tracked frame.
type Message struct {
	RunID   string               `json:"run_id"`
	Frame   rotation.FrameResult `json:"frame"`
	Caption []overlay.Line       `json:"caption"`
}

// NewMessage builds the payload for res.
func NewMessage(runID string, res rotation.FrameResult) Message {
	return Message{RunID: runID, Frame: res, Caption: overlay.Caption(res)}
}

func encode(runID string, res rotation.FrameResult) ([]byte, error) {
	return json.Marshal(NewMessage(runID, res))
}
