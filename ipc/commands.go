package ipc

import "github.com/nstehr/volley/volley-core/plan"

// Message types sent to the bridge.
const (
	TypeAck     = "ack"
	TypeControl = "control"
)

// ControlMessage answers a snapshot with the controls for that tick.
type ControlMessage struct {
	Tick   int         `json:"tick"`
	Output plan.Output `json:"output"`
	// Plan describes the active plan for on-screen debugging.
	Plan string `json:"plan,omitempty"`
}
