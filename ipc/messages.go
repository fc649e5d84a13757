package ipc

import "github.com/nstehr/volley/volley-core/model"

// Message types sent by the bridge.
const (
	TypeHello    = "hello"
	TypeSnapshot = "world_snapshot"
)

// HelloMessage opens a connection for one controlled agent.
type HelloMessage struct {
	Name  string     `json:"name"`
	Index int        `json:"index"`
	Team  model.Team `json:"team"`
	// Doctrine optionally names a doctrine file to start with.
	Doctrine string `json:"doctrine,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
}

// SnapshotMessage is one tick of world state, from the agent's viewpoint.
type SnapshotMessage struct {
	World model.World `json:"world"`
}
