package ipc

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nstehr/volley/volley-core/model"
)

// snapshotSchema rejects snapshots the decision core cannot reason about:
// missing the controlled agent, non-numeric vectors, or a negative clock.
const snapshotSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "vec3": {
      "type": "object",
      "required": ["x", "y", "z"],
      "properties": {
        "x": {"type": "number"},
        "y": {"type": "number"},
        "z": {"type": "number"}
      }
    },
    "agent": {
      "type": "object",
      "required": ["index", "team", "position", "velocity", "orientation", "boost"],
      "properties": {
        "index": {"type": "integer", "minimum": 0},
        "team": {"enum": [0, 1]},
        "position": {"$ref": "#/definitions/vec3"},
        "velocity": {"$ref": "#/definitions/vec3"},
        "orientation": {
          "type": "object",
          "required": ["nose", "roof", "right"],
          "properties": {
            "nose": {"$ref": "#/definitions/vec3"},
            "roof": {"$ref": "#/definitions/vec3"},
            "right": {"$ref": "#/definitions/vec3"}
          }
        },
        "boost": {"type": "number", "minimum": 0, "maximum": 100}
      }
    }
  },
  "type": "object",
  "required": ["world"],
  "properties": {
    "world": {
      "type": "object",
      "required": ["tick", "time", "self", "agents", "ball"],
      "properties": {
        "tick": {"type": "integer", "minimum": 0},
        "time": {"type": "number", "minimum": 0},
        "self": {"type": "integer", "minimum": 0},
        "agents": {"type": "array", "minItems": 1, "items": {"$ref": "#/definitions/agent"}},
        "ball": {
          "type": "object",
          "required": ["position", "velocity"],
          "properties": {
            "position": {"$ref": "#/definitions/vec3"},
            "velocity": {"$ref": "#/definitions/vec3"}
          }
        },
        "boostPads": {"type": ["array", "null"]}
      }
    }
  }
}`

// SnapshotValidator checks world_snapshot payloads before they reach the
// advisor.
type SnapshotValidator struct {
	schema *jsonschema.Schema
}

func NewSnapshotValidator() (*SnapshotValidator, error) {
	s, err := jsonschema.CompileString("world_snapshot.schema.json", snapshotSchema)
	if err != nil {
		return nil, fmt.Errorf("compile snapshot schema: %w", err)
	}
	return &SnapshotValidator{schema: s}, nil
}

// Decode validates raw against the schema and decodes it. It also rejects
// a self index outside the agent list, which the schema cannot express.
func (v *SnapshotValidator) Decode(raw json.RawMessage) (model.World, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return model.World{}, fmt.Errorf("snapshot: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return model.World{}, fmt.Errorf("snapshot: %w", err)
	}
	var msg SnapshotMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return model.World{}, fmt.Errorf("snapshot: %w", err)
	}
	if _, ok := msg.World.Me(); !ok {
		return model.World{}, fmt.Errorf("snapshot tick %d: self %d out of range", msg.World.Tick, msg.World.Self)
	}
	return msg.World, nil
}
