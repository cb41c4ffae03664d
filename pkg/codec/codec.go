// Package codec implements the StateCodec capability: versioned
// serialization of a ReasoningState with an ordered migration chain,
// modeled on the teacher's FSM snapshot envelope (pkg/manager/fsm.go)
// which also prepends version metadata ahead of the payload before
// handing bytes to storage.
package codec

import (
	"encoding/json"

	"github.com/reasonchain/core/pkg/types"
)

// CurrentVersion is the schema version written by Encode.
const CurrentVersion = "3.0.0"

const component = "codec"

// envelope is the on-disk wrapper around a ReasoningState, matching
// spec section 6's state file format.
type envelope struct {
	Version      string          `json:"_version"`
	SerializedAt int64           `json:"_serializedAt"`
	MigratedAt   int64           `json:"_migratedAt,omitempty"`
	MigratedFrom string          `json:"_migratedFrom,omitempty"`
	State        json.RawMessage `json:"state"`
}

// NowFunc is overridable in tests; defaults to wall-clock milliseconds.
var NowFunc = nowMillis

// Migration upgrades a raw state payload from one schema version to the
// next. Migrations are chained in order from a stored version up to
// CurrentVersion.
type Migration struct {
	From string
	To   string
	Run  func(raw json.RawMessage) (json.RawMessage, error)
}

// Codec serializes and deserializes ReasoningState with schema
// migration support.
type Codec struct {
	migrations []Migration
}

// New returns a Codec with the given ordered migration chain. Chain
// order matters: Decode walks forward from a stored version applying
// each migration whose From matches the current version until it
// reaches CurrentVersion.
func New(migrations ...Migration) *Codec {
	return &Codec{migrations: migrations}
}

// Encode serializes state into the versioned on-disk envelope.
func (c *Codec) Encode(state *types.ReasoningState) ([]byte, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, types.Wrap(types.KindInternal, component, "failed to marshal state", err)
	}
	env := envelope{
		Version:      CurrentVersion,
		SerializedAt: NowFunc(),
		State:        raw,
	}
	out, err := json.Marshal(env)
	if err != nil {
		return nil, types.Wrap(types.KindInternal, component, "failed to marshal envelope", err)
	}
	return out, nil
}

// Decode parses bytes written by Encode (at any supported prior
// version), migrating forward to CurrentVersion. Unparseable bytes
// fail with Corrupt; a version with no migration path fails with
// UnsupportedVersion.
func (c *Codec) Decode(data []byte) (*types.ReasoningState, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, types.Wrap(types.KindCorrupt, component, "failed to parse envelope", err)
	}
	if env.Version == "" || len(env.State) == 0 {
		return nil, types.NewError(types.KindCorrupt, component, "envelope missing version or state")
	}

	raw := env.State
	version := env.Version
	migratedFrom := ""
	for version != CurrentVersion {
		m := c.findMigration(version)
		if m == nil {
			return nil, types.NewError(types.KindUnsupportedVersion, component,
				"no migration path from version "+version)
		}
		next, err := m.Run(raw)
		if err != nil {
			return nil, types.Wrap(types.KindCorrupt, component, "migration failed from "+version, err)
		}
		if migratedFrom == "" {
			migratedFrom = version
		}
		raw = next
		version = m.To
	}

	var state types.ReasoningState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, types.Wrap(types.KindCorrupt, component, "failed to parse state", err)
	}
	return &state, nil
}

func (c *Codec) findMigration(from string) *Migration {
	for i := range c.migrations {
		if c.migrations[i].From == from {
			return &c.migrations[i]
		}
	}
	return nil
}
