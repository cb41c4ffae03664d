package codec

import "encoding/json"

// DefaultMigrations returns the migration chain shipped with this
// module. Each entry upgrades exactly one version step; Decode chains
// them until CurrentVersion is reached, the same forward-only sweep
// cmd/warren-migrate's tool applies to on-disk records.
func DefaultMigrations() []Migration {
	return []Migration{
		migrateV1ToV2,
		migrateV2ToV3,
	}
}

// migrateV1ToV2 introduces the strategy.type field, defaulting legacy
// records to "sequential".
var migrateV1ToV2 = Migration{
	From: "1.0.0",
	To:   "2.0.0",
	Run: func(raw json.RawMessage) (json.RawMessage, error) {
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if strategy, ok := m["strategy"].(map[string]interface{}); ok {
			if _, has := strategy["type"]; !has {
				strategy["type"] = "sequential"
			}
		}
		return json.Marshal(m)
	},
}

// migrateV2ToV3 introduces the checkpoints field, defaulting to an
// empty sequence for records that predate checkpointing.
var migrateV2ToV3 = Migration{
	From: "2.0.0",
	To:   "3.0.0",
	Run: func(raw json.RawMessage) (json.RawMessage, error) {
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		if _, has := m["checkpoints"]; !has {
			m["checkpoints"] = []interface{}{}
		}
		return json.Marshal(m)
	},
}
