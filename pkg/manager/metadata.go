package manager

import (
	"encoding/json"

	"github.com/reasonchain/core/pkg/types"
)

func marshalMetadata(meta *types.SessionMetadata) ([]byte, error) {
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, types.Wrap(types.KindInternal, component, "failed to marshal metadata", err)
	}
	return data, nil
}

func unmarshalMetadata(data []byte) (*types.SessionMetadata, error) {
	var meta types.SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, types.Wrap(types.KindCorrupt, component, "failed to parse metadata", err)
	}
	return &meta, nil
}
