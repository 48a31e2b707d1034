package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory keeps records as JSON in process memory.
type Memory struct {
	mut  sync.RWMutex
	data map[Collection]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[Collection]map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, collection Collection, id string) (Record, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mut.RLock()
	raw, ok := m.data[collection][id]
	m.mut.RUnlock()

	if !ok {
		return nil, nil
	}

	var record Record

	err := json.Unmarshal(raw, &record)

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", collection, id, err)
	}

	return record, nil
}

func (m *Memory) Save(ctx context.Context, collection Collection, record Record) error {

	if err := ctx.Err(); err != nil {
		return err
	}

	id := record.ID()

	if id == "" {
		return fmt.Errorf("cannot save to %s without an id", collection)
	}

	raw, err := json.Marshal(record)

	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", collection, id, err)
	}

	m.mut.Lock()
	defer m.mut.Unlock()

	if m.data[collection] == nil {
		m.data[collection] = make(map[string][]byte)
	}

	m.data[collection][id] = raw

	return nil
}
