package rai

import (
	"context"
	"sync"
)

// =============================================================================
// MEMORY RECORD STORE - In-memory implementation (tests/dev)
// =============================================================================

type RegistroMemoria struct {
	mu           sync.RWMutex
	porID        map[string]Registro
	porMatricula map[string][]string // insertion order of record ids
}

func NovaRegistroMemoria() *RegistroMemoria {
	return &RegistroMemoria{
		porID:        make(map[string]Registro),
		porMatricula: make(map[string][]string),
	}
}

func (m *RegistroMemoria) SaveRegistro(_ context.Context, r Registro) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, existe := m.porID[r.ID]; !existe {
		m.porMatricula[r.Matricula] = append(m.porMatricula[r.Matricula], r.ID)
	}
	m.porID[r.ID] = r
	return nil
}

func (m *RegistroMemoria) GetRegistro(_ context.Context, id string) (Registro, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.porID[id]
	return r, ok, nil
}

func (m *RegistroMemoria) ListRegistros(_ context.Context, matricula string) ([]Registro, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.porMatricula[matricula]
	out := make([]Registro, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.porID[id])
	}
	return out, nil
}
