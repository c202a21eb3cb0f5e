package pontos

import (
	"context"
	"sync"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (tests/dev)
// =============================================================================

type Memoria struct {
	mu          sync.RWMutex
	lancamentos map[string][]Lancamento
	chaves      map[string]bool
}

func NovaMemoria() *Memoria {
	return &Memoria{
		lancamentos: make(map[string][]Lancamento),
		chaves:      make(map[string]bool),
	}
}

func (m *Memoria) AppendLancamento(_ context.Context, l Lancamento) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ChaveIdem != "" {
		if m.chaves[l.ChaveIdem] {
			return ErrChaveIdemDuplicada
		}
		m.chaves[l.ChaveIdem] = true
	}
	m.lancamentos[l.Matricula] = append(m.lancamentos[l.Matricula], l)
	return nil
}

func (m *Memoria) LoadLancamentos(_ context.Context, matricula string) ([]Lancamento, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Lancamento, len(m.lancamentos[matricula]))
	copy(out, m.lancamentos[matricula])
	return out, nil
}

func (m *Memoria) ExistsChaveIdem(_ context.Context, chave string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.chaves[chave], nil
}
