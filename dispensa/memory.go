package dispensa

import (
	"context"
	"sync"

	"github.com/fagynapp/rai-envios-sub000/calendario"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (tests/dev)
// =============================================================================

type Memoria struct {
	mu        sync.RWMutex
	porDia    map[string][]Registro
	bloqueios map[string]string
	excecoes  map[string][]Excecao // keyed by mesRef
}

func NovaMemoria() *Memoria {
	return &Memoria{
		porDia:    make(map[string][]Registro),
		bloqueios: make(map[string]string),
		excecoes:  make(map[string][]Excecao),
	}
}

func (m *Memoria) SaveDispensa(_ context.Context, dia calendario.Dia, r Registro) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dia.String()
	m.porDia[k] = append(m.porDia[k], r)
	return nil
}

func (m *Memoria) DeleteDispensa(_ context.Context, dia calendario.Dia, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := dia.String()
	for i, r := range m.porDia[k] {
		if r.ID == id {
			m.porDia[k] = append(m.porDia[k][:i], m.porDia[k][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *Memoria) ListDispensas(_ context.Context, dia calendario.Dia) ([]Registro, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	regs := m.porDia[dia.String()]
	out := make([]Registro, len(regs))
	copy(out, regs)
	return out, nil
}

func (m *Memoria) ClearDispensas(_ context.Context, dia calendario.Dia) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.porDia, dia.String())
	return nil
}

func (m *Memoria) SetBloqueio(_ context.Context, dia calendario.Dia, motivo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bloqueios[dia.String()] = motivo
	return nil
}

func (m *Memoria) DeleteBloqueio(_ context.Context, dia calendario.Dia) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bloqueios, dia.String())
	return nil
}

func (m *Memoria) GetBloqueio(_ context.Context, dia calendario.Dia) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	motivo, ok := m.bloqueios[dia.String()]
	return motivo, ok, nil
}

func (m *Memoria) SaveExcecao(_ context.Context, e Excecao) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// Last write per (matrícula, month) wins.
	lista := m.excecoes[e.MesRef]
	for i, ex := range lista {
		if ex.Matricula == e.Matricula {
			lista[i] = e
			return nil
		}
	}
	m.excecoes[e.MesRef] = append(lista, e)
	return nil
}

func (m *Memoria) ListExcecoes(_ context.Context, mesRef string) ([]Excecao, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Excecao, len(m.excecoes[mesRef]))
	copy(out, m.excecoes[mesRef])
	return out, nil
}
