/*
Package efetivo holds the unit's personnel directory.

PURPOSE:
  A thin identity registry for officers (policiais). The rule engines
  only ever read two fields from it - team and registration number
  (matrícula) - but batch leave registration and CPC candidate lists
  both depend on resolving matrículas here.

REMOVAL SEMANTICS:
  Officers are never hard-deleted by the rules; Remover only drops the
  record from the directory listing. Ledger entries keep a snapshot of
  name and matrícula, so history survives removal.

SEE ALSO:
  - dispensa: resolves matrículas during batch registration
  - cpc: builds candidate lists from the directory
*/
package efetivo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fagynapp/rai-envios-sub000/escala"
)

// Policial is one officer of the unit.
type Policial struct {
	ID        string
	Nome      string
	Matricula string
	Equipe    escala.Equipe
	Telefone  string
	Email     string

	// Antiguidade is the officer's 1-based position on the almanaque
	// (seniority roster). Zero means not ranked.
	Antiguidade int
}

// ErrPolicialNaoEncontrado is returned on unresolved matrícula lookups
// that require a match. Batch flows treat this as a skipped row, not a
// failure.
var ErrPolicialNaoEncontrado = errors.New("policial nao encontrado")

// ErrMatriculaDuplicada is returned when registering an already-known
// matrícula.
var ErrMatriculaDuplicada = errors.New("matricula ja cadastrada")

// Store persists the directory.
type Store interface {
	SavePolicial(ctx context.Context, p Policial) error
	DeletePolicial(ctx context.Context, matricula string) error
	GetPolicial(ctx context.Context, matricula string) (Policial, bool, error)
	ListPoliciais(ctx context.Context) ([]Policial, error)
}

// =============================================================================
// DIRETORIO - Directory operations over a Store
// =============================================================================

// Diretorio wraps a Store with validation and ordering.
type Diretorio struct {
	store Store
}

func NovoDiretorio(store Store) *Diretorio {
	return &Diretorio{store: store}
}

// Cadastrar registers a new officer. The matrícula must be non-empty
// and unused; an ID is generated when absent.
func (d *Diretorio) Cadastrar(ctx context.Context, p Policial) (Policial, error) {
	p.Matricula = strings.TrimSpace(p.Matricula)
	p.Nome = strings.TrimSpace(p.Nome)
	if p.Matricula == "" {
		return Policial{}, fmt.Errorf("efetivo: matricula obrigatoria")
	}
	if p.Nome == "" {
		return Policial{}, fmt.Errorf("efetivo: nome obrigatorio")
	}
	if _, ok, err := d.store.GetPolicial(ctx, p.Matricula); err != nil {
		return Policial{}, err
	} else if ok {
		return Policial{}, fmt.Errorf("efetivo: %w: %s", ErrMatriculaDuplicada, p.Matricula)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := d.store.SavePolicial(ctx, p); err != nil {
		return Policial{}, err
	}
	return p, nil
}

// Remover drops an officer from the listing.
func (d *Diretorio) Remover(ctx context.Context, matricula string) error {
	return d.store.DeletePolicial(ctx, matricula)
}

// PorMatricula resolves an officer. The boolean mirrors map lookups:
// a missing matrícula is not an error here.
func (d *Diretorio) PorMatricula(ctx context.Context, matricula string) (Policial, bool, error) {
	return d.store.GetPolicial(ctx, strings.TrimSpace(matricula))
}

// Listar returns the directory ordered by almanaque position, unranked
// officers last by name.
func (d *Diretorio) Listar(ctx context.Context) ([]Policial, error) {
	ps, err := d.store.ListPoliciais(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		switch {
		case a.Antiguidade != 0 && b.Antiguidade != 0:
			return a.Antiguidade < b.Antiguidade
		case a.Antiguidade != 0:
			return true
		case b.Antiguidade != 0:
			return false
		default:
			return a.Nome < b.Nome
		}
	})
	return ps, nil
}

// PorEquipe returns the officers of one team, almanaque order.
func (d *Diretorio) PorEquipe(ctx context.Context, eq escala.Equipe) ([]Policial, error) {
	todos, err := d.Listar(ctx)
	if err != nil {
		return nil, err
	}
	var out []Policial
	for _, p := range todos {
		if p.Equipe == eq {
			out = append(out, p)
		}
	}
	return out, nil
}

// =============================================================================
// MEMORY STORE - In-memory implementation (tests/dev)
// =============================================================================

type Memoria struct {
	mu        sync.RWMutex
	porMatric map[string]Policial
}

func NovaMemoria() *Memoria {
	return &Memoria{porMatric: make(map[string]Policial)}
}

func (m *Memoria) SavePolicial(_ context.Context, p Policial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.porMatric[p.Matricula] = p
	return nil
}

func (m *Memoria) DeletePolicial(_ context.Context, matricula string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.porMatric, matricula)
	return nil
}

func (m *Memoria) GetPolicial(_ context.Context, matricula string) (Policial, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.porMatric[matricula]
	return p, ok, nil
}

func (m *Memoria) ListPoliciais(_ context.Context) ([]Policial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Policial, 0, len(m.porMatric))
	for _, p := range m.porMatric {
		out = append(out, p)
	}
	return out, nil
}
