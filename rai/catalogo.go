/*
Package rai implements occurrence-report (RAI) registration, validity
checking and point scoring.

PURPOSE:
  Officers submit RAIs identified by a report number. Each report cites
  a natureza (occurrence category) that carries a point value. A report
  submitted within the validity window credits points to the officer's
  balance; a stale one is recorded as EXPIRED with zero credit.

KEY CONCEPTS:
  - Natureza: category with point value and legal reference, admin
    managed, soft-disabled by the active flag
  - Registro: one submitted report with lifecycle status
  - Engine (engine.go): submission rules - number format, per-submitter
    uniqueness, 90-day window, immediate crediting

SEE ALSO:
  - pontos: balance crediting
  - calendario: local-calendar age computation
*/
package rai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Natureza is one occurrence category of the catalog.
type Natureza struct {
	ID         string
	Rotulo     string
	Descricao  string
	Pontos     decimal.Decimal
	BaseLegal  string
	Ativa      bool
}

// =============================================================================
// CATALOGO - Natureza catalog with soft-disable
// =============================================================================

// CatalogoStore persists the natureza catalog.
type CatalogoStore interface {
	SaveNatureza(ctx context.Context, n Natureza) error
	GetNatureza(ctx context.Context, id string) (Natureza, bool, error)
	ListNaturezas(ctx context.Context) ([]Natureza, error)
}

// Catalogo wraps a CatalogoStore with validation.
type Catalogo struct {
	store CatalogoStore
}

func NovoCatalogo(store CatalogoStore) *Catalogo {
	return &Catalogo{store: store}
}

// Criar adds a category. New categories start active unless stated
// otherwise by the caller.
func (c *Catalogo) Criar(ctx context.Context, n Natureza) (Natureza, error) {
	n.Rotulo = strings.TrimSpace(n.Rotulo)
	if n.Rotulo == "" {
		return Natureza{}, fmt.Errorf("rai: natureza sem rotulo")
	}
	if n.Pontos.IsNegative() {
		return Natureza{}, fmt.Errorf("rai: natureza %q com pontos negativos", n.Rotulo)
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := c.store.SaveNatureza(ctx, n); err != nil {
		return Natureza{}, err
	}
	return n, nil
}

// Desativar soft-disables a category. Existing records keep their
// recorded points; new submissions citing it score zero.
func (c *Catalogo) Desativar(ctx context.Context, id string) error {
	n, ok, err := c.store.GetNatureza(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("rai: natureza %s inexistente", id)
	}
	n.Ativa = false
	return c.store.SaveNatureza(ctx, n)
}

// Reativar re-enables a category.
func (c *Catalogo) Reativar(ctx context.Context, id string) error {
	n, ok, err := c.store.GetNatureza(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("rai: natureza %s inexistente", id)
	}
	n.Ativa = true
	return c.store.SaveNatureza(ctx, n)
}

// Buscar returns a category by id.
func (c *Catalogo) Buscar(ctx context.Context, id string) (Natureza, bool, error) {
	return c.store.GetNatureza(ctx, id)
}

// Listar returns the catalog ordered by label. When somenteAtivas is
// set, disabled categories are filtered out (the selectable set).
func (c *Catalogo) Listar(ctx context.Context, somenteAtivas bool) ([]Natureza, error) {
	ns, err := c.store.ListNaturezas(ctx)
	if err != nil {
		return nil, err
	}
	if somenteAtivas {
		ativas := ns[:0]
		for _, n := range ns {
			if n.Ativa {
				ativas = append(ativas, n)
			}
		}
		ns = ativas
	}
	sort.Slice(ns, func(i, j int) bool { return ns[i].Rotulo < ns[j].Rotulo })
	return ns, nil
}

// =============================================================================
// MEMORY CATALOG STORE
// =============================================================================

type CatalogoMemoria struct {
	mu    sync.RWMutex
	porID map[string]Natureza
}

func NovoCatalogoMemoria() *CatalogoMemoria {
	return &CatalogoMemoria{porID: make(map[string]Natureza)}
}

func (m *CatalogoMemoria) SaveNatureza(_ context.Context, n Natureza) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.porID[n.ID] = n
	return nil
}

func (m *CatalogoMemoria) GetNatureza(_ context.Context, id string) (Natureza, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.porID[id]
	return n, ok, nil
}

func (m *CatalogoMemoria) ListNaturezas(_ context.Context) ([]Natureza, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Natureza, 0, len(m.porID))
	for _, n := range m.porID {
		out = append(out, n)
	}
	return out, nil
}
