/*
Package cpc manages the CPC fairness queue.

PURPOSE:
  The CPC queue decides which officer next gets to pick a leave date.
  An admin opens a queue for a team with an ordering criterion and a
  per-turn deadline window; the queue then advances by explicit admin
  actions (advance, skip, release). There is one global queue at a
  time: opening a new one replaces the previous, no merge.

INVARIANTS:
  - Positions are contiguous starting at 1
  - Exactly one item is NA_VEZ (the head); all others AGUARDANDO
  - Deadlines are descriptive metadata: nothing advances automatically
    when one passes

CRITERIA:
  - almanaque:      seniority roster order (Antiguidade ascending,
                    unranked officers last)
  - produtividade:  point balance descending, almanaque breaking ties

SEE ALSO:
  - efetivo: candidate source
  - pontos: balances used by the produtividade criterion
*/
package cpc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fagynapp/rai-envios-sub000/escala"
)

// Criterio orders candidates when a queue opens.
type Criterio string

const (
	CriterioAlmanaque     Criterio = "almanaque"
	CriterioProdutividade Criterio = "produtividade"
)

// StatusItem is the state of one queue slot.
type StatusItem string

const (
	StatusNaVez      StatusItem = "NA_VEZ"
	StatusAguardando StatusItem = "AGUARDANDO"
)

// Candidato is one officer eligible for the queue.
type Candidato struct {
	Matricula   string
	Nome        string
	Antiguidade int             // almanaque position, 1-based; zero means not ranked
	Pontos      decimal.Decimal // balance at opening time
}

// Item is one slot of an open queue.
type Item struct {
	Posicao   int
	Matricula string
	Nome      string
	Status    StatusItem
	PrazoAte  *time.Time // head only; metadata, never enforced
}

// Config describes how a queue was opened.
type Config struct {
	Equipe      escala.Equipe
	Criterio    Criterio
	PrazoHoras  int
}

// Fila is a snapshot of the open queue.
type Fila struct {
	Config   Config
	AbertaEm time.Time
	Itens    []Item
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrFilaFechada      = errors.New("nenhuma fila cpc aberta")
	ErrFilaVazia        = errors.New("fila cpc vazia")
	ErrPosicaoInvalida  = errors.New("posicao inexistente na fila")
	ErrSemCandidatos    = errors.New("fila cpc sem candidatos")
	ErrForaDaFila       = errors.New("matricula fora da fila")
	ErrCriterioInvalido = errors.New("criterio de fila desconhecido")
)

// =============================================================================
// GERENCIADOR - the single global queue
// =============================================================================

// Gerenciador owns the unit's single CPC queue. Opening a new queue
// replaces the previous one (last-open-wins).
type Gerenciador struct {
	mu    sync.Mutex
	fila  *Fila
	agora func() time.Time
}

func NovoGerenciador() *Gerenciador {
	return &Gerenciador{agora: time.Now}
}

// ComRelogio overrides the clock. Tests only.
func (g *Gerenciador) ComRelogio(agora func() time.Time) *Gerenciador {
	g.agora = agora
	return g
}

// Abrir creates a fresh queue from the candidates, ordered by the
// criterion. Replaces any open queue.
func (g *Gerenciador) Abrir(cfg Config, candidatos []Candidato) (Fila, error) {
	if len(candidatos) == 0 {
		return Fila{}, ErrSemCandidatos
	}
	ordenados := make([]Candidato, len(candidatos))
	copy(ordenados, candidatos)

	switch cfg.Criterio {
	case CriterioAlmanaque:
		sort.SliceStable(ordenados, func(i, j int) bool {
			return antesNoAlmanaque(ordenados[i], ordenados[j])
		})
	case CriterioProdutividade:
		sort.SliceStable(ordenados, func(i, j int) bool {
			if !ordenados[i].Pontos.Equal(ordenados[j].Pontos) {
				return ordenados[i].Pontos.GreaterThan(ordenados[j].Pontos)
			}
			return antesNoAlmanaque(ordenados[i], ordenados[j])
		})
	default:
		return Fila{}, fmt.Errorf("cpc: %q: %w", cfg.Criterio, ErrCriterioInvalido)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	fila := &Fila{Config: cfg, AbertaEm: g.agora()}
	fila.Itens = make([]Item, len(ordenados))
	for i, c := range ordenados {
		fila.Itens[i] = Item{
			Posicao:   i + 1,
			Matricula: c.Matricula,
			Nome:      c.Nome,
			Status:    StatusAguardando,
		}
	}
	g.promoverCabeca(fila)
	g.fila = fila
	return g.copia(), nil
}

// Avancar removes the head, shifts everyone down one position and
// promotes the new head.
func (g *Gerenciador) Avancar() (Fila, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fila == nil {
		return Fila{}, ErrFilaFechada
	}
	if len(g.fila.Itens) == 0 {
		return Fila{}, ErrFilaVazia
	}
	g.fila.Itens = g.fila.Itens[1:]
	g.renumerar()
	return g.copia(), nil
}

// Pular sends the item at the given position to the back of the queue.
// Skipping the head hands the turn to the next officer.
func (g *Gerenciador) Pular(posicao int) (Fila, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx, err := g.indice(posicao)
	if err != nil {
		return Fila{}, err
	}
	item := g.fila.Itens[idx]
	g.fila.Itens = append(g.fila.Itens[:idx], g.fila.Itens[idx+1:]...)
	g.fila.Itens = append(g.fila.Itens, item)
	g.renumerar()
	return g.copia(), nil
}

// Liberar removes the item at the given position from the queue (the
// officer took their pick or waived it). Releasing the head behaves
// like Avancar.
func (g *Gerenciador) Liberar(posicao int) (Fila, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx, err := g.indice(posicao)
	if err != nil {
		return Fila{}, err
	}
	g.fila.Itens = append(g.fila.Itens[:idx], g.fila.Itens[idx+1:]...)
	g.renumerar()
	return g.copia(), nil
}

// Fechar discards the open queue.
func (g *Gerenciador) Fechar() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fila = nil
}

// Atual returns a copy of the open queue.
func (g *Gerenciador) Atual() (Fila, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fila == nil {
		return Fila{}, ErrFilaFechada
	}
	return g.copia(), nil
}

// Posicao finds the officer's slot in the open queue. This is the
// "my position" lookup exposed to the notification surface.
func (g *Gerenciador) Posicao(matricula string) (Item, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fila == nil {
		return Item{}, ErrFilaFechada
	}
	for _, item := range g.fila.Itens {
		if item.Matricula == matricula {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("cpc: matricula %s: %w", matricula, ErrForaDaFila)
}

// Restaurar reinstates a persisted snapshot (startup).
func (g *Gerenciador) Restaurar(fila Fila) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := fila
	f.Itens = make([]Item, len(fila.Itens))
	copy(f.Itens, fila.Itens)
	g.fila = &f
}

// =============================================================================
// INTERNAL
// =============================================================================

// renumerar restores the contiguous-from-1 numbering and the single
// NA_VEZ head after any mutation. Caller holds the lock.
func (g *Gerenciador) renumerar() {
	for i := range g.fila.Itens {
		g.fila.Itens[i].Posicao = i + 1
		g.fila.Itens[i].Status = StatusAguardando
		g.fila.Itens[i].PrazoAte = nil
	}
	g.promoverCabeca(g.fila)
}

func (g *Gerenciador) promoverCabeca(fila *Fila) {
	if len(fila.Itens) == 0 {
		return
	}
	fila.Itens[0].Status = StatusNaVez
	if fila.Config.PrazoHoras > 0 {
		prazo := g.agora().Add(time.Duration(fila.Config.PrazoHoras) * time.Hour)
		fila.Itens[0].PrazoAte = &prazo
	}
}

// antesNoAlmanaque orders by almanaque position. Zero means not
// ranked: unranked candidates go after every ranked one, name breaking
// ties, the same ordering efetivo.Diretorio.Listar applies.
func antesNoAlmanaque(a, b Candidato) bool {
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
}

func (g *Gerenciador) indice(posicao int) (int, error) {
	if g.fila == nil {
		return 0, ErrFilaFechada
	}
	if posicao < 1 || posicao > len(g.fila.Itens) {
		return 0, fmt.Errorf("cpc: posicao %d: %w", posicao, ErrPosicaoInvalida)
	}
	return posicao - 1, nil
}

func (g *Gerenciador) copia() Fila {
	f := *g.fila
	f.Itens = make([]Item, len(g.fila.Itens))
	copy(f.Itens, g.fila.Itens)
	return f
}
