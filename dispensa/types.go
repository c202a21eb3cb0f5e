/*
Package dispensa keeps the leave (dispensa) ledger.

PURPOSE:
  Per-date record of granted leave: who is off on which day, plus
  admin-imposed date blocks (blackouts with a reason), batch
  registration of many rows at once, and monthly quota exceptions.

KEY CONCEPTS:
  - Registro: one granted leave entry, keyed under its date. It carries
    a snapshot of the officer's name/matrícula/team so history survives
    directory changes.
  - Bloqueio: a date administratively closed to NEW registrations.
    Blocking and registering are independent operations: Registrar does
    not consult the block flag, callers that care must check Bloqueado
    first. A blocked date keeps its existing entries.
  - Batch: best-effort, not transactional. Each row is validated on its
    own; incomplete rows are skipped and reported, never aborting the
    rest.
  - Excecao: per-officer monthly quota override, linked by matrícula
    string only.

SEE ALSO:
  - custos.go: weekday-class point pricing of a leave day
  - efetivo: matrícula resolution for batch rows
*/
package dispensa

import (
	"context"
	"errors"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/escala"
)

// Tipo classifies a leave grant.
type Tipo string

const (
	TipoRecompensa Tipo = "recompensa" // earned with points
	TipoAbono      Tipo = "abono"
	TipoFerias     Tipo = "ferias"
)

// Registro is one granted leave entry on a specific date.
type Registro struct {
	ID         string
	Matricula  string
	Nome       string
	Equipe     escala.Equipe
	Tipo       Tipo
	Observacao string
}

// Linha is one row of a batch registration request.
type Linha struct {
	Dia        string // "2006-01-02"; empty means incomplete row
	Matricula  string
	Tipo       Tipo
	Observacao string
}

// ResultadoLinha reports the outcome of one batch row.
type ResultadoLinha struct {
	Linha    Linha
	Aplicada bool
	ID       string // set when applied
	Motivo   string // set when skipped
}

// ResultadoLote is the best-effort batch outcome. Aplicadas counts the
// rows that landed; callers detect partial success by comparing it with
// len(Linhas).
type ResultadoLote struct {
	Aplicadas int
	Linhas    []ResultadoLinha
}

// Excecao overrides one officer's monthly leave quota.
type Excecao struct {
	Matricula  string
	MesRef     string // "2006-01"
	NovoLimite int
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrRegistroNaoEncontrado: removal target absent on that date.
	ErrRegistroNaoEncontrado = errors.New("registro de dispensa nao encontrado")

	// ErrEntradaIncompleta: single registration missing date or matrícula.
	ErrEntradaIncompleta = errors.New("entrada de dispensa incompleta")
)

// =============================================================================
// STORE - Persistence contract
// =============================================================================

// Store persists the date-keyed ledger state.
type Store interface {
	SaveDispensa(ctx context.Context, dia calendario.Dia, r Registro) error
	DeleteDispensa(ctx context.Context, dia calendario.Dia, id string) (bool, error)
	ListDispensas(ctx context.Context, dia calendario.Dia) ([]Registro, error)
	ClearDispensas(ctx context.Context, dia calendario.Dia) error

	SetBloqueio(ctx context.Context, dia calendario.Dia, motivo string) error
	DeleteBloqueio(ctx context.Context, dia calendario.Dia) error
	GetBloqueio(ctx context.Context, dia calendario.Dia) (string, bool, error)

	SaveExcecao(ctx context.Context, e Excecao) error
	ListExcecoes(ctx context.Context, mesRef string) ([]Excecao, error)
}
