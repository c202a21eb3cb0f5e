/*
engine.go - RAI submission rules

ALGORITHM (Submeter):
  1. Report number must be exactly TamanhoNumero digits - rejected
     before anything else.
  2. Per-submitter duplicate scan over the submitter's full history.
     Uniqueness is scoped to the submitter, not global.
  3. ageDays = whole days between the occurrence date and today, both
     taken as local civil dates.
  4. ageDays > validity window  -> status EXPIRADO, the natureza's
     points are recorded on the record for audit but the balance is NOT
     credited.
  5. Otherwise -> status PENDENTE, points credited to the balance
     immediately. Review (approve/reject) only moves the status.

A missing or disabled natureza is not a hard failure: the record is
accepted with zero points.
*/
package rai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/pontos"
)

// Status is the lifecycle state of a submitted report.
type Status string

const (
	StatusPendente  Status = "PENDENTE"
	StatusAprovado  Status = "APROVADO"
	StatusRejeitado Status = "REJEITADO"
	StatusExpirado  Status = "EXPIRADO"
)

// Defaults for the unit's submission rules.
const (
	JanelaPadraoDias = 90 // validity window
	TamanhoNumero    = 10 // required report-number digit count
)

// Registro is one submitted report.
type Registro struct {
	ID          string
	Matricula   string
	Numero      string
	Ocorrencia  calendario.Dia
	NaturezaID  string
	Pontos      decimal.Decimal // recorded even when expired, for audit
	Status      Status
	Observacao  string
	SubmetidoEm time.Time
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNumeroInvalido: report number is not exactly TamanhoNumero digits.
	ErrNumeroInvalido = errors.New("numero de rai invalido")

	// ErrSubmissaoDuplicada: the submitter already filed this number.
	ErrSubmissaoDuplicada = errors.New("rai ja registrado para esta matricula")

	// ErrRegistroNaoEncontrado: review target does not exist.
	ErrRegistroNaoEncontrado = errors.New("registro de rai nao encontrado")

	// ErrTransicaoInvalida: review applied to a non-pending record.
	ErrTransicaoInvalida = errors.New("transicao de status invalida")
)

// SubmissaoDuplicadaError carries the conflicting record.
type SubmissaoDuplicadaError struct {
	Matricula  string
	Numero     string
	ExistenteID string
}

func (e *SubmissaoDuplicadaError) Error() string {
	return fmt.Sprintf("rai %s ja registrado pela matricula %s (registro %s)",
		e.Numero, e.Matricula, e.ExistenteID)
}

func (e *SubmissaoDuplicadaError) Unwrap() error { return ErrSubmissaoDuplicada }

// =============================================================================
// RECORD STORE
// =============================================================================

// RegistroStore persists submitted reports.
type RegistroStore interface {
	SaveRegistro(ctx context.Context, r Registro) error
	GetRegistro(ctx context.Context, id string) (Registro, bool, error)
	ListRegistros(ctx context.Context, matricula string) ([]Registro, error)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine applies the submission and review rules.
type Engine struct {
	registros RegistroStore
	catalogo  *Catalogo
	saldo     *pontos.Ledger

	janelaDias    int
	tamanhoNumero int
	hoje          func() calendario.Dia
}

// NovaEngine wires the engine with the unit defaults.
func NovaEngine(registros RegistroStore, catalogo *Catalogo, saldo *pontos.Ledger) *Engine {
	return &Engine{
		registros:     registros,
		catalogo:      catalogo,
		saldo:         saldo,
		janelaDias:    JanelaPadraoDias,
		tamanhoNumero: TamanhoNumero,
		hoje:          calendario.Hoje,
	}
}

// ComJanela overrides the validity window (config).
func (e *Engine) ComJanela(dias int) *Engine {
	e.janelaDias = dias
	return e
}

// ComTamanhoNumero overrides the required digit count (config).
func (e *Engine) ComTamanhoNumero(n int) *Engine {
	e.tamanhoNumero = n
	return e
}

// ComHoje overrides "today". Tests only.
func (e *Engine) ComHoje(hoje func() calendario.Dia) *Engine {
	e.hoje = hoje
	return e
}

// Submeter registers a report for the officer. See the file header for
// the rule order. On success the returned record is already persisted
// and, when within the window, the balance credited.
func (e *Engine) Submeter(ctx context.Context, matricula, numero string, ocorrencia calendario.Dia, naturezaID, observacao string) (Registro, error) {
	numero = strings.TrimSpace(numero)
	if !numeroValido(numero, e.tamanhoNumero) {
		return Registro{}, fmt.Errorf("rai: numero %q: %w", numero, ErrNumeroInvalido)
	}

	historico, err := e.registros.ListRegistros(ctx, matricula)
	if err != nil {
		return Registro{}, err
	}
	for _, r := range historico {
		if r.Numero == numero {
			return Registro{}, &SubmissaoDuplicadaError{
				Matricula: matricula, Numero: numero, ExistenteID: r.ID,
			}
		}
	}

	valor := decimal.Zero
	if naturezaID != "" {
		if n, ok, err := e.catalogo.Buscar(ctx, naturezaID); err != nil {
			return Registro{}, err
		} else if ok && n.Ativa {
			valor = n.Pontos
		}
	}

	reg := Registro{
		ID:          uuid.NewString(),
		Matricula:   matricula,
		Numero:      numero,
		Ocorrencia:  ocorrencia,
		NaturezaID:  naturezaID,
		Pontos:      valor,
		Observacao:  observacao,
		SubmetidoEm: time.Now(),
	}

	idade := calendario.DiasEntre(ocorrencia, e.hoje())
	if idade > e.janelaDias {
		reg.Status = StatusExpirado
	} else {
		reg.Status = StatusPendente
	}

	if err := e.registros.SaveRegistro(ctx, reg); err != nil {
		return Registro{}, err
	}

	// Credit only within the window; an expired record keeps its points
	// on paper but never reaches the balance.
	//
	// Save and credit are two separate writes. A credit failure here
	// leaves a persisted PENDENTE record whose key was never consumed;
	// a reconcile replays Creditar with the same rai:<matricula>:<numero>
	// key, which the ledger dedupes, so the repair cannot double-credit.
	if reg.Status == StatusPendente && valor.IsPositive() {
		chave := fmt.Sprintf("rai:%s:%s", matricula, numero)
		if _, err := e.saldo.Creditar(ctx, matricula, valor, reg.ID, "rai "+numero, chave); err != nil {
			return Registro{}, fmt.Errorf("rai: credito do registro %s: %w", reg.ID, err)
		}
	}

	return reg, nil
}

// Historico returns the submitter's records, newest last.
func (e *Engine) Historico(ctx context.Context, matricula string) ([]Registro, error) {
	return e.registros.ListRegistros(ctx, matricula)
}

// Aprovar confirms a pending record. The credit already happened at
// submission; approval only moves the status.
func (e *Engine) Aprovar(ctx context.Context, id string) (Registro, error) {
	return e.revisar(ctx, id, StatusAprovado)
}

// Rejeitar marks a pending record as rejected. The credit, when one
// happened, stays on the ledger; a compensating adjustment is an
// explicit admin action, not an automatic side effect.
func (e *Engine) Rejeitar(ctx context.Context, id string) (Registro, error) {
	return e.revisar(ctx, id, StatusRejeitado)
}

func (e *Engine) revisar(ctx context.Context, id string, destino Status) (Registro, error) {
	reg, ok, err := e.registros.GetRegistro(ctx, id)
	if err != nil {
		return Registro{}, err
	}
	if !ok {
		return Registro{}, fmt.Errorf("rai: registro %s: %w", id, ErrRegistroNaoEncontrado)
	}
	if reg.Status != StatusPendente {
		return Registro{}, fmt.Errorf("rai: registro %s em %s: %w", id, reg.Status, ErrTransicaoInvalida)
	}
	reg.Status = destino
	if err := e.registros.SaveRegistro(ctx, reg); err != nil {
		return Registro{}, err
	}
	return reg, nil
}

func numeroValido(numero string, tamanho int) bool {
	if len(numero) != tamanho {
		return false
	}
	for _, r := range numero {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
