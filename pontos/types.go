/*
Package pontos is the append-only point ledger.

PURPOSE:
  Tracks each officer's running point balance. Points are credited by
  RAI scoring, debited when leave days are priced against the balance,
  and corrected by manual admin adjustments. The balance is never
  stored: it is always replayed from the transaction log.

KEY CONCEPTS IN THIS FILE (types.go):
  - Lancamento: An immutable ledger entry (a balance delta)
  - TipoLancamento: credito / debito / ajuste
  - Store: Persistence contract (append-only, idempotent)

DESIGN PRINCIPLES:
  1. Append-only: corrections are new entries, never edits
  2. Precision: decimal.Decimal, never float
  3. Idempotency: every write carries a key; a repeated key is rejected
  4. Auditability: every entry names its reason and reference

SEE ALSO:
  - ledger.go: Credit/Debit/Adjust/Balance over a Store
  - rai: credits points on valid submissions
  - dispensa: prices leave days in points
*/
package pontos

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TipoLancamento classifies a ledger entry.
type TipoLancamento string

const (
	TipoCredito TipoLancamento = "credito" // RAI scoring
	TipoDebito  TipoLancamento = "debito"  // leave day cost
	TipoAjuste  TipoLancamento = "ajuste"  // manual admin correction
)

// Lancamento is one immutable ledger entry. Delta is signed: credits
// are positive, debits negative, adjustments either.
type Lancamento struct {
	ID           string
	Matricula    string
	Delta        decimal.Decimal
	Tipo         TipoLancamento
	ReferenciaID string // RAI record id, dispensa id, ...
	Motivo       string
	ChaveIdem    string
	CriadoEm     time.Time
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrChaveIdemDuplicada is returned when a write reuses an
	// idempotency key. Expected on retries.
	ErrChaveIdemDuplicada = errors.New("chave de idempotencia duplicada")

	// ErrDeltaInvalido is returned for credits/debits with the wrong
	// sign or zero value.
	ErrDeltaInvalido = errors.New("delta invalido para o tipo de lancamento")
)

// =============================================================================
// STORE - Append-only persistence contract
// =============================================================================

// Store persists ledger entries. Append-only: no update, no delete.
type Store interface {
	// AppendLancamento persists one entry. Fails with
	// ErrChaveIdemDuplicada when the idempotency key exists.
	AppendLancamento(ctx context.Context, l Lancamento) error

	// LoadLancamentos returns all entries for one officer, in creation
	// order.
	LoadLancamentos(ctx context.Context, matricula string) ([]Lancamento, error)

	// ExistsChaveIdem checks whether an idempotency key was used.
	ExistsChaveIdem(ctx context.Context, chave string) (bool, error)
}
