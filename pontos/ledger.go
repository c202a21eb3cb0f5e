/*
ledger.go - Ledger operations over a Store

INVARIANTS:
  1. APPEND-ONLY: entries are never modified or removed
  2. The balance of an officer is the sum of their deltas
  3. A credit is strictly positive, a debit strictly negative
  4. A repeated idempotency key changes nothing

Corrections go through Ajustar, which appends a signed adjustment and
leaves the wrong entry in place for audit.
*/
package pontos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger exposes the point operations used by the rule engines.
type Ledger struct {
	store Store
	agora func() time.Time
}

func NovoLedger(store Store) *Ledger {
	return &Ledger{store: store, agora: time.Now}
}

// ComRelogio overrides the clock. Tests only.
func (l *Ledger) ComRelogio(agora func() time.Time) *Ledger {
	l.agora = agora
	return l
}

// Creditar appends a positive delta for the officer.
func (l *Ledger) Creditar(ctx context.Context, matricula string, valor decimal.Decimal, referenciaID, motivo, chaveIdem string) (Lancamento, error) {
	if !valor.IsPositive() {
		return Lancamento{}, fmt.Errorf("pontos: credito de %s: %w", valor, ErrDeltaInvalido)
	}
	return l.append(ctx, matricula, valor, TipoCredito, referenciaID, motivo, chaveIdem)
}

// Debitar appends a negative delta (valor is given positive).
func (l *Ledger) Debitar(ctx context.Context, matricula string, valor decimal.Decimal, referenciaID, motivo, chaveIdem string) (Lancamento, error) {
	if !valor.IsPositive() {
		return Lancamento{}, fmt.Errorf("pontos: debito de %s: %w", valor, ErrDeltaInvalido)
	}
	return l.append(ctx, matricula, valor.Neg(), TipoDebito, referenciaID, motivo, chaveIdem)
}

// Ajustar appends a signed manual correction.
func (l *Ledger) Ajustar(ctx context.Context, matricula string, delta decimal.Decimal, motivo, chaveIdem string) (Lancamento, error) {
	if delta.IsZero() {
		return Lancamento{}, fmt.Errorf("pontos: ajuste zero: %w", ErrDeltaInvalido)
	}
	return l.append(ctx, matricula, delta, TipoAjuste, "", motivo, chaveIdem)
}

func (l *Ledger) append(ctx context.Context, matricula string, delta decimal.Decimal, tipo TipoLancamento, referenciaID, motivo, chaveIdem string) (Lancamento, error) {
	if chaveIdem != "" {
		existe, err := l.store.ExistsChaveIdem(ctx, chaveIdem)
		if err != nil {
			return Lancamento{}, err
		}
		if existe {
			return Lancamento{}, ErrChaveIdemDuplicada
		}
	}
	lanc := Lancamento{
		ID:           uuid.NewString(),
		Matricula:    matricula,
		Delta:        delta,
		Tipo:         tipo,
		ReferenciaID: referenciaID,
		Motivo:       motivo,
		ChaveIdem:    chaveIdem,
		CriadoEm:     l.agora(),
	}
	if err := l.store.AppendLancamento(ctx, lanc); err != nil {
		return Lancamento{}, err
	}
	return lanc, nil
}

// Saldo replays the officer's entries into a balance.
func (l *Ledger) Saldo(ctx context.Context, matricula string) (decimal.Decimal, error) {
	lancs, err := l.store.LoadLancamentos(ctx, matricula)
	if err != nil {
		return decimal.Zero, err
	}
	saldo := decimal.Zero
	for _, lanc := range lancs {
		saldo = saldo.Add(lanc.Delta)
	}
	return saldo, nil
}

// Extrato returns the officer's full entry history.
func (l *Ledger) Extrato(ctx context.Context, matricula string) ([]Lancamento, error) {
	return l.store.LoadLancamentos(ctx, matricula)
}
