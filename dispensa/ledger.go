/*
ledger.go - Leave ledger operations

BATCH SEMANTICS:
  RegistrarLote applies the same per-row validation as Registrar and
  never aborts: a row missing its date or citing an unknown matrícula
  is skipped with a reason, every other row still lands. The result
  carries the applied count and a per-row outcome list so the caller
  decides what partial success means.

BLOCK SEMANTICS:
  Bloquear/Desbloquear toggle a per-date flag with a reason. The flag
  gates FUTURE registration at the caller's discretion; it is not
  enforced inside Registrar and never touches entries already on the
  date.
*/
package dispensa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/efetivo"
)

// Ledger runs the leave operations over a Store, resolving officers
// through the unit directory.
type Ledger struct {
	store      Store
	diretorio  *efetivo.Diretorio
}

func NovoLedger(store Store, diretorio *efetivo.Diretorio) *Ledger {
	return &Ledger{store: store, diretorio: diretorio}
}

// =============================================================================
// REGISTRATION
// =============================================================================

// Registrar grants leave on a date. The matrícula must resolve in the
// directory; name and team are snapshotted from it. Does NOT consult
// the block flag.
func (l *Ledger) Registrar(ctx context.Context, dia calendario.Dia, matricula string, tipo Tipo, observacao string) (Registro, error) {
	if dia.Zero() {
		return Registro{}, fmt.Errorf("dispensa: sem data: %w", ErrEntradaIncompleta)
	}
	matricula = strings.TrimSpace(matricula)
	if matricula == "" {
		return Registro{}, fmt.Errorf("dispensa: sem matricula: %w", ErrEntradaIncompleta)
	}
	p, ok, err := l.diretorio.PorMatricula(ctx, matricula)
	if err != nil {
		return Registro{}, err
	}
	if !ok {
		return Registro{}, fmt.Errorf("dispensa: matricula %s: %w", matricula, efetivo.ErrPolicialNaoEncontrado)
	}
	if tipo == "" {
		tipo = TipoRecompensa
	}
	reg := Registro{
		ID:         uuid.NewString(),
		Matricula:  p.Matricula,
		Nome:       p.Nome,
		Equipe:     p.Equipe,
		Tipo:       tipo,
		Observacao: observacao,
	}
	if err := l.store.SaveDispensa(ctx, dia, reg); err != nil {
		return Registro{}, err
	}
	return reg, nil
}

// RegistrarLote applies rows best-effort. See the file header.
func (l *Ledger) RegistrarLote(ctx context.Context, linhas []Linha) (ResultadoLote, error) {
	resultado := ResultadoLote{Linhas: make([]ResultadoLinha, 0, len(linhas))}
	for _, linha := range linhas {
		rl := ResultadoLinha{Linha: linha}

		dia, err := calendario.ParseDia(strings.TrimSpace(linha.Dia))
		switch {
		case strings.TrimSpace(linha.Dia) == "":
			rl.Motivo = "linha sem data"
		case err != nil:
			rl.Motivo = fmt.Sprintf("data invalida %q", linha.Dia)
		default:
			reg, err := l.Registrar(ctx, dia, linha.Matricula, linha.Tipo, linha.Observacao)
			if err != nil {
				// Row-level failures (unresolved matrícula, missing
				// fields) are skips; store failures abort the batch.
				if isLinhaInvalida(err) {
					rl.Motivo = err.Error()
					break
				}
				return resultado, err
			}
			rl.Aplicada = true
			rl.ID = reg.ID
		}

		if rl.Aplicada {
			resultado.Aplicadas++
		}
		resultado.Linhas = append(resultado.Linhas, rl)
	}
	return resultado, nil
}

func isLinhaInvalida(err error) bool {
	return errors.Is(err, ErrEntradaIncompleta) || errors.Is(err, efetivo.ErrPolicialNaoEncontrado)
}

// =============================================================================
// REMOVAL / QUERIES
// =============================================================================

// Remover drops one entry from a date.
func (l *Ledger) Remover(ctx context.Context, dia calendario.Dia, id string) error {
	achou, err := l.store.DeleteDispensa(ctx, dia, id)
	if err != nil {
		return err
	}
	if !achou {
		return fmt.Errorf("dispensa: %s em %s: %w", id, dia, ErrRegistroNaoEncontrado)
	}
	return nil
}

// LimparDia removes every entry of a date. The block flag, when set,
// stays.
func (l *Ledger) LimparDia(ctx context.Context, dia calendario.Dia) error {
	return l.store.ClearDispensas(ctx, dia)
}

// Registros lists the entries of a date.
func (l *Ledger) Registros(ctx context.Context, dia calendario.Dia) ([]Registro, error) {
	return l.store.ListDispensas(ctx, dia)
}

// =============================================================================
// DATE BLOCKS
// =============================================================================

// Bloquear closes a date to new registrations, with a reason.
func (l *Ledger) Bloquear(ctx context.Context, dia calendario.Dia, motivo string) error {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		motivo = "data bloqueada"
	}
	return l.store.SetBloqueio(ctx, dia, motivo)
}

// Desbloquear reopens a date.
func (l *Ledger) Desbloquear(ctx context.Context, dia calendario.Dia) error {
	return l.store.DeleteBloqueio(ctx, dia)
}

// Bloqueado reports the block flag and its reason.
func (l *Ledger) Bloqueado(ctx context.Context, dia calendario.Dia) (bool, string, error) {
	motivo, ok, err := l.store.GetBloqueio(ctx, dia)
	return ok, motivo, err
}

// =============================================================================
// QUOTA EXCEPTIONS
// =============================================================================

// RegistrarExcecao records a monthly quota override for an officer.
// The link to the officer is the matrícula string only.
func (l *Ledger) RegistrarExcecao(ctx context.Context, e Excecao) error {
	if strings.TrimSpace(e.Matricula) == "" || strings.TrimSpace(e.MesRef) == "" {
		return fmt.Errorf("dispensa: excecao sem matricula ou mes: %w", ErrEntradaIncompleta)
	}
	if e.NovoLimite < 0 {
		return fmt.Errorf("dispensa: excecao com limite negativo")
	}
	return l.store.SaveExcecao(ctx, e)
}

// LimiteDoMes returns the officer's quota for a month: the override
// when one exists, otherwise the given default.
func (l *Ledger) LimiteDoMes(ctx context.Context, matricula, mesRef string, padrao int) (int, error) {
	excecoes, err := l.store.ListExcecoes(ctx, mesRef)
	if err != nil {
		return 0, err
	}
	for _, e := range excecoes {
		if e.Matricula == matricula {
			return e.NovoLimite, nil
		}
	}
	return padrao, nil
}
