/*
Package escala resolves the ordinary-duty roster cycle.

PURPOSE:
  The unit works a fixed 4-day rotation: each of the four teams serves
  one day of ordinary duty, then the cycle repeats. Given any calendar
  date, this package answers "which team is on duty?" as a pure function
  of the date, an epoch, and a team ordering.

ALGORITHM:
  offset = DiasEntre(epoch, date)
  index  = ModPiso(offset, 4)
  team   = ordering[index]

  The floor-correct modulo makes dates before the epoch resolve to the
  right team instead of panicking or going negative.

CONFIGURATION:
  Epoch and ordering are inputs, not constants. NovoCiclo validates that
  the ordering holds exactly four distinct team identifiers, so a
  misconfigured unit fails at startup rather than at lookup time.

SEE ALSO:
  - calendario: DiasEntre and ModPiso
  - cpc: uses team identity when opening a queue for one team
*/
package escala

import (
	"fmt"
	"time"

	"github.com/fagynapp/rai-envios-sub000/calendario"
)

// Equipe identifies one of the unit's duty teams.
type Equipe string

const (
	EquipeAlfa    Equipe = "ALFA"
	EquipeBravo   Equipe = "BRAVO"
	EquipeCharlie Equipe = "CHARLIE"
	EquipeDelta   Equipe = "DELTA"
)

// TamanhoCiclo is the length of the ordinary-duty rotation.
const TamanhoCiclo = 4

// =============================================================================
// CICLO - Rotation configuration
// =============================================================================

// Ciclo is a validated duty rotation: an epoch date and the team that
// serves on it, followed by the next three teams in order.
type Ciclo struct {
	epoca  calendario.Dia
	ordem  [TamanhoCiclo]Equipe
}

// NovoCiclo builds a rotation. The ordering must contain exactly four
// distinct, non-empty team identifiers; ordem[0] is the team on duty at
// the epoch.
func NovoCiclo(epoca calendario.Dia, ordem [TamanhoCiclo]Equipe) (*Ciclo, error) {
	if epoca.Zero() {
		return nil, fmt.Errorf("ciclo: epoca nao definida")
	}
	vistas := make(map[Equipe]bool, TamanhoCiclo)
	for i, eq := range ordem {
		if eq == "" {
			return nil, fmt.Errorf("ciclo: equipe vazia na posicao %d", i)
		}
		if vistas[eq] {
			return nil, fmt.Errorf("ciclo: equipe %s repetida", eq)
		}
		vistas[eq] = true
	}
	return &Ciclo{epoca: epoca, ordem: ordem}, nil
}

// CicloPadrao is the rotation in force for the unit: 2026-01-01 belongs
// to DELTA, followed by ALFA, BRAVO and CHARLIE.
func CicloPadrao() *Ciclo {
	c, err := NovoCiclo(
		calendario.NovoDia(2026, time.January, 1),
		[TamanhoCiclo]Equipe{EquipeDelta, EquipeAlfa, EquipeBravo, EquipeCharlie},
	)
	if err != nil {
		panic(err) // constants above are valid
	}
	return c
}

// Epoca returns the cycle's anchor date.
func (c *Ciclo) Epoca() calendario.Dia { return c.epoca }

// Ordem returns the team ordering starting at the epoch.
func (c *Ciclo) Ordem() [TamanhoCiclo]Equipe { return c.ordem }

// EquipeDeServico returns the team on ordinary duty on the given date.
// Pure; works for dates before the epoch.
func (c *Ciclo) EquipeDeServico(d calendario.Dia) Equipe {
	offset := calendario.DiasEntre(c.epoca, d)
	return c.ordem[calendario.ModPiso(offset, TamanhoCiclo)]
}

// ServicoOrdinario reports whether the team is on ordinary duty on the
// given date.
func (c *Ciclo) ServicoOrdinario(d calendario.Dia, eq Equipe) bool {
	return c.EquipeDeServico(d) == eq
}

// ProximoServico returns the next date on or after d on which the team
// is on ordinary duty.
func (c *Ciclo) ProximoServico(d calendario.Dia, eq Equipe) (calendario.Dia, error) {
	for i := 0; i < TamanhoCiclo; i++ {
		dia := d.MaisDias(i)
		if c.EquipeDeServico(dia) == eq {
			return dia, nil
		}
	}
	return calendario.Dia{}, fmt.Errorf("escala: equipe %s fora do ciclo", eq)
}

// ParseEquipe validates a team identifier from external input.
func ParseEquipe(s string) (Equipe, error) {
	switch Equipe(s) {
	case EquipeAlfa, EquipeBravo, EquipeCharlie, EquipeDelta:
		return Equipe(s), nil
	}
	return "", fmt.Errorf("escala: equipe desconhecida %q", s)
}
