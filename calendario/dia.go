/*
Package calendario provides local-calendar day arithmetic for the
administrative core.

PURPOSE:
  Every rule in this system (duty rotation, leave pricing, RAI validity
  windows) is defined over civil calendar days, never over instants.
  A Dia is a calendar date with no time-of-day and no timezone drift:
  two events on the same local day are the same Dia even if their
  timestamps straddle midnight UTC.

KEY CONCEPTS IN THIS FILE:
  - Dia: A single civil calendar date (the ledger key everywhere)
  - DiasEntre: Floor-correct day difference (safe for negative spans)
  - ModPiso: Always-non-negative modulo for cycle arithmetic
  - Classe: Weekday class used by the leave cost table

DESIGN PRINCIPLES:
  1. Local calendar, not UTC instants: avoids timezone off-by-one when
     classifying occurrence dates
  2. Value semantics: Dia is comparable and safe as a map key
  3. No hidden "now": callers inject today via Hoje or a clock

SEE ALSO:
  - escala: uses ModPiso for the 4-day duty cycle
  - dispensa: uses Classe for leave cost pricing
  - rai: uses DiasEntre for the validity window
*/
package calendario

import "time"

// =============================================================================
// DIA - A civil calendar date
// =============================================================================

// Dia is a single calendar date. The zero value is the zero date.
// Internally normalized to midnight UTC of the civil date so that Dia
// values are comparable and usable as map keys.
type Dia struct {
	t time.Time
}

// NovoDia builds a Dia from calendar components.
func NovoDia(ano int, mes time.Month, dia int) Dia {
	return Dia{t: time.Date(ano, mes, dia, 0, 0, 0, 0, time.UTC)}
}

// DiaDe extracts the civil date of an instant using the instant's own
// location. This is the only place a time.Time crosses into a Dia.
func DiaDe(t time.Time) Dia {
	ano, mes, dia := t.Date()
	return NovoDia(ano, mes, dia)
}

// Hoje returns today's local date.
func Hoje() Dia {
	return DiaDe(time.Now())
}

// ParseDia parses a date in the wire format "2006-01-02".
func ParseDia(s string) (Dia, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Dia{}, err
	}
	return DiaDe(t), nil
}

// Comparison
func (d Dia) Antes(o Dia) bool  { return d.t.Before(o.t) }
func (d Dia) Depois(o Dia) bool { return d.t.After(o.t) }
func (d Dia) Igual(o Dia) bool  { return d.t.Equal(o.t) }
func (d Dia) Zero() bool        { return d.t.IsZero() }

// Arithmetic
func (d Dia) MaisDias(n int) Dia { return Dia{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Dia) Ano() int             { return d.t.Year() }
func (d Dia) Mes() time.Month      { return d.t.Month() }
func (d Dia) DiaDoMes() int        { return d.t.Day() }
func (d Dia) DiaSemana() time.Weekday { return d.t.Weekday() }

// MesRef returns the "2006-01" reference used by quota exceptions.
func (d Dia) MesRef() string { return d.t.Format("2006-01") }

func (d Dia) String() string { return d.t.Format("2006-01-02") }

// DiasEntre returns the whole-day span from a to b. Negative when b is
// before a; both dates are already midnight-normalized so the division
// is exact.
func DiasEntre(a, b Dia) int {
	return int(b.t.Sub(a.t).Hours() / 24)
}

// ModPiso is a floor-correct modulo: the result is always in [0, m)
// even for negative n. Go's % operator keeps the dividend's sign, which
// would break cycle lookups for dates before the epoch.
func ModPiso(n, m int) int {
	r := n % m
	if r < 0 {
		r += m
	}
	return r
}

// =============================================================================
// WEEKDAY CLASS - Drives the leave cost table
// =============================================================================

// Classe is the pricing class of a calendar day.
type Classe string

const (
	ClasseUtil    Classe = "util"            // Monday through Friday
	ClasseSabado  Classe = "sabado"          // Saturday
	ClasseDomFer  Classe = "domingo_feriado" // Sunday or holiday
)

// Feriados answers whether a date is a holiday. A nil calendar means no
// holidays.
type Feriados interface {
	EhFeriado(d Dia) bool
}

// SemFeriados is the no-op calendar.
type SemFeriados struct{}

func (SemFeriados) EhFeriado(Dia) bool { return false }

// ClasseDe classifies a day for pricing. Holidays take precedence over
// the weekday.
func ClasseDe(d Dia, feriados Feriados) Classe {
	if feriados != nil && feriados.EhFeriado(d) {
		return ClasseDomFer
	}
	switch d.DiaSemana() {
	case time.Saturday:
		return ClasseSabado
	case time.Sunday:
		return ClasseDomFer
	default:
		return ClasseUtil
	}
}
