/*
custos.go - Weekday-class pricing of a leave day

A leave day costs points depending on the calendar class of the date:
working days are cheapest, Saturdays cost more, Sundays and holidays
the most. The table is configuration; TabelaPadrao is the unit's
current pricing.
*/
package dispensa

import (
	"github.com/shopspring/decimal"

	"github.com/fagynapp/rai-envios-sub000/calendario"
)

// TabelaCustos prices a leave day by calendar class, in points.
type TabelaCustos map[calendario.Classe]decimal.Decimal

// TabelaPadrao is the pricing in force for the unit.
func TabelaPadrao() TabelaCustos {
	return TabelaCustos{
		calendario.ClasseUtil:   decimal.NewFromInt(10),
		calendario.ClasseSabado: decimal.NewFromInt(20),
		calendario.ClasseDomFer: decimal.NewFromInt(30),
	}
}

// Custo returns the point cost of taking the given day off. Days whose
// class is absent from the table cost zero.
func (t TabelaCustos) Custo(dia calendario.Dia, feriados calendario.Feriados) decimal.Decimal {
	if v, ok := t[calendario.ClasseDe(dia, feriados)]; ok {
		return v
	}
	return decimal.Zero
}
