package escala_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/escala"
)

// =============================================================================
// CYCLE RESOLUTION
// =============================================================================

func TestEquipeDeServico_ExemploDaEscala(t *testing.T) {
	// GIVEN: epoch 2026-01-01 assigned to DELTA, ordering DELTA, ALFA,
	//        BRAVO, CHARLIE
	// WHEN:  resolving 2026-01-05 (offset 4)
	// THEN:  the cycle wraps back to DELTA

	ciclo := escala.CicloPadrao()
	dia := calendario.NovoDia(2026, time.January, 5)

	assert.Equal(t, escala.EquipeDelta, ciclo.EquipeDeServico(dia))
}

func TestEquipeDeServico_SequenciaCompleta(t *testing.T) {
	ciclo := escala.CicloPadrao()
	base := calendario.NovoDia(2026, time.January, 1)

	esperado := []escala.Equipe{
		escala.EquipeDelta, escala.EquipeAlfa, escala.EquipeBravo, escala.EquipeCharlie,
	}
	for i, eq := range esperado {
		assert.Equal(t, eq, ciclo.EquipeDeServico(base.MaisDias(i)), "dia %d", i)
	}
}

func TestEquipeDeServico_Periodicidade(t *testing.T) {
	// Cycle is periodic with period 4 across several months.
	ciclo := escala.CicloPadrao()
	base := calendario.NovoDia(2026, time.February, 10)

	for i := 0; i < 120; i++ {
		d := base.MaisDias(i)
		assert.Equal(t, ciclo.EquipeDeServico(d), ciclo.EquipeDeServico(d.MaisDias(4)))
	}
}

func TestEquipeDeServico_AntesDaEpoca(t *testing.T) {
	// GIVEN: dates before the epoch (negative offsets)
	// THEN:  resolution still lands on a valid team and stays periodic

	ciclo := escala.CicloPadrao()

	// 2025-12-31 is offset -1: one step backwards from DELTA lands on
	// the last team of the ordering.
	vespera := calendario.NovoDia(2025, time.December, 31)
	assert.Equal(t, escala.EquipeCharlie, ciclo.EquipeDeServico(vespera))

	antiga := calendario.NovoDia(2024, time.June, 15)
	assert.Equal(t, ciclo.EquipeDeServico(antiga), ciclo.EquipeDeServico(antiga.MaisDias(4)))
}

func TestServicoOrdinario(t *testing.T) {
	ciclo := escala.CicloPadrao()
	dia := calendario.NovoDia(2026, time.January, 2)

	assert.True(t, ciclo.ServicoOrdinario(dia, escala.EquipeAlfa))
	assert.False(t, ciclo.ServicoOrdinario(dia, escala.EquipeDelta))
}

func TestProximoServico(t *testing.T) {
	ciclo := escala.CicloPadrao()
	base := calendario.NovoDia(2026, time.January, 1)

	prox, err := ciclo.ProximoServico(base, escala.EquipeBravo)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-03", prox.String())

	// A team on duty today is its own next service date.
	prox, err = ciclo.ProximoServico(base, escala.EquipeDelta)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01", prox.String())
}

// =============================================================================
// CONFIGURATION VALIDATION
// =============================================================================

func TestNovoCiclo_RejeitaEquipeRepetida(t *testing.T) {
	_, err := escala.NovoCiclo(
		calendario.NovoDia(2026, time.January, 1),
		[4]escala.Equipe{escala.EquipeDelta, escala.EquipeDelta, escala.EquipeBravo, escala.EquipeCharlie},
	)
	assert.Error(t, err)
}

func TestNovoCiclo_RejeitaEquipeVazia(t *testing.T) {
	_, err := escala.NovoCiclo(
		calendario.NovoDia(2026, time.January, 1),
		[4]escala.Equipe{escala.EquipeDelta, "", escala.EquipeBravo, escala.EquipeCharlie},
	)
	assert.Error(t, err)
}

func TestNovoCiclo_RejeitaEpocaZero(t *testing.T) {
	_, err := escala.NovoCiclo(
		calendario.Dia{},
		[4]escala.Equipe{escala.EquipeDelta, escala.EquipeAlfa, escala.EquipeBravo, escala.EquipeCharlie},
	)
	assert.Error(t, err)
}

func TestParseEquipe(t *testing.T) {
	eq, err := escala.ParseEquipe("BRAVO")
	require.NoError(t, err)
	assert.Equal(t, escala.EquipeBravo, eq)

	_, err = escala.ParseEquipe("ECHO")
	assert.Error(t, err)
}
