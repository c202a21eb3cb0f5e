package rai_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/pontos"
	"github.com/fagynapp/rai-envios-sub000/rai"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var hojeFixo = calendario.NovoDia(2026, time.August, 31)

type ambiente struct {
	engine   *rai.Engine
	catalogo *rai.Catalogo
	ledger   *pontos.Ledger
	furto    rai.Natureza
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	ctx := context.Background()

	catalogo := rai.NovoCatalogo(rai.NovoCatalogoMemoria())
	ledger := pontos.NovoLedger(pontos.NovaMemoria())
	engine := rai.NovaEngine(rai.NovaRegistroMemoria(), catalogo, ledger).
		ComHoje(func() calendario.Dia { return hojeFixo })

	furto, err := catalogo.Criar(ctx, rai.Natureza{
		Rotulo:    "Furto",
		Pontos:    decimal.NewFromInt(50),
		BaseLegal: "art. 155 CP",
		Ativa:     true,
	})
	require.NoError(t, err)

	return &ambiente{engine: engine, catalogo: catalogo, ledger: ledger, furto: furto}
}

func saldoDe(t *testing.T, a *ambiente, matricula string) decimal.Decimal {
	t.Helper()
	s, err := a.ledger.Saldo(context.Background(), matricula)
	require.NoError(t, err)
	return s
}

// =============================================================================
// VALIDITY WINDOW
// =============================================================================

func TestSubmeter_DentroDaJanela_CreditaPontos(t *testing.T) {
	// GIVEN: an occurrence 10 days old citing a 50-point natureza
	// THEN:  record is PENDENTE with 50 points and the balance gains 50

	a := novoAmbiente(t)
	ctx := context.Background()

	reg, err := a.engine.Submeter(ctx, "12345", "2026001234", hojeFixo.MaisDias(-10), a.furto.ID, "")
	require.NoError(t, err)

	assert.Equal(t, rai.StatusPendente, reg.Status)
	assert.True(t, reg.Pontos.Equal(decimal.NewFromInt(50)))
	assert.True(t, saldoDe(t, a, "12345").Equal(decimal.NewFromInt(50)))
}

func TestSubmeter_Expirado_RegistraPontosSemCreditar(t *testing.T) {
	// GIVEN: an occurrence 95 days old citing a 50-point natureza
	// THEN:  record is EXPIRADO, points stay on the record for audit,
	//        balance is unchanged

	a := novoAmbiente(t)
	ctx := context.Background()

	reg, err := a.engine.Submeter(ctx, "12345", "2026001234", hojeFixo.MaisDias(-95), a.furto.ID, "")
	require.NoError(t, err)

	assert.Equal(t, rai.StatusExpirado, reg.Status)
	assert.True(t, reg.Pontos.Equal(decimal.NewFromInt(50)), "pontos ficam no registro")
	assert.True(t, saldoDe(t, a, "12345").IsZero(), "saldo nao muda")
}

func TestSubmeter_LimiteDe90Dias_EstritamenteMaior(t *testing.T) {
	// ageDays == 90 is still valid; only ageDays > 90 expires.

	a := novoAmbiente(t)
	ctx := context.Background()

	noLimite, err := a.engine.Submeter(ctx, "12345", "2026000090", hojeFixo.MaisDias(-90), a.furto.ID, "")
	require.NoError(t, err)
	assert.Equal(t, rai.StatusPendente, noLimite.Status)

	vencido, err := a.engine.Submeter(ctx, "12345", "2026000091", hojeFixo.MaisDias(-91), a.furto.ID, "")
	require.NoError(t, err)
	assert.Equal(t, rai.StatusExpirado, vencido.Status)
}

func TestSubmeter_OcorrenciaFutura_NaoExpira(t *testing.T) {
	// Negative age (future occurrence) is inside the window.
	a := novoAmbiente(t)

	reg, err := a.engine.Submeter(context.Background(), "12345", "2026009999", hojeFixo.MaisDias(2), a.furto.ID, "")
	require.NoError(t, err)
	assert.Equal(t, rai.StatusPendente, reg.Status)
}

// =============================================================================
// DUPLICATE DETECTION
// =============================================================================

func TestSubmeter_NumeroDuplicadoMesmaMatricula_Rejeitado(t *testing.T) {
	// GIVEN: officer 12345 already filed number 2026001234
	// WHEN:  the same officer files it again
	// THEN:  rejected with SubmissaoDuplicada and balance untouched

	a := novoAmbiente(t)
	ctx := context.Background()

	_, err := a.engine.Submeter(ctx, "12345", "2026001234", hojeFixo.MaisDias(-1), a.furto.ID, "")
	require.NoError(t, err)
	saldoAntes := saldoDe(t, a, "12345")

	_, err = a.engine.Submeter(ctx, "12345", "2026001234", hojeFixo.MaisDias(-1), a.furto.ID, "")
	assert.ErrorIs(t, err, rai.ErrSubmissaoDuplicada)

	var dup *rai.SubmissaoDuplicadaError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, "2026001234", dup.Numero)

	assert.True(t, saldoDe(t, a, "12345").Equal(saldoAntes), "saldo nao muda na rejeicao")
}

func TestSubmeter_MesmoNumeroOutraMatricula_Aceito(t *testing.T) {
	// Uniqueness is scoped per submitter, not global.
	a := novoAmbiente(t)
	ctx := context.Background()

	_, err := a.engine.Submeter(ctx, "11111", "2026001234", hojeFixo.MaisDias(-1), a.furto.ID, "")
	require.NoError(t, err)
	_, err = a.engine.Submeter(ctx, "22222", "2026001234", hojeFixo.MaisDias(-1), a.furto.ID, "")
	assert.NoError(t, err)
}

// =============================================================================
// REPORT NUMBER FORMAT
// =============================================================================

func TestSubmeter_NumeroForaDoFormato_RejeitadoAntesDaDuplicidade(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	casos := []string{"", "123", "20260012345", "2026O01234", "2026-01234"}
	for _, numero := range casos {
		_, err := a.engine.Submeter(ctx, "12345", numero, hojeFixo, a.furto.ID, "")
		assert.ErrorIs(t, err, rai.ErrNumeroInvalido, "numero %q", numero)
	}
	assert.True(t, saldoDe(t, a, "12345").IsZero())
}

// =============================================================================
// CATALOG INTERACTION
// =============================================================================

func TestSubmeter_NaturezaInativa_PontuaZero(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	require.NoError(t, a.catalogo.Desativar(ctx, a.furto.ID))

	reg, err := a.engine.Submeter(ctx, "12345", "2026005555", hojeFixo.MaisDias(-1), a.furto.ID, "")
	require.NoError(t, err, "natureza inativa nao e falha dura")
	assert.True(t, reg.Pontos.IsZero())
	assert.True(t, saldoDe(t, a, "12345").IsZero())
}

func TestSubmeter_NaturezaInexistente_PontuaZero(t *testing.T) {
	a := novoAmbiente(t)

	reg, err := a.engine.Submeter(context.Background(), "12345", "2026005556", hojeFixo.MaisDias(-1), "nao-existe", "")
	require.NoError(t, err)
	assert.True(t, reg.Pontos.IsZero())
	assert.Equal(t, rai.StatusPendente, reg.Status)
}

func TestCatalogo_ListarSomenteAtivas(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	roubo, err := a.catalogo.Criar(ctx, rai.Natureza{Rotulo: "Roubo", Pontos: decimal.NewFromInt(80), Ativa: true})
	require.NoError(t, err)
	require.NoError(t, a.catalogo.Desativar(ctx, roubo.ID))

	ativas, err := a.catalogo.Listar(ctx, true)
	require.NoError(t, err)
	require.Len(t, ativas, 1)
	assert.Equal(t, "Furto", ativas[0].Rotulo)

	todas, err := a.catalogo.Listar(ctx, false)
	require.NoError(t, err)
	assert.Len(t, todas, 2)
}

// =============================================================================
// REVIEW TRANSITIONS
// =============================================================================

func TestAprovar_NaoCreditaDeNovo(t *testing.T) {
	// Credit happens at submission; approval is a status move only.
	a := novoAmbiente(t)
	ctx := context.Background()

	reg, err := a.engine.Submeter(ctx, "12345", "2026007777", hojeFixo.MaisDias(-3), a.furto.ID, "")
	require.NoError(t, err)

	aprovado, err := a.engine.Aprovar(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, rai.StatusAprovado, aprovado.Status)
	assert.True(t, saldoDe(t, a, "12345").Equal(decimal.NewFromInt(50)))
}

func TestRevisar_SomenteDePendente(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	reg, err := a.engine.Submeter(ctx, "12345", "2026007778", hojeFixo.MaisDias(-95), a.furto.ID, "")
	require.NoError(t, err)
	require.Equal(t, rai.StatusExpirado, reg.Status)

	_, err = a.engine.Aprovar(ctx, reg.ID)
	assert.ErrorIs(t, err, rai.ErrTransicaoInvalida)

	_, err = a.engine.Rejeitar(ctx, "inexistente")
	assert.ErrorIs(t, err, rai.ErrRegistroNaoEncontrado)
}

func TestHistorico_OrdemDeSubmissao(t *testing.T) {
	a := novoAmbiente(t)
	ctx := context.Background()

	_, err := a.engine.Submeter(ctx, "12345", "2026000001", hojeFixo.MaisDias(-2), a.furto.ID, "")
	require.NoError(t, err)
	_, err = a.engine.Submeter(ctx, "12345", "2026000002", hojeFixo.MaisDias(-1), a.furto.ID, "")
	require.NoError(t, err)

	hist, err := a.engine.Historico(ctx, "12345")
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "2026000001", hist[0].Numero)
	assert.Equal(t, "2026000002", hist[1].Numero)
}
