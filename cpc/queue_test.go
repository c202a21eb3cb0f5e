package cpc_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fagynapp/rai-envios-sub000/cpc"
	"github.com/fagynapp/rai-envios-sub000/escala"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var abertura = time.Date(2026, time.August, 31, 8, 0, 0, 0, time.UTC)

func novoGerenciador() *cpc.Gerenciador {
	return cpc.NovoGerenciador().ComRelogio(func() time.Time { return abertura })
}

func candidatos() []cpc.Candidato {
	return []cpc.Candidato{
		{Matricula: "33333", Nome: "Costa", Antiguidade: 3, Pontos: decimal.NewFromInt(120)},
		{Matricula: "11111", Nome: "Silva", Antiguidade: 1, Pontos: decimal.NewFromInt(40)},
		{Matricula: "22222", Nome: "Souza", Antiguidade: 2, Pontos: decimal.NewFromInt(80)},
	}
}

func cfgAlmanaque() cpc.Config {
	return cpc.Config{Equipe: escala.EquipeAlfa, Criterio: cpc.CriterioAlmanaque, PrazoHoras: 48}
}

func verificaInvariante(t *testing.T, fila cpc.Fila) {
	t.Helper()
	naVez := 0
	for i, item := range fila.Itens {
		assert.Equal(t, i+1, item.Posicao, "posicoes contiguas a partir de 1")
		if item.Status == cpc.StatusNaVez {
			naVez++
			assert.Equal(t, 1, item.Posicao, "NA_VEZ sempre na cabeca")
		}
	}
	if len(fila.Itens) > 0 {
		assert.Equal(t, 1, naVez, "exatamente um NA_VEZ")
	}
}

// =============================================================================
// OPENING
// =============================================================================

func TestAbrir_CriterioAlmanaque(t *testing.T) {
	// GIVEN: three candidates in arbitrary order
	// WHEN:  opening by almanaque
	// THEN:  seniority order, head NA_VEZ, rest AGUARDANDO

	g := novoGerenciador()
	fila, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	require.Len(t, fila.Itens, 3)
	assert.Equal(t, "11111", fila.Itens[0].Matricula)
	assert.Equal(t, "22222", fila.Itens[1].Matricula)
	assert.Equal(t, "33333", fila.Itens[2].Matricula)
	verificaInvariante(t, fila)
}

func TestAbrir_CriterioProdutividade(t *testing.T) {
	g := novoGerenciador()
	cfg := cpc.Config{Equipe: escala.EquipeAlfa, Criterio: cpc.CriterioProdutividade}

	fila, err := g.Abrir(cfg, candidatos())
	require.NoError(t, err)

	assert.Equal(t, "33333", fila.Itens[0].Matricula, "maior saldo primeiro")
	assert.Equal(t, "22222", fila.Itens[1].Matricula)
	assert.Equal(t, "11111", fila.Itens[2].Matricula)
	verificaInvariante(t, fila)
}

func TestAbrir_ProdutividadeEmpateDesempataPorAlmanaque(t *testing.T) {
	g := novoGerenciador()
	empatados := []cpc.Candidato{
		{Matricula: "22222", Antiguidade: 2, Pontos: decimal.NewFromInt(50)},
		{Matricula: "11111", Antiguidade: 1, Pontos: decimal.NewFromInt(50)},
	}

	fila, err := g.Abrir(cpc.Config{Criterio: cpc.CriterioProdutividade}, empatados)
	require.NoError(t, err)
	assert.Equal(t, "11111", fila.Itens[0].Matricula)
}

func TestAbrir_SemAntiguidadeVaiParaOFim(t *testing.T) {
	// GIVEN: a ranked candidate and two unranked ones (Antiguidade 0)
	// WHEN:  opening by almanaque
	// THEN:  the ranked officer heads the queue; the unranked go last,
	//        ordered by name

	g := novoGerenciador()
	fila, err := g.Abrir(cfgAlmanaque(), []cpc.Candidato{
		{Matricula: "00002", Nome: "Borges"},
		{Matricula: "11111", Nome: "Silva", Antiguidade: 1},
		{Matricula: "00001", Nome: "Abreu"},
	})
	require.NoError(t, err)

	require.Len(t, fila.Itens, 3)
	assert.Equal(t, "11111", fila.Itens[0].Matricula, "sem antiguidade nao assume a cabeca")
	assert.Equal(t, "00001", fila.Itens[1].Matricula)
	assert.Equal(t, "00002", fila.Itens[2].Matricula)
	verificaInvariante(t, fila)
}

func TestAbrir_ProdutividadeEmpateComNaoRanqueado(t *testing.T) {
	// Tied balances: the ranked officer wins the tie over the unranked.
	g := novoGerenciador()
	fila, err := g.Abrir(cpc.Config{Criterio: cpc.CriterioProdutividade}, []cpc.Candidato{
		{Matricula: "00000", Nome: "Abreu", Pontos: decimal.NewFromInt(50)},
		{Matricula: "22222", Nome: "Souza", Antiguidade: 2, Pontos: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)
	assert.Equal(t, "22222", fila.Itens[0].Matricula)
}

func TestAbrir_SubstituiFilaAnterior(t *testing.T) {
	// Single global queue: last open wins, no merge.
	g := novoGerenciador()

	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)
	_, err = g.Avancar()
	require.NoError(t, err)

	fila, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)
	assert.Len(t, fila.Itens, 3, "fila recomeca completa")
	assert.Equal(t, "11111", fila.Itens[0].Matricula)
}

func TestAbrir_SemCandidatos(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), nil)
	assert.ErrorIs(t, err, cpc.ErrSemCandidatos)
}

func TestAbrir_CriterioDesconhecido(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cpc.Config{Criterio: "sorteio"}, candidatos())
	assert.ErrorIs(t, err, cpc.ErrCriterioInvalido)
}

func TestAbrir_PrazoDaCabeca(t *testing.T) {
	// Deadline is metadata on the head: opening time + configured hours.
	g := novoGerenciador()

	fila, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	require.NotNil(t, fila.Itens[0].PrazoAte)
	assert.Equal(t, abertura.Add(48*time.Hour), *fila.Itens[0].PrazoAte)
	assert.Nil(t, fila.Itens[1].PrazoAte)
}

// =============================================================================
// ADVANCE / SKIP / RELEASE
// =============================================================================

func TestAvancar(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	fila, err := g.Avancar()
	require.NoError(t, err)

	require.Len(t, fila.Itens, 2)
	assert.Equal(t, "22222", fila.Itens[0].Matricula)
	assert.Equal(t, cpc.StatusNaVez, fila.Itens[0].Status)
	verificaInvariante(t, fila)
}

func TestAvancar_AteEsvaziar(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = g.Avancar()
		require.NoError(t, err)
	}
	_, err = g.Avancar()
	assert.ErrorIs(t, err, cpc.ErrFilaVazia)
}

func TestFilaRetornada_NaoCompartilhaEstado(t *testing.T) {
	// GIVEN: the Fila returned by Abrir, held by the caller
	// WHEN:  the queue advances afterwards
	// THEN:  the held value stays as it was at opening time - the
	//        renumbering never leaks into it

	g := novoGerenciador()
	aberta, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	_, err = g.Avancar()
	require.NoError(t, err)

	require.Len(t, aberta.Itens, 3)
	for i, item := range aberta.Itens {
		assert.Equal(t, i+1, item.Posicao)
	}
	assert.Equal(t, "11111", aberta.Itens[0].Matricula)
	assert.Equal(t, cpc.StatusNaVez, aberta.Itens[0].Status)
	assert.Equal(t, cpc.StatusAguardando, aberta.Itens[1].Status)
	verificaInvariante(t, aberta)

	// The other direction holds too: editing a returned value never
	// reaches the queue.
	depois, err := g.Pular(1)
	require.NoError(t, err)
	depois.Itens[0].Matricula = "99999"

	atual, err := g.Atual()
	require.NoError(t, err)
	assert.Equal(t, "33333", atual.Itens[0].Matricula)
}

func TestPular_MandaParaOFim(t *testing.T) {
	// GIVEN: queue 11111, 22222, 33333
	// WHEN:  skipping the head
	// THEN:  22222 takes the turn and 11111 goes to the back

	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	fila, err := g.Pular(1)
	require.NoError(t, err)

	require.Len(t, fila.Itens, 3)
	assert.Equal(t, "22222", fila.Itens[0].Matricula)
	assert.Equal(t, "33333", fila.Itens[1].Matricula)
	assert.Equal(t, "11111", fila.Itens[2].Matricula)
	verificaInvariante(t, fila)
}

func TestPular_PosicaoIntermediaria(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	fila, err := g.Pular(2)
	require.NoError(t, err)

	assert.Equal(t, "11111", fila.Itens[0].Matricula, "cabeca preservada")
	assert.Equal(t, "33333", fila.Itens[1].Matricula)
	assert.Equal(t, "22222", fila.Itens[2].Matricula)
	verificaInvariante(t, fila)
}

func TestLiberar_RemoveDaFila(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	fila, err := g.Liberar(2)
	require.NoError(t, err)

	require.Len(t, fila.Itens, 2)
	assert.Equal(t, "11111", fila.Itens[0].Matricula)
	assert.Equal(t, "33333", fila.Itens[1].Matricula)
	verificaInvariante(t, fila)
}

func TestLiberar_CabecaEquivaleAAvancar(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	fila, err := g.Liberar(1)
	require.NoError(t, err)
	assert.Equal(t, "22222", fila.Itens[0].Matricula)
	assert.Equal(t, cpc.StatusNaVez, fila.Itens[0].Status)
}

func TestPosicaoInvalida(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	_, err = g.Pular(0)
	assert.ErrorIs(t, err, cpc.ErrPosicaoInvalida)
	_, err = g.Liberar(4)
	assert.ErrorIs(t, err, cpc.ErrPosicaoInvalida)
}

// =============================================================================
// LOOKUPS AND LIFECYCLE
// =============================================================================

func TestPosicao_MinhaVez(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	item, err := g.Posicao("22222")
	require.NoError(t, err)
	assert.Equal(t, 2, item.Posicao)
	assert.Equal(t, cpc.StatusAguardando, item.Status)

	_, err = g.Posicao("99999")
	assert.ErrorIs(t, err, cpc.ErrForaDaFila)
}

func TestOperacoesSemFilaAberta(t *testing.T) {
	g := novoGerenciador()

	_, err := g.Atual()
	assert.ErrorIs(t, err, cpc.ErrFilaFechada)
	_, err = g.Avancar()
	assert.ErrorIs(t, err, cpc.ErrFilaFechada)
	_, err = g.Posicao("11111")
	assert.ErrorIs(t, err, cpc.ErrFilaFechada)
}

func TestFechar(t *testing.T) {
	g := novoGerenciador()
	_, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	g.Fechar()
	_, err = g.Atual()
	assert.ErrorIs(t, err, cpc.ErrFilaFechada)
}

func TestRestaurar(t *testing.T) {
	g := novoGerenciador()
	aberta, err := g.Abrir(cfgAlmanaque(), candidatos())
	require.NoError(t, err)

	outro := novoGerenciador()
	outro.Restaurar(aberta)

	fila, err := outro.Atual()
	require.NoError(t, err)
	assert.Equal(t, aberta.Itens, fila.Itens)
	verificaInvariante(t, fila)
}
