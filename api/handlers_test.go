/*
handlers_test.go - HTTP-level tests over in-memory stores

Covers the API-level gates the handlers own (blocked-date rejection,
recompensa cost debiting) plus the status mapping of the main flows.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fagynapp/rai-envios-sub000/api"
	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/cpc"
	"github.com/fagynapp/rai-envios-sub000/dispensa"
	"github.com/fagynapp/rai-envios-sub000/efetivo"
	"github.com/fagynapp/rai-envios-sub000/escala"
	"github.com/fagynapp/rai-envios-sub000/pontos"
	"github.com/fagynapp/rai-envios-sub000/rai"
)

// novoServidor wires a full handler over in-memory stores.
func novoServidor(t *testing.T) (*httptest.Server, *api.Handler) {
	t.Helper()

	diretorio := efetivo.NovoDiretorio(efetivo.NovaMemoria())
	saldos := pontos.NovoLedger(pontos.NovaMemoria())
	catalogo := rai.NovoCatalogo(rai.NovoCatalogoMemoria())

	h := &api.Handler{
		Ciclo:        escala.CicloPadrao(),
		Diretorio:    diretorio,
		Dispensas:    dispensa.NovoLedger(dispensa.NovaMemoria(), diretorio),
		Catalogo:     catalogo,
		Engine:       rai.NovaEngine(rai.NovaRegistroMemoria(), catalogo, saldos),
		Pontos:       saldos,
		Fila:         cpc.NovoGerenciador(),
		Custos:       dispensa.TabelaPadrao(),
		LimiteMensal: 2,
	}

	srv := httptest.NewServer(api.NewRouter(h, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, h
}

func post(t *testing.T, srv *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, srv *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func cadastrar(t *testing.T, srv *httptest.Server, nome, matricula string, eq escala.Equipe, antiguidade int) {
	t.Helper()
	resp := post(t, srv, "/api/policiais", api.CadastrarPolicialRequest{
		Nome: nome, Matricula: matricula, Equipe: string(eq), Antiguidade: antiguidade,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// =============================================================================
// ESCALA
// =============================================================================

func TestEscala_ResolveEquipe(t *testing.T) {
	srv, _ := novoServidor(t)

	resp := get(t, srv, "/api/escala/2026-01-05")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decode[api.EscalaDTO](t, resp)
	assert.Equal(t, "DELTA", dto.Equipe)
}

func TestEscala_DataInvalida(t *testing.T) {
	srv, _ := novoServidor(t)

	resp := get(t, srv, "/api/escala/05-01-2026")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// DISPENSAS
// =============================================================================

func TestRegistrarDispensa_DataBloqueadaRejeita(t *testing.T) {
	// GIVEN: an officer and a blocked date
	srv, _ := novoServidor(t)
	cadastrar(t, srv, "Sgt. Teste", "111", escala.EquipeAlfa, 1)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/api/bloqueios/2026-03-10",
		bytes.NewReader([]byte(`{"motivo":"operacao"}`)))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// WHEN: registering leave on the blocked date
	resp = post(t, srv, "/api/dispensas/2026-03-10", api.RegistrarDispensaRequest{Matricula: "111"})
	defer resp.Body.Close()

	// THEN: rejected at the API with 409
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegistrarDispensa_RecompensaDebitaCusto(t *testing.T) {
	// GIVEN: an officer with a 100-point balance
	srv, _ := novoServidor(t)
	cadastrar(t, srv, "Sgt. Teste", "111", escala.EquipeAlfa, 1)

	resp := post(t, srv, "/api/pontos/ajuste", api.AjusteRequest{
		Matricula: "111", Delta: "100", Motivo: "saldo inicial", ChaveIdem: "seed-111",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// WHEN: taking a Saturday off as recompensa (2026-03-07)
	resp = post(t, srv, "/api/dispensas/2026-03-07", api.RegistrarDispensaRequest{
		Matricula: "111", Tipo: "recompensa",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	dto := decode[api.DispensaDTO](t, resp)
	assert.Equal(t, "20", dto.Custo)

	// THEN: the balance dropped by the Saturday price
	extrato := decode[api.ExtratoDTO](t, get(t, srv, "/api/pontos/111"))
	assert.Equal(t, "80", extrato.Saldo)
}

func TestRegistrarLote_MelhorEsforco(t *testing.T) {
	// GIVEN: one known officer; a batch with a good row, a dateless row
	//        and an unknown matrícula
	srv, _ := novoServidor(t)
	cadastrar(t, srv, "Sgt. Teste", "111", escala.EquipeAlfa, 1)

	resp := post(t, srv, "/api/dispensas/lote", api.LoteRequest{Linhas: []api.LinhaLoteDTO{
		{Dia: "2026-03-09", Matricula: "111", Tipo: "abono"},
		{Dia: "", Matricula: "111"},
		{Dia: "2026-03-09", Matricula: "999"},
	}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	dto := decode[api.ResultadoLoteDTO](t, resp)
	assert.Equal(t, 1, dto.Aplicadas)
	assert.Equal(t, 3, dto.Total)
	assert.True(t, dto.Linhas[0].Aplicada)
	assert.Equal(t, "linha sem data", dto.Linhas[1].Motivo)
	assert.False(t, dto.Linhas[2].Aplicada)
}

// =============================================================================
// RAI
// =============================================================================

func TestSubmeterRAI_CreditaESomaNoExtrato(t *testing.T) {
	// GIVEN: a natureza worth 25 points
	srv, _ := novoServidor(t)

	resp := post(t, srv, "/api/naturezas", api.CriarNaturezaRequest{
		Rotulo: "Porte ilegal de arma", Pontos: "25",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	natureza := decode[api.NaturezaDTO](t, resp)

	// WHEN: submitting a fresh report citing it
	resp = post(t, srv, "/api/rai", api.SubmeterRAIRequest{
		Matricula: "111", Numero: "2026000001",
		Ocorrencia: calendario.Hoje().MaisDias(-1).String(), NaturezaID: natureza.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decode[api.RegistroRAIDTO](t, resp)
	assert.Equal(t, "PENDENTE", reg.Status)
	assert.Equal(t, "25", reg.Pontos)

	// THEN: points land on the balance immediately
	extrato := decode[api.ExtratoDTO](t, get(t, srv, "/api/pontos/111"))
	assert.Equal(t, "25", extrato.Saldo)
}

func TestSubmeterRAI_DuplicadoRetorna409(t *testing.T) {
	srv, _ := novoServidor(t)

	corpo := api.SubmeterRAIRequest{
		Matricula: "111", Numero: "2026000001", Ocorrencia: calendario.Hoje().String(),
	}
	resp := post(t, srv, "/api/rai", corpo)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = post(t, srv, "/api/rai", corpo)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSubmeterRAI_NumeroCurtoRetorna400(t *testing.T) {
	srv, _ := novoServidor(t)

	resp := post(t, srv, "/api/rai", api.SubmeterRAIRequest{
		Matricula: "111", Numero: "123", Ocorrencia: calendario.Hoje().String(),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// CPC
// =============================================================================

func TestCPC_AbrirPorAlmanaqueEAvancar(t *testing.T) {
	// GIVEN: a team of three with almanaque positions 3, 1, 2
	srv, _ := novoServidor(t)
	cadastrar(t, srv, "Sd. Tres", "333", escala.EquipeBravo, 3)
	cadastrar(t, srv, "Sgt. Um", "111", escala.EquipeBravo, 1)
	cadastrar(t, srv, "Cb. Dois", "222", escala.EquipeBravo, 2)

	// WHEN: opening by almanaque
	resp := post(t, srv, "/api/cpc/abrir", api.AbrirFilaRequest{
		Equipe: "BRAVO", Criterio: "almanaque", PrazoHoras: 48,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	fila := decode[api.FilaDTO](t, resp)

	// THEN: seniority order, head NA_VEZ with a deadline
	require.Len(t, fila.Itens, 3)
	assert.Equal(t, "111", fila.Itens[0].Matricula)
	assert.Equal(t, "NA_VEZ", fila.Itens[0].Status)
	assert.NotNil(t, fila.Itens[0].PrazoAte)
	assert.Equal(t, "222", fila.Itens[1].Matricula)
	assert.Equal(t, "AGUARDANDO", fila.Itens[1].Status)

	// Advancing hands the turn over and renumbers from 1.
	resp = post(t, srv, "/api/cpc/avancar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fila = decode[api.FilaDTO](t, resp)
	require.Len(t, fila.Itens, 2)
	assert.Equal(t, "222", fila.Itens[0].Matricula)
	assert.Equal(t, 1, fila.Itens[0].Posicao)
	assert.Equal(t, "NA_VEZ", fila.Itens[0].Status)
}

func TestCPC_SemFilaRetorna404(t *testing.T) {
	srv, _ := novoServidor(t)

	resp := get(t, srv, "/api/cpc")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCPC_PosicaoDoPolicial(t *testing.T) {
	srv, _ := novoServidor(t)
	cadastrar(t, srv, "Sgt. Um", "111", escala.EquipeBravo, 1)
	cadastrar(t, srv, "Cb. Dois", "222", escala.EquipeBravo, 2)

	resp := post(t, srv, "/api/cpc/abrir", api.AbrirFilaRequest{Equipe: "BRAVO", Criterio: "almanaque"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	item := decode[api.ItemFilaDTO](t, get(t, srv, "/api/cpc/posicao/222"))
	assert.Equal(t, 2, item.Posicao)
	assert.Equal(t, "AGUARDANDO", item.Status)

	resp = get(t, srv, "/api/cpc/posicao/999")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// EXCECOES
// =============================================================================

func TestLimiteMensal_PadraoEExcecao(t *testing.T) {
	srv, _ := novoServidor(t)

	limite := decode[map[string]any](t, get(t, srv, "/api/excecoes/111/2026-09"))
	assert.EqualValues(t, 2, limite["limite"])

	resp := post(t, srv, "/api/excecoes", api.ExcecaoRequest{
		Matricula: "111", MesRef: "2026-09", NovoLimite: 4,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	limite = decode[map[string]any](t, get(t, srv, "/api/excecoes/111/2026-09"))
	assert.EqualValues(t, 4, limite["limite"])
}
