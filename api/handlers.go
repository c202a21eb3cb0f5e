/*
handlers.go - HTTP handlers of the portal API

PURPOSE:
  Exposes the unit's rule engines over REST. Handlers parse and
  validate input, delegate to domain logic, and serialize responses;
  no business rule lives here except two explicitly API-level gates:

  - a blocked date rejects NEW single registrations with 409 (the
    ledger itself never consults the flag)
  - a leave of type recompensa debits the day's point cost from the
    officer's balance, keyed idempotently by the entry id

ERROR HANDLING:
  Errors come back as JSON with the status mapped from the domain
  sentinel:
  - 400: validation (bad date, bad number, bad delta, bad criterio)
  - 404: unresolved matrícula, record, position, queue
  - 409: duplicates (matrícula, submission, idempotency key), blocked
         date, invalid status transition
  - 500: store failures

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: routes and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/cpc"
	"github.com/fagynapp/rai-envios-sub000/dispensa"
	"github.com/fagynapp/rai-envios-sub000/efetivo"
	"github.com/fagynapp/rai-envios-sub000/escala"
	"github.com/fagynapp/rai-envios-sub000/pontos"
	"github.com/fagynapp/rai-envios-sub000/rai"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds every dependency the routes need.
type Handler struct {
	Ciclo     *escala.Ciclo
	Diretorio *efetivo.Diretorio
	Dispensas *dispensa.Ledger
	Catalogo  *rai.Catalogo
	Engine    *rai.Engine
	Pontos    *pontos.Ledger
	Fila      *cpc.Gerenciador
	FilaStore cpc.Store

	Custos   dispensa.TabelaCustos
	Feriados calendario.Feriados

	// LimiteMensal is the default monthly leave quota, reported by the
	// quota endpoint when no exception overrides it.
	LimiteMensal int
}

// =============================================================================
// ESCALA
// =============================================================================

// EquipeDeServico resolves the team on ordinary duty on a date.
// GET /api/escala/{data}
func (h *Handler) EquipeDeServico(w http.ResponseWriter, r *http.Request) {
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, EscalaDTO{
		Data:   dia.String(),
		Equipe: string(h.Ciclo.EquipeDeServico(dia)),
	})
}

// ServicoOrdinario answers whether a team serves on a date and when it
// serves next.
// GET /api/escala/{data}/ordinaria?equipe=ALFA
func (h *Handler) ServicoOrdinario(w http.ResponseWriter, r *http.Request) {
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	eq, err := escala.ParseEquipe(r.URL.Query().Get("equipe"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Equipe invalida", err)
		return
	}
	proximo, err := h.Ciclo.ProximoServico(dia, eq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao resolver escala", err)
		return
	}
	writeJSON(w, http.StatusOK, ServicoOrdinarioDTO{
		Data:      dia.String(),
		Equipe:    string(eq),
		DeServico: h.Ciclo.ServicoOrdinario(dia, eq),
		Proximo:   proximo.String(),
	})
}

// =============================================================================
// EFETIVO
// =============================================================================

// ListarPoliciais returns the directory in almanaque order.
// GET /api/policiais
func (h *Handler) ListarPoliciais(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		ps  []efetivo.Policial
		err error
	)
	if q := r.URL.Query().Get("equipe"); q != "" {
		eq, perr := escala.ParseEquipe(q)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "Equipe invalida", perr)
			return
		}
		ps, err = h.Diretorio.PorEquipe(ctx, eq)
	} else {
		ps, err = h.Diretorio.Listar(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao listar efetivo", err)
		return
	}

	dtos := make([]PolicialDTO, 0, len(ps))
	for _, p := range ps {
		dtos = append(dtos, toPolicialDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CadastrarPolicial registers a new officer.
// POST /api/policiais
func (h *Handler) CadastrarPolicial(w http.ResponseWriter, r *http.Request) {
	var req CadastrarPolicialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	eq, err := escala.ParseEquipe(req.Equipe)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Equipe invalida", err)
		return
	}
	p, err := h.Diretorio.Cadastrar(r.Context(), efetivo.Policial{
		Nome:        req.Nome,
		Matricula:   req.Matricula,
		Equipe:      eq,
		Telefone:    req.Telefone,
		Email:       req.Email,
		Antiguidade: req.Antiguidade,
	})
	if err != nil {
		if errors.Is(err, efetivo.ErrMatriculaDuplicada) {
			writeError(w, http.StatusConflict, "Matricula ja cadastrada", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Falha ao cadastrar policial", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPolicialDTO(p))
}

// BuscarPolicial resolves one matrícula.
// GET /api/policiais/{matricula}
func (h *Handler) BuscarPolicial(w http.ResponseWriter, r *http.Request) {
	matricula := chi.URLParam(r, "matricula")
	p, ok, err := h.Diretorio.PorMatricula(r.Context(), matricula)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao buscar policial", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Policial nao encontrado", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPolicialDTO(p))
}

// RemoverPolicial drops an officer from the directory. Ledger history
// keeps its snapshots.
// DELETE /api/policiais/{matricula}
func (h *Handler) RemoverPolicial(w http.ResponseWriter, r *http.Request) {
	if err := h.Diretorio.Remover(r.Context(), chi.URLParam(r, "matricula")); err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao remover policial", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// NATUREZAS
// =============================================================================

// ListarNaturezas returns the catalog. ?ativas=true filters disabled
// categories out.
// GET /api/naturezas
func (h *Handler) ListarNaturezas(w http.ResponseWriter, r *http.Request) {
	somenteAtivas := r.URL.Query().Get("ativas") == "true"
	ns, err := h.Catalogo.Listar(r.Context(), somenteAtivas)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao listar naturezas", err)
		return
	}
	dtos := make([]NaturezaDTO, 0, len(ns))
	for _, n := range ns {
		dtos = append(dtos, toNaturezaDTO(n))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CriarNatureza adds a category to the catalog.
// POST /api/naturezas
func (h *Handler) CriarNatureza(w http.ResponseWriter, r *http.Request) {
	var req CriarNaturezaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	valor, err := decimal.NewFromString(strings.TrimSpace(req.Pontos))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Pontos invalidos", err)
		return
	}
	n, err := h.Catalogo.Criar(r.Context(), rai.Natureza{
		Rotulo:    req.Rotulo,
		Descricao: req.Descricao,
		Pontos:    valor,
		BaseLegal: req.BaseLegal,
		Ativa:     true,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Falha ao criar natureza", err)
		return
	}
	writeJSON(w, http.StatusCreated, toNaturezaDTO(n))
}

// DesativarNatureza soft-disables a category.
// POST /api/naturezas/{id}/desativar
func (h *Handler) DesativarNatureza(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalogo.Desativar(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "Natureza nao encontrada", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReativarNatureza re-enables a category.
// POST /api/naturezas/{id}/reativar
func (h *Handler) ReativarNatureza(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalogo.Reativar(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "Natureza nao encontrada", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// DISPENSAS
// =============================================================================

// ListarDispensas returns a date's entries plus its block flag.
// GET /api/dispensas/{data}
func (h *Handler) ListarDispensas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	regs, err := h.Dispensas.Registros(ctx, dia)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao listar dispensas", err)
		return
	}
	bloqueado, motivo, err := h.Dispensas.Bloqueado(ctx, dia)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao consultar bloqueio", err)
		return
	}
	dto := DiaDTO{
		Data:      dia.String(),
		Bloqueado: bloqueado,
		Motivo:    motivo,
		Registros: make([]DispensaDTO, 0, len(regs)),
	}
	for _, reg := range regs {
		dto.Registros = append(dto.Registros, toDispensaDTO(reg))
	}
	writeJSON(w, http.StatusOK, dto)
}

// RegistrarDispensa grants one leave entry on a date. A blocked date
// rejects with 409; a recompensa debits the day's cost from the
// officer's balance.
// POST /api/dispensas/{data}
func (h *Handler) RegistrarDispensa(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	var req RegistrarDispensaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}

	bloqueado, motivo, err := h.Dispensas.Bloqueado(ctx, dia)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao consultar bloqueio", err)
		return
	}
	if bloqueado {
		writeError(w, http.StatusConflict, "Data bloqueada para novas dispensas", errors.New(motivo))
		return
	}

	reg, err := h.Dispensas.Registrar(ctx, dia, req.Matricula, dispensa.Tipo(req.Tipo), req.Observacao)
	if err != nil {
		switch {
		case errors.Is(err, efetivo.ErrPolicialNaoEncontrado):
			writeError(w, http.StatusNotFound, "Policial nao encontrado", err)
		case errors.Is(err, dispensa.ErrEntradaIncompleta):
			writeError(w, http.StatusBadRequest, "Entrada incompleta", err)
		default:
			writeError(w, http.StatusInternalServerError, "Falha ao registrar dispensa", err)
		}
		return
	}

	dto := toDispensaDTO(reg)
	if reg.Tipo == dispensa.TipoRecompensa {
		custo, err := h.debitarCusto(ctx, dia, reg)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Falha ao debitar custo da dispensa", err)
			return
		}
		dto.Custo = custo.String()
	}
	writeJSON(w, http.StatusCreated, dto)
}

// debitarCusto prices the day and debits the officer, keyed by the
// entry id so a retried request never double-charges.
func (h *Handler) debitarCusto(ctx context.Context, dia calendario.Dia, reg dispensa.Registro) (decimal.Decimal, error) {
	custo := h.Custos.Custo(dia, h.Feriados)
	if !custo.IsPositive() {
		return custo, nil
	}
	chave := "dispensa:" + reg.ID
	_, err := h.Pontos.Debitar(ctx, reg.Matricula, custo, reg.ID, "dispensa "+dia.String(), chave)
	if errors.Is(err, pontos.ErrChaveIdemDuplicada) {
		return custo, nil
	}
	return custo, err
}

// RegistrarLote applies batch rows best-effort.
// POST /api/dispensas/lote
func (h *Handler) RegistrarLote(w http.ResponseWriter, r *http.Request) {
	var req LoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	linhas := make([]dispensa.Linha, 0, len(req.Linhas))
	for _, l := range req.Linhas {
		linhas = append(linhas, dispensa.Linha{
			Dia:        l.Dia,
			Matricula:  l.Matricula,
			Tipo:       dispensa.Tipo(l.Tipo),
			Observacao: l.Observacao,
		})
	}
	resultado, err := h.Dispensas.RegistrarLote(r.Context(), linhas)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao aplicar lote", err)
		return
	}
	dto := ResultadoLoteDTO{
		Aplicadas: resultado.Aplicadas,
		Total:     len(resultado.Linhas),
		Linhas:    make([]ResultadoLinhaDTO, 0, len(resultado.Linhas)),
	}
	for _, rl := range resultado.Linhas {
		dto.Linhas = append(dto.Linhas, ResultadoLinhaDTO{
			Dia:       rl.Linha.Dia,
			Matricula: rl.Linha.Matricula,
			Aplicada:  rl.Aplicada,
			ID:        rl.ID,
			Motivo:    rl.Motivo,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// RemoverDispensa drops one entry from a date.
// DELETE /api/dispensas/{data}/{id}
func (h *Handler) RemoverDispensa(w http.ResponseWriter, r *http.Request) {
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	err := h.Dispensas.Remover(r.Context(), dia, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, dispensa.ErrRegistroNaoEncontrado) {
			writeError(w, http.StatusNotFound, "Registro nao encontrado", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Falha ao remover dispensa", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LimparDia removes every entry of a date, keeping the block flag.
// DELETE /api/dispensas/{data}
func (h *Handler) LimparDia(w http.ResponseWriter, r *http.Request) {
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	if err := h.Dispensas.LimparDia(r.Context(), dia); err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao limpar o dia", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// BLOQUEIOS
// =============================================================================

// ConsultarBloqueio reports a date's block flag.
// GET /api/bloqueios/{data}
func (h *Handler) ConsultarBloqueio(w http.ResponseWriter, r *http.Request) {
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	bloqueado, motivo, err := h.Dispensas.Bloqueado(r.Context(), dia)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao consultar bloqueio", err)
		return
	}
	writeJSON(w, http.StatusOK, BloqueioDTO{Data: dia.String(), Bloqueado: bloqueado, Motivo: motivo})
}

// Bloquear closes a date to new registrations.
// PUT /api/bloqueios/{data}
func (h *Handler) Bloquear(w http.ResponseWriter, r *http.Request) {
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	var req BloquearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	if err := h.Dispensas.Bloquear(r.Context(), dia, req.Motivo); err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao bloquear data", err)
		return
	}
	writeJSON(w, http.StatusOK, BloqueioDTO{Data: dia.String(), Bloqueado: true, Motivo: req.Motivo})
}

// Desbloquear reopens a date.
// DELETE /api/bloqueios/{data}
func (h *Handler) Desbloquear(w http.ResponseWriter, r *http.Request) {
	dia, ok := h.parseData(w, r)
	if !ok {
		return
	}
	if err := h.Dispensas.Desbloquear(r.Context(), dia); err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao desbloquear data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RegistrarExcecao records a monthly quota override.
// POST /api/excecoes
func (h *Handler) RegistrarExcecao(w http.ResponseWriter, r *http.Request) {
	var req ExcecaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	err := h.Dispensas.RegistrarExcecao(r.Context(), dispensa.Excecao{
		Matricula:  req.Matricula,
		MesRef:     req.MesRef,
		NovoLimite: req.NovoLimite,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Falha ao registrar excecao", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LimiteMensalDe reports one officer's quota for a month.
// GET /api/excecoes/{matricula}/{mes}
func (h *Handler) LimiteMensalDe(w http.ResponseWriter, r *http.Request) {
	matricula := chi.URLParam(r, "matricula")
	mes := chi.URLParam(r, "mes")
	limite, err := h.Dispensas.LimiteDoMes(r.Context(), matricula, mes, h.LimiteMensal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao consultar limite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"matricula": matricula,
		"mes_ref":   mes,
		"limite":    limite,
	})
}

// =============================================================================
// RAI
// =============================================================================

// SubmeterRAI registers a report for an officer.
// POST /api/rai
func (h *Handler) SubmeterRAI(w http.ResponseWriter, r *http.Request) {
	var req SubmeterRAIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	ocorrencia, err := calendario.ParseDia(req.Ocorrencia)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Data de ocorrencia invalida (use YYYY-MM-DD)", err)
		return
	}
	if strings.TrimSpace(req.Matricula) == "" {
		writeError(w, http.StatusBadRequest, "Matricula obrigatoria", nil)
		return
	}

	reg, err := h.Engine.Submeter(r.Context(), req.Matricula, req.Numero, ocorrencia, req.NaturezaID, req.Observacao)
	if err != nil {
		switch {
		case errors.Is(err, rai.ErrNumeroInvalido):
			writeError(w, http.StatusBadRequest, "Numero de RAI invalido", err)
		case errors.Is(err, rai.ErrSubmissaoDuplicada):
			writeError(w, http.StatusConflict, "RAI ja registrado para esta matricula", err)
		default:
			writeError(w, http.StatusInternalServerError, "Falha ao submeter RAI", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toRegistroRAIDTO(reg))
}

// HistoricoRAI lists one officer's submissions.
// GET /api/rai/{matricula}
func (h *Handler) HistoricoRAI(w http.ResponseWriter, r *http.Request) {
	regs, err := h.Engine.Historico(r.Context(), chi.URLParam(r, "matricula"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao listar historico", err)
		return
	}
	dtos := make([]RegistroRAIDTO, 0, len(regs))
	for _, reg := range regs {
		dtos = append(dtos, toRegistroRAIDTO(reg))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AprovarRAI confirms a pending record.
// POST /api/rai/registro/{id}/aprovar
func (h *Handler) AprovarRAI(w http.ResponseWriter, r *http.Request) {
	h.revisarRAI(w, r, h.Engine.Aprovar)
}

// RejeitarRAI marks a pending record as rejected.
// POST /api/rai/registro/{id}/rejeitar
func (h *Handler) RejeitarRAI(w http.ResponseWriter, r *http.Request) {
	h.revisarRAI(w, r, h.Engine.Rejeitar)
}

func (h *Handler) revisarRAI(w http.ResponseWriter, r *http.Request, revisar func(context.Context, string) (rai.Registro, error)) {
	reg, err := revisar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, rai.ErrRegistroNaoEncontrado):
			writeError(w, http.StatusNotFound, "Registro nao encontrado", err)
		case errors.Is(err, rai.ErrTransicaoInvalida):
			writeError(w, http.StatusConflict, "Registro nao esta pendente", err)
		default:
			writeError(w, http.StatusInternalServerError, "Falha ao revisar registro", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toRegistroRAIDTO(reg))
}

// =============================================================================
// PONTOS
// =============================================================================

// ExtratoPontos returns an officer's balance and full entry history.
// GET /api/pontos/{matricula}
func (h *Handler) ExtratoPontos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	matricula := chi.URLParam(r, "matricula")

	saldo, err := h.Pontos.Saldo(ctx, matricula)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao calcular saldo", err)
		return
	}
	lancs, err := h.Pontos.Extrato(ctx, matricula)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao listar lancamentos", err)
		return
	}
	dto := ExtratoDTO{
		Matricula:   matricula,
		Saldo:       saldo.String(),
		Lancamentos: make([]LancamentoDTO, 0, len(lancs)),
	}
	for _, l := range lancs {
		dto.Lancamentos = append(dto.Lancamentos, toLancamentoDTO(l))
	}
	writeJSON(w, http.StatusOK, dto)
}

// AjustarPontos appends a manual signed correction.
// POST /api/pontos/ajuste
func (h *Handler) AjustarPontos(w http.ResponseWriter, r *http.Request) {
	var req AjusteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	delta, err := decimal.NewFromString(strings.TrimSpace(req.Delta))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Delta invalido", err)
		return
	}
	lanc, err := h.Pontos.Ajustar(r.Context(), req.Matricula, delta, req.Motivo, req.ChaveIdem)
	if err != nil {
		switch {
		case errors.Is(err, pontos.ErrDeltaInvalido):
			writeError(w, http.StatusBadRequest, "Delta invalido", err)
		case errors.Is(err, pontos.ErrChaveIdemDuplicada):
			writeError(w, http.StatusConflict, "Chave de idempotencia ja usada", err)
		default:
			writeError(w, http.StatusInternalServerError, "Falha ao ajustar pontos", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, toLancamentoDTO(lanc))
}

// =============================================================================
// CPC
// =============================================================================

// FilaAtual returns the open queue.
// GET /api/cpc
func (h *Handler) FilaAtual(w http.ResponseWriter, r *http.Request) {
	fila, err := h.Fila.Atual()
	if err != nil {
		writeError(w, http.StatusNotFound, "Nenhuma fila aberta", err)
		return
	}
	writeJSON(w, http.StatusOK, toFilaDTO(fila))
}

// AbrirFila opens a queue for one team, replacing any open one. The
// candidate list comes from the directory; the produtividade criterion
// snapshots each officer's balance at opening time.
// POST /api/cpc/abrir
func (h *Handler) AbrirFila(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AbrirFilaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Corpo da requisicao invalido", err)
		return
	}
	eq, err := escala.ParseEquipe(req.Equipe)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Equipe invalida", err)
		return
	}

	ps, err := h.Diretorio.PorEquipe(ctx, eq)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao listar a equipe", err)
		return
	}
	candidatos := make([]cpc.Candidato, 0, len(ps))
	for _, p := range ps {
		saldo, err := h.Pontos.Saldo(ctx, p.Matricula)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Falha ao calcular saldo", err)
			return
		}
		candidatos = append(candidatos, cpc.Candidato{
			Matricula:   p.Matricula,
			Nome:        p.Nome,
			Antiguidade: p.Antiguidade,
			Pontos:      saldo,
		})
	}

	fila, err := h.Fila.Abrir(cpc.Config{
		Equipe:     eq,
		Criterio:   cpc.Criterio(req.Criterio),
		PrazoHoras: req.PrazoHoras,
	}, candidatos)
	if err != nil {
		switch {
		case errors.Is(err, cpc.ErrCriterioInvalido):
			writeError(w, http.StatusBadRequest, "Criterio desconhecido", err)
		case errors.Is(err, cpc.ErrSemCandidatos):
			writeError(w, http.StatusBadRequest, "Equipe sem candidatos", err)
		default:
			writeError(w, http.StatusInternalServerError, "Falha ao abrir fila", err)
		}
		return
	}
	h.persistirFila(ctx, fila)
	writeJSON(w, http.StatusCreated, toFilaDTO(fila))
}

// AvancarFila hands the turn to the next officer.
// POST /api/cpc/avancar
func (h *Handler) AvancarFila(w http.ResponseWriter, r *http.Request) {
	fila, err := h.Fila.Avancar()
	if err != nil {
		h.writeFilaError(w, err)
		return
	}
	h.persistirFila(r.Context(), fila)
	writeJSON(w, http.StatusOK, toFilaDTO(fila))
}

// PularPosicao sends a slot to the back of the queue.
// POST /api/cpc/pular/{posicao}
func (h *Handler) PularPosicao(w http.ResponseWriter, r *http.Request) {
	h.moverFila(w, r, h.Fila.Pular)
}

// LiberarPosicao removes a slot from the queue.
// POST /api/cpc/liberar/{posicao}
func (h *Handler) LiberarPosicao(w http.ResponseWriter, r *http.Request) {
	h.moverFila(w, r, h.Fila.Liberar)
}

func (h *Handler) moverFila(w http.ResponseWriter, r *http.Request, mover func(int) (cpc.Fila, error)) {
	posicao, err := strconv.Atoi(chi.URLParam(r, "posicao"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Posicao invalida", err)
		return
	}
	fila, err := mover(posicao)
	if err != nil {
		h.writeFilaError(w, err)
		return
	}
	h.persistirFila(r.Context(), fila)
	writeJSON(w, http.StatusOK, toFilaDTO(fila))
}

// MinhaPosicao finds one officer's slot in the open queue.
// GET /api/cpc/posicao/{matricula}
func (h *Handler) MinhaPosicao(w http.ResponseWriter, r *http.Request) {
	item, err := h.Fila.Posicao(chi.URLParam(r, "matricula"))
	if err != nil {
		h.writeFilaError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemFilaDTO{
		Posicao:   item.Posicao,
		Matricula: item.Matricula,
		Nome:      item.Nome,
		Status:    string(item.Status),
		PrazoAte:  item.PrazoAte,
	})
}

// FecharFila discards the open queue.
// DELETE /api/cpc
func (h *Handler) FecharFila(w http.ResponseWriter, r *http.Request) {
	h.Fila.Fechar()
	if h.FilaStore != nil {
		if err := h.FilaStore.ClearFila(r.Context()); err != nil {
			log.Error().Err(err).Msg("falha ao limpar snapshot da fila")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// persistirFila rewrites the queue snapshot after a mutation. Snapshot
// loss degrades restart recovery only, so failures are logged, not
// surfaced.
func (h *Handler) persistirFila(ctx context.Context, fila cpc.Fila) {
	if h.FilaStore == nil {
		return
	}
	if err := h.FilaStore.SaveFila(ctx, fila); err != nil {
		log.Error().Err(err).Msg("falha ao persistir snapshot da fila")
	}
}

func (h *Handler) writeFilaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cpc.ErrFilaFechada):
		writeError(w, http.StatusNotFound, "Nenhuma fila aberta", err)
	case errors.Is(err, cpc.ErrFilaVazia):
		writeError(w, http.StatusConflict, "Fila vazia", err)
	case errors.Is(err, cpc.ErrPosicaoInvalida):
		writeError(w, http.StatusNotFound, "Posicao inexistente", err)
	case errors.Is(err, cpc.ErrForaDaFila):
		writeError(w, http.StatusNotFound, "Matricula fora da fila", err)
	default:
		writeError(w, http.StatusInternalServerError, "Falha na fila", err)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// parseData reads the {data} path parameter. Writes the 400 on failure.
func (h *Handler) parseData(w http.ResponseWriter, r *http.Request) (calendario.Dia, bool) {
	raw := chi.URLParam(r, "data")
	dia, err := calendario.ParseDia(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Data invalida %q (use YYYY-MM-DD)", raw), err)
		return calendario.Dia{}, false
	}
	return dia, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
