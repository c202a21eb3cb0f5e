/*
dto.go - Request and response shapes of the HTTP API

Dates cross the wire as "YYYY-MM-DD" strings; point values as decimal
strings, never floats. Domain types never leak raw: every response body
is built here.
*/
package api

import (
	"time"

	"github.com/fagynapp/rai-envios-sub000/cpc"
	"github.com/fagynapp/rai-envios-sub000/dispensa"
	"github.com/fagynapp/rai-envios-sub000/efetivo"
	"github.com/fagynapp/rai-envios-sub000/pontos"
	"github.com/fagynapp/rai-envios-sub000/rai"
)

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// ESCALA
// =============================================================================

type EscalaDTO struct {
	Data   string `json:"data"`
	Equipe string `json:"equipe"`
}

type ServicoOrdinarioDTO struct {
	Data      string `json:"data"`
	Equipe    string `json:"equipe"`
	DeServico bool   `json:"de_servico"`
	Proximo   string `json:"proximo_servico"`
}

// =============================================================================
// EFETIVO
// =============================================================================

type PolicialDTO struct {
	ID          string `json:"id"`
	Nome        string `json:"nome"`
	Matricula   string `json:"matricula"`
	Equipe      string `json:"equipe"`
	Telefone    string `json:"telefone,omitempty"`
	Email       string `json:"email,omitempty"`
	Antiguidade int    `json:"antiguidade,omitempty"`
}

type CadastrarPolicialRequest struct {
	Nome        string `json:"nome"`
	Matricula   string `json:"matricula"`
	Equipe      string `json:"equipe"`
	Telefone    string `json:"telefone"`
	Email       string `json:"email"`
	Antiguidade int    `json:"antiguidade"`
}

func toPolicialDTO(p efetivo.Policial) PolicialDTO {
	return PolicialDTO{
		ID:          p.ID,
		Nome:        p.Nome,
		Matricula:   p.Matricula,
		Equipe:      string(p.Equipe),
		Telefone:    p.Telefone,
		Email:       p.Email,
		Antiguidade: p.Antiguidade,
	}
}

// =============================================================================
// NATUREZAS
// =============================================================================

type NaturezaDTO struct {
	ID        string `json:"id"`
	Rotulo    string `json:"rotulo"`
	Descricao string `json:"descricao,omitempty"`
	Pontos    string `json:"pontos"`
	BaseLegal string `json:"base_legal,omitempty"`
	Ativa     bool   `json:"ativa"`
}

type CriarNaturezaRequest struct {
	Rotulo    string `json:"rotulo"`
	Descricao string `json:"descricao"`
	Pontos    string `json:"pontos"`
	BaseLegal string `json:"base_legal"`
}

func toNaturezaDTO(n rai.Natureza) NaturezaDTO {
	return NaturezaDTO{
		ID:        n.ID,
		Rotulo:    n.Rotulo,
		Descricao: n.Descricao,
		Pontos:    n.Pontos.String(),
		BaseLegal: n.BaseLegal,
		Ativa:     n.Ativa,
	}
}

// =============================================================================
// DISPENSAS
// =============================================================================

type DispensaDTO struct {
	ID         string `json:"id"`
	Matricula  string `json:"matricula"`
	Nome       string `json:"nome"`
	Equipe     string `json:"equipe"`
	Tipo       string `json:"tipo"`
	Observacao string `json:"observacao,omitempty"`
	Custo      string `json:"custo,omitempty"` // points, single registration only
}

type RegistrarDispensaRequest struct {
	Matricula  string `json:"matricula"`
	Tipo       string `json:"tipo"`
	Observacao string `json:"observacao"`
}

type LinhaLoteDTO struct {
	Dia        string `json:"dia"`
	Matricula  string `json:"matricula"`
	Tipo       string `json:"tipo"`
	Observacao string `json:"observacao"`
}

type LoteRequest struct {
	Linhas []LinhaLoteDTO `json:"linhas"`
}

type ResultadoLinhaDTO struct {
	Dia       string `json:"dia"`
	Matricula string `json:"matricula"`
	Aplicada  bool   `json:"aplicada"`
	ID        string `json:"id,omitempty"`
	Motivo    string `json:"motivo,omitempty"`
}

type ResultadoLoteDTO struct {
	Aplicadas int                 `json:"aplicadas"`
	Total     int                 `json:"total"`
	Linhas    []ResultadoLinhaDTO `json:"linhas"`
}

type DiaDTO struct {
	Data      string        `json:"data"`
	Bloqueado bool          `json:"bloqueado"`
	Motivo    string        `json:"motivo_bloqueio,omitempty"`
	Registros []DispensaDTO `json:"registros"`
}

type BloquearRequest struct {
	Motivo string `json:"motivo"`
}

type BloqueioDTO struct {
	Data      string `json:"data"`
	Bloqueado bool   `json:"bloqueado"`
	Motivo    string `json:"motivo,omitempty"`
}

type ExcecaoRequest struct {
	Matricula  string `json:"matricula"`
	MesRef     string `json:"mes_ref"`
	NovoLimite int    `json:"novo_limite"`
}

func toDispensaDTO(r dispensa.Registro) DispensaDTO {
	return DispensaDTO{
		ID:         r.ID,
		Matricula:  r.Matricula,
		Nome:       r.Nome,
		Equipe:     string(r.Equipe),
		Tipo:       string(r.Tipo),
		Observacao: r.Observacao,
	}
}

// =============================================================================
// RAI
// =============================================================================

type SubmeterRAIRequest struct {
	Matricula  string `json:"matricula"`
	Numero     string `json:"numero"`
	Ocorrencia string `json:"ocorrencia"` // "YYYY-MM-DD"
	NaturezaID string `json:"natureza_id"`
	Observacao string `json:"observacao"`
}

type RegistroRAIDTO struct {
	ID          string    `json:"id"`
	Matricula   string    `json:"matricula"`
	Numero      string    `json:"numero"`
	Ocorrencia  string    `json:"ocorrencia"`
	NaturezaID  string    `json:"natureza_id,omitempty"`
	Pontos      string    `json:"pontos"`
	Status      string    `json:"status"`
	Observacao  string    `json:"observacao,omitempty"`
	SubmetidoEm time.Time `json:"submetido_em"`
}

func toRegistroRAIDTO(r rai.Registro) RegistroRAIDTO {
	return RegistroRAIDTO{
		ID:          r.ID,
		Matricula:   r.Matricula,
		Numero:      r.Numero,
		Ocorrencia:  r.Ocorrencia.String(),
		NaturezaID:  r.NaturezaID,
		Pontos:      r.Pontos.String(),
		Status:      string(r.Status),
		Observacao:  r.Observacao,
		SubmetidoEm: r.SubmetidoEm,
	}
}

// =============================================================================
// PONTOS
// =============================================================================

type LancamentoDTO struct {
	ID           string    `json:"id"`
	Delta        string    `json:"delta"`
	Tipo         string    `json:"tipo"`
	ReferenciaID string    `json:"referencia_id,omitempty"`
	Motivo       string    `json:"motivo,omitempty"`
	CriadoEm     time.Time `json:"criado_em"`
}

type ExtratoDTO struct {
	Matricula   string          `json:"matricula"`
	Saldo       string          `json:"saldo"`
	Lancamentos []LancamentoDTO `json:"lancamentos"`
}

type AjusteRequest struct {
	Matricula string `json:"matricula"`
	Delta     string `json:"delta"` // signed decimal, nonzero
	Motivo    string `json:"motivo"`
	ChaveIdem string `json:"chave_idem"`
}

func toLancamentoDTO(l pontos.Lancamento) LancamentoDTO {
	return LancamentoDTO{
		ID:           l.ID,
		Delta:        l.Delta.String(),
		Tipo:         string(l.Tipo),
		ReferenciaID: l.ReferenciaID,
		Motivo:       l.Motivo,
		CriadoEm:     l.CriadoEm,
	}
}

// =============================================================================
// CPC
// =============================================================================

type AbrirFilaRequest struct {
	Equipe     string `json:"equipe"`
	Criterio   string `json:"criterio"`
	PrazoHoras int    `json:"prazo_horas"`
}

type ItemFilaDTO struct {
	Posicao   int        `json:"posicao"`
	Matricula string     `json:"matricula"`
	Nome      string     `json:"nome"`
	Status    string     `json:"status"`
	PrazoAte  *time.Time `json:"prazo_ate,omitempty"`
}

type FilaDTO struct {
	Equipe     string        `json:"equipe"`
	Criterio   string        `json:"criterio"`
	PrazoHoras int           `json:"prazo_horas"`
	AbertaEm   time.Time     `json:"aberta_em"`
	Itens      []ItemFilaDTO `json:"itens"`
}

func toFilaDTO(f cpc.Fila) FilaDTO {
	dto := FilaDTO{
		Equipe:     string(f.Config.Equipe),
		Criterio:   string(f.Config.Criterio),
		PrazoHoras: f.Config.PrazoHoras,
		AbertaEm:   f.AbertaEm,
		Itens:      make([]ItemFilaDTO, 0, len(f.Itens)),
	}
	for _, it := range f.Itens {
		dto.Itens = append(dto.Itens, ItemFilaDTO{
			Posicao:   it.Posicao,
			Matricula: it.Matricula,
			Nome:      it.Nome,
			Status:    string(it.Status),
			PrazoAte:  it.PrazoAte,
		})
	}
	return dto
}
