/*
server.go - HTTP router and middleware configuration

ROUTER: chi. Middleware stack: RequestID, zerolog request logging,
Recoverer, CORS for the portal frontend.

ROUTE GROUPS:
  /api/escala/*      Duty cycle lookups
  /api/policiais/*   Personnel directory
  /api/naturezas/*   Occurrence category catalog
  /api/dispensas/*   Leave ledger (single, batch, clear)
  /api/bloqueios/*   Date blocks
  /api/excecoes      Monthly quota overrides
  /api/rai/*         Report submission, history, review
  /api/pontos/*      Balances and manual adjustments
  /api/cpc/*         Fairness queue
  /api/seed          Demo data loader (dev only)

SECURITY NOTE:
  No authentication middleware; the portal runs on a closed network
  behind the unit's proxy.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires all routes to the handler.
func NewRouter(h *Handler, allowOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(Logging)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/escala", func(r chi.Router) {
			r.Get("/{data}", h.EquipeDeServico)
			r.Get("/{data}/ordinaria", h.ServicoOrdinario)
		})

		r.Route("/policiais", func(r chi.Router) {
			r.Get("/", h.ListarPoliciais)
			r.Post("/", h.CadastrarPolicial)
			r.Get("/{matricula}", h.BuscarPolicial)
			r.Delete("/{matricula}", h.RemoverPolicial)
		})

		r.Route("/naturezas", func(r chi.Router) {
			r.Get("/", h.ListarNaturezas)
			r.Post("/", h.CriarNatureza)
			r.Post("/{id}/desativar", h.DesativarNatureza)
			r.Post("/{id}/reativar", h.ReativarNatureza)
		})

		r.Route("/dispensas", func(r chi.Router) {
			r.Post("/lote", h.RegistrarLote)
			r.Get("/{data}", h.ListarDispensas)
			r.Post("/{data}", h.RegistrarDispensa)
			r.Delete("/{data}", h.LimparDia)
			r.Delete("/{data}/{id}", h.RemoverDispensa)
		})

		r.Route("/bloqueios", func(r chi.Router) {
			r.Get("/{data}", h.ConsultarBloqueio)
			r.Put("/{data}", h.Bloquear)
			r.Delete("/{data}", h.Desbloquear)
		})

		r.Post("/excecoes", h.RegistrarExcecao)
		r.Get("/excecoes/{matricula}/{mes}", h.LimiteMensalDe)

		r.Route("/rai", func(r chi.Router) {
			r.Post("/", h.SubmeterRAI)
			r.Get("/{matricula}", h.HistoricoRAI)
			r.Post("/registro/{id}/aprovar", h.AprovarRAI)
			r.Post("/registro/{id}/rejeitar", h.RejeitarRAI)
		})

		r.Route("/pontos", func(r chi.Router) {
			r.Get("/{matricula}", h.ExtratoPontos)
			r.Post("/ajuste", h.AjustarPontos)
		})

		r.Route("/cpc", func(r chi.Router) {
			r.Get("/", h.FilaAtual)
			r.Post("/abrir", h.AbrirFila)
			r.Post("/avancar", h.AvancarFila)
			r.Post("/pular/{posicao}", h.PularPosicao)
			r.Post("/liberar/{posicao}", h.LiberarPosicao)
			r.Get("/posicao/{matricula}", h.MinhaPosicao)
			r.Delete("/", h.FecharFila)
		})

		r.Post("/seed", h.CarregarSeed)
	})

	return r
}
