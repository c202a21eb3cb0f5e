/*
seed.go - Demo data loader

Loads a small but representative unit so the frontend has something to
show on a fresh database: four teams of officers with almanaque
positions and a starter natureza catalog. Idempotent on matrículas and
natureza labels: already-known records are skipped.
*/
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/fagynapp/rai-envios-sub000/efetivo"
	"github.com/fagynapp/rai-envios-sub000/escala"
	"github.com/fagynapp/rai-envios-sub000/rai"
)

var seedPoliciais = []efetivo.Policial{
	{Nome: "Sgt. Almeida", Matricula: "102030", Equipe: escala.EquipeAlfa, Antiguidade: 1},
	{Nome: "Cb. Barros", Matricula: "102031", Equipe: escala.EquipeAlfa, Antiguidade: 5},
	{Nome: "Sd. Cardoso", Matricula: "102032", Equipe: escala.EquipeAlfa, Antiguidade: 9},
	{Nome: "Sgt. Duarte", Matricula: "204050", Equipe: escala.EquipeBravo, Antiguidade: 2},
	{Nome: "Cb. Esteves", Matricula: "204051", Equipe: escala.EquipeBravo, Antiguidade: 6},
	{Nome: "Sd. Farias", Matricula: "204052", Equipe: escala.EquipeBravo, Antiguidade: 10},
	{Nome: "Sgt. Gomes", Matricula: "306070", Equipe: escala.EquipeCharlie, Antiguidade: 3},
	{Nome: "Cb. Kubo", Matricula: "306071", Equipe: escala.EquipeCharlie, Antiguidade: 7},
	{Nome: "Sgt. Lima", Matricula: "408090", Equipe: escala.EquipeDelta, Antiguidade: 4},
	{Nome: "Sd. Moreira", Matricula: "408091", Equipe: escala.EquipeDelta, Antiguidade: 8},
}

var seedNaturezas = []rai.Natureza{
	{Rotulo: "Trafico de entorpecentes", Pontos: decimal.NewFromInt(30), BaseLegal: "Lei 11.343/06, art. 33", Ativa: true},
	{Rotulo: "Porte ilegal de arma", Pontos: decimal.NewFromInt(25), BaseLegal: "Lei 10.826/03, art. 14", Ativa: true},
	{Rotulo: "Recuperacao de veiculo", Pontos: decimal.NewFromInt(20), Ativa: true},
	{Rotulo: "Foragido capturado", Pontos: decimal.NewFromInt(25), Ativa: true},
	{Rotulo: "Termo circunstanciado", Pontos: decimal.NewFromInt(10), Ativa: true},
}

// CarregarSeed loads the demo unit.
// POST /api/seed
func (h *Handler) CarregarSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	policiais := 0
	for _, p := range seedPoliciais {
		if _, err := h.Diretorio.Cadastrar(ctx, p); err != nil {
			if errors.Is(err, efetivo.ErrMatriculaDuplicada) {
				continue
			}
			writeError(w, http.StatusInternalServerError, "Falha ao carregar efetivo", err)
			return
		}
		policiais++
	}

	naturezas, err := h.seedCatalogo(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Falha ao carregar naturezas", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"policiais": policiais,
		"naturezas": naturezas,
	})
}

func (h *Handler) seedCatalogo(ctx context.Context) (int, error) {
	existentes, err := h.Catalogo.Listar(ctx, false)
	if err != nil {
		return 0, err
	}
	rotulos := make(map[string]bool, len(existentes))
	for _, n := range existentes {
		rotulos[n.Rotulo] = true
	}

	criadas := 0
	for _, n := range seedNaturezas {
		if rotulos[n.Rotulo] {
			continue
		}
		if _, err := h.Catalogo.Criar(ctx, n); err != nil {
			return criadas, err
		}
		criadas++
	}
	return criadas, nil
}
