// Package config centraliza a configuração carregada do ambiente.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/escala"
	"github.com/fagynapp/rai-envios-sub000/rai"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port         int
	DBPath       string
	AllowOrigins []string

	// Duty rotation
	EscalaEpoca calendario.Dia
	EscalaOrdem [escala.TamanhoCiclo]escala.Equipe

	// RAI submission rules
	RAIJanelaDias    int
	RAITamanhoNumero int

	// Default monthly leave quota (overridable per officer via excecoes)
	LimiteMensalPadrao int
}

// Load reads the environment (and an optional .env file) applying the
// unit defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := intEnv("PORT", 8080)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT invalida")
	}
	cfg.Port = port

	cfg.DBPath = getEnv("DB_PATH", "portal.db")

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", "http://localhost:5173"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	epoca, err := calendario.ParseDia(getEnv("ESCALA_EPOCA", "2026-01-01"))
	if err != nil {
		return nil, fmt.Errorf("ESCALA_EPOCA: %w", err)
	}
	cfg.EscalaEpoca = epoca

	ordem := strings.Split(getEnv("ESCALA_ORDEM", "DELTA,ALFA,BRAVO,CHARLIE"), ",")
	if len(ordem) != escala.TamanhoCiclo {
		return nil, fmt.Errorf("ESCALA_ORDEM deve ter %d equipes", escala.TamanhoCiclo)
	}
	for i, s := range ordem {
		eq, err := escala.ParseEquipe(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("ESCALA_ORDEM: %w", err)
		}
		cfg.EscalaOrdem[i] = eq
	}

	if cfg.RAIJanelaDias, err = intEnv("RAI_JANELA_DIAS", rai.JanelaPadraoDias); err != nil {
		return nil, err
	}
	if cfg.RAITamanhoNumero, err = intEnv("RAI_TAMANHO_NUMERO", rai.TamanhoNumero); err != nil {
		return nil, err
	}
	if cfg.LimiteMensalPadrao, err = intEnv("LIMITE_MENSAL_PADRAO", 2); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Ciclo builds the validated rotation from the loaded values.
func (c *Config) Ciclo() (*escala.Ciclo, error) {
	return escala.NovoCiclo(c.EscalaEpoca, c.EscalaOrdem)
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.New(key + " invalido")
	}
	return n, nil
}
