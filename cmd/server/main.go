/*
main.go - Application entry point

STARTUP SEQUENCE:
  1. Load configuration from the environment (.env honored)
  2. Open the SQLite store
  3. Build the rotation, engines and ledgers
  4. Restore a persisted CPC queue snapshot, when one exists
  5. Start the HTTP server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database

ENVIRONMENT:
  PORT, DB_PATH, ALLOW_ORIGINS, ESCALA_EPOCA, ESCALA_ORDEM,
  RAI_JANELA_DIAS, RAI_TAMANHO_NUMERO, LIMITE_MENSAL_PADRAO
  (see config.Load for the defaults)

SEE ALSO:
  - api/server.go: routes and middleware
  - store/sqlite/sqlite.go: persistence
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fagynapp/rai-envios-sub000/api"
	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/config"
	"github.com/fagynapp/rai-envios-sub000/cpc"
	"github.com/fagynapp/rai-envios-sub000/dispensa"
	"github.com/fagynapp/rai-envios-sub000/efetivo"
	"github.com/fagynapp/rai-envios-sub000/pontos"
	"github.com/fagynapp/rai-envios-sub000/rai"
	"github.com/fagynapp/rai-envios-sub000/store/sqlite"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuracao invalida")
	}

	ciclo, err := cfg.Ciclo()
	if err != nil {
		log.Fatal().Err(err).Msg("escala invalida")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("falha ao abrir o banco")
	}
	defer store.Close()

	diretorio := efetivo.NovoDiretorio(store)
	saldos := pontos.NovoLedger(store)
	catalogo := rai.NovoCatalogo(store)
	engine := rai.NovaEngine(store, catalogo, saldos).
		ComJanela(cfg.RAIJanelaDias).
		ComTamanhoNumero(cfg.RAITamanhoNumero)
	fila := cpc.NovoGerenciador()

	// A queue snapshot survives restarts; reinstate it before serving.
	if snapshot, ok, err := store.LoadFila(context.Background()); err != nil {
		log.Warn().Err(err).Msg("falha ao restaurar a fila cpc")
	} else if ok {
		fila.Restaurar(snapshot)
		log.Info().Int("itens", len(snapshot.Itens)).Msg("fila cpc restaurada")
	}

	handler := &api.Handler{
		Ciclo:        ciclo,
		Diretorio:    diretorio,
		Dispensas:    dispensa.NovoLedger(store, diretorio),
		Catalogo:     catalogo,
		Engine:       engine,
		Pontos:       saldos,
		Fila:         fila,
		FilaStore:    store,
		Custos:       dispensa.TabelaPadrao(),
		Feriados:     calendario.SemFeriados{},
		LimiteMensal: cfg.LimiteMensalPadrao,
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler, cfg.AllowOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("porta", cfg.Port).Msg("servidor iniciado")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("servidor encerrou com erro")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("encerrando servidor")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("encerramento forcado")
	}

	log.Info().Msg("servidor encerrado")
}
