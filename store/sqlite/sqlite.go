/*
Package sqlite provides the SQLite-backed implementation of every
storage interface in the administrative core.

INTERFACES IMPLEMENTED:
  pontos.Store:        Append-only point ledger entries
  dispensa.Store:      Date-keyed leave entries, blocks, quota exceptions
  rai.RegistroStore:   Submitted RAI records
  rai.CatalogoStore:   Natureza catalog
  efetivo.Store:       Personnel directory
  cpc.Store:           Open-queue snapshot (single row, JSON)

APPEND-ONLY ENFORCEMENT:
  The lancamentos table has no UPDATE or DELETE path; the idempotency
  key carries a UNIQUE constraint, so a retried write fails at the
  database even if the in-process check raced.

KEY TABLES:
  lancamentos:   point ledger (append-only)
  dispensas:     leave entries keyed by day
  bloqueios:     blocked days with reason
  excecoes:      monthly quota overrides
  rai_registros: RAI submissions (UNIQUE matricula+numero)
  naturezas:     occurrence category catalog
  policiais:     personnel directory
  cpc_fila:      queue snapshot, one JSON row

WAL MODE:
  Opened with WAL and foreign keys on, same as any deployment of this
  store. Use ":memory:" for tests.

SEE ALSO:
  - the in-memory implementations inside each domain package
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/fagynapp/rai-envios-sub000/calendario"
	"github.com/fagynapp/rai-envios-sub000/cpc"
	"github.com/fagynapp/rai-envios-sub000/dispensa"
	"github.com/fagynapp/rai-envios-sub000/efetivo"
	"github.com/fagynapp/rai-envios-sub000/escala"
	"github.com/fagynapp/rai-envios-sub000/pontos"
	"github.com/fagynapp/rai-envios-sub000/rai"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Point ledger (append-only)
	CREATE TABLE IF NOT EXISTS lancamentos (
		id TEXT PRIMARY KEY,
		matricula TEXT NOT NULL,
		delta TEXT NOT NULL,
		tipo TEXT NOT NULL,
		referencia_id TEXT,
		motivo TEXT,
		chave_idem TEXT UNIQUE,
		criado_em TEXT NOT NULL,
		seq INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_lancamentos_matricula
		ON lancamentos(matricula);

	-- Leave entries, one row per grant, keyed by day
	CREATE TABLE IF NOT EXISTS dispensas (
		id TEXT PRIMARY KEY,
		dia TEXT NOT NULL,
		matricula TEXT NOT NULL,
		nome TEXT NOT NULL,
		equipe TEXT,
		tipo TEXT NOT NULL,
		observacao TEXT,
		seq INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_dispensas_dia
		ON dispensas(dia);

	-- Blocked days
	CREATE TABLE IF NOT EXISTS bloqueios (
		dia TEXT PRIMARY KEY,
		motivo TEXT NOT NULL
	);

	-- Monthly quota overrides
	CREATE TABLE IF NOT EXISTS excecoes (
		matricula TEXT NOT NULL,
		mes_ref TEXT NOT NULL,
		novo_limite INTEGER NOT NULL,
		PRIMARY KEY (matricula, mes_ref)
	);

	-- RAI submissions
	CREATE TABLE IF NOT EXISTS rai_registros (
		id TEXT PRIMARY KEY,
		matricula TEXT NOT NULL,
		numero TEXT NOT NULL,
		ocorrencia TEXT NOT NULL,
		natureza_id TEXT,
		pontos TEXT NOT NULL,
		status TEXT NOT NULL,
		observacao TEXT,
		submetido_em TEXT NOT NULL,
		seq INTEGER
	);

	-- Uniqueness is per submitter, not global
	CREATE UNIQUE INDEX IF NOT EXISTS idx_rai_matricula_numero
		ON rai_registros(matricula, numero);
	CREATE INDEX IF NOT EXISTS idx_rai_matricula
		ON rai_registros(matricula);

	-- Natureza catalog
	CREATE TABLE IF NOT EXISTS naturezas (
		id TEXT PRIMARY KEY,
		rotulo TEXT NOT NULL,
		descricao TEXT,
		pontos TEXT NOT NULL,
		base_legal TEXT,
		ativa INTEGER NOT NULL DEFAULT 1
	);

	-- Personnel directory
	CREATE TABLE IF NOT EXISTS policiais (
		matricula TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		nome TEXT NOT NULL,
		equipe TEXT,
		telefone TEXT,
		email TEXT,
		antiguidade INTEGER DEFAULT 0
	);

	-- CPC queue snapshot (single row)
	CREATE TABLE IF NOT EXISTS cpc_fila (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		snapshot_json TEXT NOT NULL,
		salvo_em TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// POINT LEDGER (pontos.Store)
// =============================================================================

func (s *Store) AppendLancamento(ctx context.Context, l pontos.Lancamento) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO lancamentos
		(id, matricula, delta, tipo, referencia_id, motivo, chave_idem, criado_em, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM lancamentos))
	`
	_, err := s.db.ExecContext(ctx, query,
		l.ID,
		l.Matricula,
		l.Delta.String(),
		l.Tipo,
		l.ReferenciaID,
		l.Motivo,
		nullString(l.ChaveIdem),
		l.CriadoEm.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return pontos.ErrChaveIdemDuplicada
		}
		return fmt.Errorf("failed to append lancamento: %w", err)
	}
	return nil
}

func (s *Store) LoadLancamentos(ctx context.Context, matricula string) ([]pontos.Lancamento, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, matricula, delta, tipo, referencia_id, motivo, chave_idem, criado_em
		FROM lancamentos
		WHERE matricula = ?
		ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, matricula)
	if err != nil {
		return nil, fmt.Errorf("failed to query lancamentos: %w", err)
	}
	defer rows.Close()

	var out []pontos.Lancamento
	for rows.Next() {
		var (
			l         pontos.Lancamento
			delta     string
			chave     sql.NullString
			criadoEm  string
		)
		if err := rows.Scan(&l.ID, &l.Matricula, &delta, &l.Tipo, &l.ReferenciaID, &l.Motivo, &chave, &criadoEm); err != nil {
			return nil, err
		}
		l.Delta, err = decimal.NewFromString(delta)
		if err != nil {
			return nil, fmt.Errorf("corrupt delta %q: %w", delta, err)
		}
		l.ChaveIdem = chave.String
		l.CriadoEm, _ = time.Parse(time.RFC3339Nano, criadoEm)
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) ExistsChaveIdem(ctx context.Context, chave string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lancamentos WHERE chave_idem = ?", chave,
	).Scan(&count)
	return count > 0, err
}

// =============================================================================
// LEAVE LEDGER (dispensa.Store)
// =============================================================================

func (s *Store) SaveDispensa(ctx context.Context, dia calendario.Dia, r dispensa.Registro) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO dispensas (id, dia, matricula, nome, equipe, tipo, observacao, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM dispensas))
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, dia.String(), r.Matricula, r.Nome, string(r.Equipe), r.Tipo, r.Observacao)
	if err != nil {
		return fmt.Errorf("failed to save dispensa: %w", err)
	}
	return nil
}

func (s *Store) DeleteDispensa(ctx context.Context, dia calendario.Dia, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM dispensas WHERE dia = ? AND id = ?", dia.String(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) ListDispensas(ctx context.Context, dia calendario.Dia) ([]dispensa.Registro, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, matricula, nome, equipe, tipo, observacao
		FROM dispensas WHERE dia = ? ORDER BY seq ASC
	`
	rows, err := s.db.QueryContext(ctx, query, dia.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query dispensas: %w", err)
	}
	defer rows.Close()

	var out []dispensa.Registro
	for rows.Next() {
		var (
			r      dispensa.Registro
			equipe string
		)
		if err := rows.Scan(&r.ID, &r.Matricula, &r.Nome, &equipe, &r.Tipo, &r.Observacao); err != nil {
			return nil, err
		}
		r.Equipe = escala.Equipe(equipe)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ClearDispensas(ctx context.Context, dia calendario.Dia) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM dispensas WHERE dia = ?", dia.String())
	return err
}

func (s *Store) SetBloqueio(ctx context.Context, dia calendario.Dia, motivo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bloqueios (dia, motivo) VALUES (?, ?)
		ON CONFLICT(dia) DO UPDATE SET motivo = excluded.motivo
	`, dia.String(), motivo)
	return err
}

func (s *Store) DeleteBloqueio(ctx context.Context, dia calendario.Dia) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM bloqueios WHERE dia = ?", dia.String())
	return err
}

func (s *Store) GetBloqueio(ctx context.Context, dia calendario.Dia) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var motivo string
	err := s.db.QueryRowContext(ctx,
		"SELECT motivo FROM bloqueios WHERE dia = ?", dia.String(),
	).Scan(&motivo)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return motivo, true, nil
}

func (s *Store) SaveExcecao(ctx context.Context, e dispensa.Excecao) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO excecoes (matricula, mes_ref, novo_limite) VALUES (?, ?, ?)
		ON CONFLICT(matricula, mes_ref) DO UPDATE SET novo_limite = excluded.novo_limite
	`, e.Matricula, e.MesRef, e.NovoLimite)
	return err
}

func (s *Store) ListExcecoes(ctx context.Context, mesRef string) ([]dispensa.Excecao, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT matricula, mes_ref, novo_limite FROM excecoes WHERE mes_ref = ?", mesRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dispensa.Excecao
	for rows.Next() {
		var e dispensa.Excecao
		if err := rows.Scan(&e.Matricula, &e.MesRef, &e.NovoLimite); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// RAI RECORDS (rai.RegistroStore)
// =============================================================================

func (s *Store) SaveRegistro(ctx context.Context, r rai.Registro) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rai_registros
		(id, matricula, numero, ocorrencia, natureza_id, pontos, status, observacao, submetido_em, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM rai_registros))
		ON CONFLICT(id) DO UPDATE SET status = excluded.status
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID,
		r.Matricula,
		r.Numero,
		r.Ocorrencia.String(),
		r.NaturezaID,
		r.Pontos.String(),
		r.Status,
		r.Observacao,
		r.SubmetidoEm.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		// The in-process duplicate scan can race; the
		// matricula+numero index is the backstop.
		if isUniqueConstraintError(err) {
			return fmt.Errorf("rai %s da matricula %s: %w", r.Numero, r.Matricula, rai.ErrSubmissaoDuplicada)
		}
		return fmt.Errorf("failed to save rai registro: %w", err)
	}
	return nil
}

func (s *Store) GetRegistro(ctx context.Context, id string) (rai.Registro, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, matricula, numero, ocorrencia, natureza_id, pontos, status, observacao, submetido_em
		FROM rai_registros WHERE id = ?
	`, id)

	r, err := scanRegistro(row)
	if err == sql.ErrNoRows {
		return rai.Registro{}, false, nil
	}
	if err != nil {
		return rai.Registro{}, false, err
	}
	return r, true, nil
}

func (s *Store) ListRegistros(ctx context.Context, matricula string) ([]rai.Registro, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, matricula, numero, ocorrencia, natureza_id, pontos, status, observacao, submetido_em
		FROM rai_registros WHERE matricula = ? ORDER BY seq ASC
	`, matricula)
	if err != nil {
		return nil, fmt.Errorf("failed to query rai registros: %w", err)
	}
	defer rows.Close()

	var out []rai.Registro
	for rows.Next() {
		r, err := scanRegistro(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRegistro(row scanner) (rai.Registro, error) {
	var (
		r           rai.Registro
		ocorrencia  string
		valor       string
		submetidoEm string
	)
	err := row.Scan(&r.ID, &r.Matricula, &r.Numero, &ocorrencia, &r.NaturezaID,
		&valor, &r.Status, &r.Observacao, &submetidoEm)
	if err != nil {
		return rai.Registro{}, err
	}
	if r.Ocorrencia, err = calendario.ParseDia(ocorrencia); err != nil {
		return rai.Registro{}, fmt.Errorf("corrupt ocorrencia %q: %w", ocorrencia, err)
	}
	if r.Pontos, err = decimal.NewFromString(valor); err != nil {
		return rai.Registro{}, fmt.Errorf("corrupt pontos %q: %w", valor, err)
	}
	r.SubmetidoEm, _ = time.Parse(time.RFC3339Nano, submetidoEm)
	return r, nil
}

// =============================================================================
// NATUREZA CATALOG (rai.CatalogoStore)
// =============================================================================

func (s *Store) SaveNatureza(ctx context.Context, n rai.Natureza) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO naturezas (id, rotulo, descricao, pontos, base_legal, ativa)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			rotulo = excluded.rotulo,
			descricao = excluded.descricao,
			pontos = excluded.pontos,
			base_legal = excluded.base_legal,
			ativa = excluded.ativa
	`, n.ID, n.Rotulo, n.Descricao, n.Pontos.String(), n.BaseLegal, boolToInt(n.Ativa))
	return err
}

func (s *Store) GetNatureza(ctx context.Context, id string) (rai.Natureza, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		n      rai.Natureza
		valor  string
		ativa  int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, rotulo, descricao, pontos, base_legal, ativa FROM naturezas WHERE id = ?
	`, id).Scan(&n.ID, &n.Rotulo, &n.Descricao, &valor, &n.BaseLegal, &ativa)
	if err == sql.ErrNoRows {
		return rai.Natureza{}, false, nil
	}
	if err != nil {
		return rai.Natureza{}, false, err
	}
	if n.Pontos, err = decimal.NewFromString(valor); err != nil {
		return rai.Natureza{}, false, fmt.Errorf("corrupt pontos %q: %w", valor, err)
	}
	n.Ativa = ativa != 0
	return n, true, nil
}

func (s *Store) ListNaturezas(ctx context.Context) ([]rai.Natureza, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, rotulo, descricao, pontos, base_legal, ativa FROM naturezas")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rai.Natureza
	for rows.Next() {
		var (
			n     rai.Natureza
			valor string
			ativa int
		)
		if err := rows.Scan(&n.ID, &n.Rotulo, &n.Descricao, &valor, &n.BaseLegal, &ativa); err != nil {
			return nil, err
		}
		if n.Pontos, err = decimal.NewFromString(valor); err != nil {
			return nil, fmt.Errorf("corrupt pontos %q: %w", valor, err)
		}
		n.Ativa = ativa != 0
		out = append(out, n)
	}
	return out, rows.Err()
}

// =============================================================================
// PERSONNEL (efetivo.Store)
// =============================================================================

func (s *Store) SavePolicial(ctx context.Context, p efetivo.Policial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policiais (matricula, id, nome, equipe, telefone, email, antiguidade)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(matricula) DO UPDATE SET
			nome = excluded.nome,
			equipe = excluded.equipe,
			telefone = excluded.telefone,
			email = excluded.email,
			antiguidade = excluded.antiguidade
	`, p.Matricula, p.ID, p.Nome, string(p.Equipe), p.Telefone, p.Email, p.Antiguidade)
	return err
}

func (s *Store) DeletePolicial(ctx context.Context, matricula string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM policiais WHERE matricula = ?", matricula)
	return err
}

func (s *Store) GetPolicial(ctx context.Context, matricula string) (efetivo.Policial, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		p      efetivo.Policial
		equipe string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT matricula, id, nome, equipe, telefone, email, antiguidade
		FROM policiais WHERE matricula = ?
	`, matricula).Scan(&p.Matricula, &p.ID, &p.Nome, &equipe, &p.Telefone, &p.Email, &p.Antiguidade)
	if err == sql.ErrNoRows {
		return efetivo.Policial{}, false, nil
	}
	if err != nil {
		return efetivo.Policial{}, false, err
	}
	p.Equipe = escala.Equipe(equipe)
	return p, true, nil
}

func (s *Store) ListPoliciais(ctx context.Context) ([]efetivo.Policial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT matricula, id, nome, equipe, telefone, email, antiguidade FROM policiais")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []efetivo.Policial
	for rows.Next() {
		var (
			p      efetivo.Policial
			equipe string
		)
		if err := rows.Scan(&p.Matricula, &p.ID, &p.Nome, &equipe, &p.Telefone, &p.Email, &p.Antiguidade); err != nil {
			return nil, err
		}
		p.Equipe = escala.Equipe(equipe)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// CPC QUEUE SNAPSHOT (cpc.Store)
// =============================================================================

func (s *Store) SaveFila(ctx context.Context, fila cpc.Fila) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := json.Marshal(fila)
	if err != nil {
		return fmt.Errorf("failed to marshal fila: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cpc_fila (id, snapshot_json, salvo_em) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			snapshot_json = excluded.snapshot_json,
			salvo_em = excluded.salvo_em
	`, string(blob), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) LoadFila(ctx context.Context) (cpc.Fila, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob string
	err := s.db.QueryRowContext(ctx,
		"SELECT snapshot_json FROM cpc_fila WHERE id = 1").Scan(&blob)
	if err == sql.ErrNoRows {
		return cpc.Fila{}, false, nil
	}
	if err != nil {
		return cpc.Fila{}, false, err
	}
	var fila cpc.Fila
	if err := json.Unmarshal([]byte(blob), &fila); err != nil {
		return cpc.Fila{}, false, fmt.Errorf("corrupt fila snapshot: %w", err)
	}
	return fila, true, nil
}

func (s *Store) ClearFila(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM cpc_fila WHERE id = 1")
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
