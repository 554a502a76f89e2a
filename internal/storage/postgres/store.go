package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"actionScope/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for actions, ABI documents and progress state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// PutActionBatch implements storage.Storage.
func (s *Store) PutActionBatch(ctx context.Context, actions []model.Action) error {
	return s.UpsertActions(ctx, actions)
}

// UpsertActions inserts or replaces actions keyed by their trace position.
func (s *Store) UpsertActions(ctx context.Context, actions []model.Action) error {
	if len(actions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range actions {
		action := &actions[i]
		payload, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("marshal action: %w", err)
		}
		var reason *string
		if action.Unclassified != nil {
			reason = &action.Unclassified.Reason
		}
		batch.Queue(`
			INSERT INTO actions (
				block_number, tx_hash, tx_position, trace_address, kind, protocol, function_name, reason, payload, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
			ON CONFLICT (block_number, tx_hash, trace_address)
			DO UPDATE SET
				tx_position = EXCLUDED.tx_position,
				kind = EXCLUDED.kind,
				protocol = EXCLUDED.protocol,
				function_name = EXCLUDED.function_name,
				reason = EXCLUDED.reason,
				payload = EXCLUDED.payload,
				updated_at = now()
		`,
			int64(action.BlockNumber),
			action.TxHash.Hex(),
			int64(action.TxPosition),
			TraceAddressKey(action.TraceAddress),
			string(action.Kind),
			action.Protocol,
			action.Function,
			reason,
			string(payload),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range actions {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadContractABIs returns every stored ABI document.
func (s *Store) LoadContractABIs(ctx context.Context) ([]model.ContractABI, error) {
	rows, err := s.pool.Query(ctx, `SELECT address, name, abi FROM contract_abis ORDER BY address`)
	if err != nil {
		return nil, fmt.Errorf("query contract abis: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ContractABI, error) {
		var rec model.ContractABI
		err := row.Scan(&rec.Address, &rec.Name, &rec.ABI)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan contract abis: %w", err)
	}
	return out, nil
}

// SaveContractABI stores or replaces the ABI document of one address.
func (s *Store) SaveContractABI(ctx context.Context, rec model.ContractABI) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contract_abis (address, name, abi, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (address) DO UPDATE
		SET name = EXCLUDED.name, abi = EXCLUDED.abi
	`, strings.ToLower(rec.Address), rec.Name, rec.ABI)
	return err
}

// UpsertFlowWindows inserts or updates token flow windows.
func (s *Store) UpsertFlowWindows(ctx context.Context, windows []model.TokenFlowWindow) error {
	if len(windows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, w := range windows {
		batch.Queue(`
			INSERT INTO token_flow_windows (
				token, window_size_blocks, window_start_block, window_end_block, symbol, decimals,
				transfer_count, deposit_count, withdrawal_count,
				transfer_volume, deposit_volume, withdrawal_volume,
				first_block, last_block, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
			ON CONFLICT (token, window_size_blocks, window_start_block)
			DO UPDATE SET
				window_end_block = EXCLUDED.window_end_block,
				symbol = EXCLUDED.symbol,
				decimals = EXCLUDED.decimals,
				transfer_count = EXCLUDED.transfer_count,
				deposit_count = EXCLUDED.deposit_count,
				withdrawal_count = EXCLUDED.withdrawal_count,
				transfer_volume = EXCLUDED.transfer_volume,
				deposit_volume = EXCLUDED.deposit_volume,
				withdrawal_volume = EXCLUDED.withdrawal_volume,
				first_block = EXCLUDED.first_block,
				last_block = EXCLUDED.last_block,
				updated_at = now()
		`,
			w.Token,
			int64(w.WindowSizeBlocks),
			int64(w.WindowStart),
			int64(w.WindowEnd),
			w.Symbol,
			int16(w.Decimals),
			int64(w.TransferCount),
			int64(w.DepositCount),
			int64(w.WithdrawalCount),
			w.TransferVolume,
			w.DepositVolume,
			w.WithdrawalVolume,
			int64(w.FirstBlock),
			int64(w.LastBlock),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range windows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}

// TraceAddressKey renders a trace address as a dotted path; the root call is "".
func TraceAddressKey(path []uint64) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.FormatUint(p, 10)
	}
	return strings.Join(parts, ".")
}
