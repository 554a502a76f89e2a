package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"actionScope/internal/model"
	"actionScope/internal/numeric"
)

func readLines(t *testing.T, path string) [][]byte {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, append([]byte{}, scanner.Bytes()...))
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestJsonlStorageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "actions.jsonl")
	sink := NewJsonlStorage(path)

	transfer := model.Action{
		Kind:         model.KindTransfer,
		Protocol:     "ERC20",
		Function:     "transfer",
		BlockNumber:  7,
		TraceAddress: []uint64{0},
		Transfer: &model.Transfer{
			Token:  common.HexToAddress("0x01"),
			From:   common.HexToAddress("0x02"),
			To:     common.HexToAddress("0x03"),
			Amount: numeric.U256FromUint64(10),
		},
	}
	require.NoError(t, sink.PutActionBatch(context.Background(), []model.Action{transfer}))
	require.NoError(t, sink.PutActionBatch(context.Background(), nil))
	require.NoError(t, sink.PutActionBatch(context.Background(), []model.Action{{Kind: model.KindUnclassified, Unclassified: &model.Unclassified{Reason: model.ReasonNoMatch}}}))

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	var got model.Action
	require.NoError(t, json.Unmarshal(lines[0], &got))
	require.Equal(t, model.KindTransfer, got.Kind)
	require.True(t, got.Transfer.Amount.Eq(numeric.U256FromUint64(10)))

	require.NoError(t, json.Unmarshal(lines[1], &got))
	require.Equal(t, model.KindUnclassified, got.Kind)
}

func TestJsonlStorageDecodeErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.jsonl")
	sink := NewJsonlStorage(path)
	require.NoError(t, sink.PutDecodeErrors(context.Background(), []model.DecodeError{{Line: 3, Input: "{", Error: "unexpected end"}}))

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	require.Contains(t, string(lines[0]), `"line":3`)
}

type recordingSink struct {
	batches int
	err     error
}

func (r *recordingSink) PutActionBatch(context.Context, []model.Action) error {
	r.batches++
	return r.err
}

func TestMultiStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	first := &recordingSink{err: boom}
	second := &recordingSink{}

	err := Multi{first, second}.PutActionBatch(context.Background(), []model.Action{{}})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, first.batches)
	require.Zero(t, second.batches)
}
