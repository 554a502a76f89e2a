package main

import (
	"bufio"
	"context"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"actionScope/internal/classify"
	"actionScope/internal/model"
	"actionScope/internal/registry"
)

func transferLine(t *testing.T, amount int64) string {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	iface, _ := reg.Interface(registry.ERC20)
	schema, _ := iface.Function("transfer")
	packed, err := schema.Method.Inputs.Pack(common.HexToAddress("0x02"), big.NewInt(amount))
	require.NoError(t, err)

	trace := model.CallTrace{
		Type:  model.TraceTypeCall,
		From:  common.HexToAddress("0x01"),
		To:    common.HexToAddress("0x03"),
		Input: append(hexutil.Bytes(schema.Selector[:]), packed...),
	}
	line, err := json.Marshal(trace)
	require.NoError(t, err)
	return string(line)
}

func readActions(t *testing.T, path string) []model.Action {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var out []model.Action
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var action model.Action
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &action))
		out = append(out, action)
	}
	return out
}

func TestClassifyStream(t *testing.T) {
	reg, err := registry.Default()
	require.NoError(t, err)
	classifier, err := classify.New(reg, nil)
	require.NoError(t, err)

	input := strings.Join([]string{
		transferLine(t, 1),
		`{"type":"call","input":"0x12"}`,
		"{broken",
		"",
		transferLine(t, 3),
	}, "\n")

	dir := t.TempDir()
	out, err := newJSONLWriter(filepath.Join(dir, "actions.jsonl"), false)
	require.NoError(t, err)
	errs, err := newJSONLWriter(filepath.Join(dir, "errors.jsonl"), false)
	require.NoError(t, err)

	stats, err := classifyStream(context.Background(), classifier, strings.NewReader(input), out, errs, 2)
	require.NoError(t, err)
	require.NoError(t, out.Close())
	require.NoError(t, errs.Close())

	require.Equal(t, classifyStats{total: 4, classified: 2, unclassified: 1, failed: 1}, stats)

	actions := readActions(t, filepath.Join(dir, "actions.jsonl"))
	require.Len(t, actions, 3)
	require.Equal(t, model.KindTransfer, actions[0].Kind)
	require.Equal(t, model.ReasonShortPayload, actions[1].Unclassified.Reason)
	require.Equal(t, "3", actions[2].Transfer.Amount.String())

	data, err := os.ReadFile(filepath.Join(dir, "errors.jsonl"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"line":3`)
}

func TestJSONLWriterCloseReportsFlushError(t *testing.T) {
	w, err := newJSONLWriter(filepath.Join(t.TempDir(), "actions.jsonl"), false)
	require.NoError(t, err)
	require.NoError(t, w.Write(map[string]int{"n": 1}))

	// The line is still buffered, so the flush hits the closed file.
	require.NoError(t, w.file.Close())
	require.Error(t, w.Close())
	require.NoError(t, w.Close())
}

func TestJSONLWriterCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.jsonl")
	w, err := newJSONLWriter(path, false)
	require.NoError(t, err)
	require.NoError(t, w.Write(map[string]int{"n": 1}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\"n\":1}\n", string(data))
}
