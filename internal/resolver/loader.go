package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"actionScope/internal/model"
	"actionScope/internal/registry"
)

// LoadDir reads every <address>.json file in dir as the ABI document of that address.
// Files whose base name is not an address are skipped. A missing dir yields no documents.
func LoadDir(dir string, logger *zap.Logger) ([]Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("abi dir not found", zap.String("dir", dir))
			return nil, nil
		}
		return nil, fmt.Errorf("read abi dir: %w", err)
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if !common.IsHexAddress(base) {
			logger.Debug("skip abi file without address name", zap.String("file", entry.Name()))
			continue
		}
		files[base] = filepath.Join(dir, entry.Name())
	}
	return LoadFiles(files)
}

// LoadFiles reads an explicit address -> ABI file mapping.
func LoadFiles(files map[string]string) ([]Document, error) {
	addresses := make([]string, 0, len(files))
	for address := range files {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	docs := make([]Document, 0, len(files))
	for _, address := range addresses {
		path := files[address]
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid abi address: %s", address)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read abi %s: %w", path, err)
		}
		addr := common.HexToAddress(address)
		iface, err := registry.ParseInterface(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Address: addr, Interface: iface})
	}
	return docs, nil
}

// FromContractABIs converts stored ABI rows into documents.
func FromContractABIs(rows []model.ContractABI) ([]Document, error) {
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		if !common.IsHexAddress(row.Address) {
			return nil, fmt.Errorf("invalid abi address: %s", row.Address)
		}
		addr := common.HexToAddress(row.Address)
		name := row.Name
		if name == "" {
			name = addr.Hex()
		}
		iface, err := registry.ParseInterface(name, []byte(row.ABI))
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Address: addr, Interface: iface})
	}
	return docs, nil
}
