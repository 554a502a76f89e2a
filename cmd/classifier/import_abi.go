package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"actionScope/internal/config"
	"actionScope/internal/model"
	"actionScope/internal/registry"
)

func runImportABI(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadImportABI(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	rec, fnCount, err := readContractABI(cfg.Address, cfg.File, cfg.Name)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SaveContractABI(ctx, rec); err != nil {
		return err
	}
	logger.Info("abi imported",
		zap.String("address", rec.Address),
		zap.String("name", rec.Name),
		zap.Int("functions", fnCount),
	)
	return nil
}

// readContractABI validates an ABI file so only documents the resolver can load are stored.
func readContractABI(address, path, name string) (model.ContractABI, int, error) {
	if !common.IsHexAddress(address) {
		return model.ContractABI{}, 0, fmt.Errorf("invalid address: %q", address)
	}
	if path == "" {
		return model.ContractABI{}, 0, fmt.Errorf("abi file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ContractABI{}, 0, fmt.Errorf("read abi: %w", err)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	iface, err := registry.ParseInterface(name, data)
	if err != nil {
		return model.ContractABI{}, 0, err
	}
	return model.ContractABI{
		Address: common.HexToAddress(address).Hex(),
		Name:    name,
		ABI:     string(data),
	}, len(iface.Functions), nil
}
