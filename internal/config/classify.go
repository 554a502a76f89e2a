package config

import (
	"github.com/spf13/pflag"
)

// ClassifyConfig holds settings of the offline classify command.
type ClassifyConfig struct {
	In        string
	Out       string
	Errors    string
	BatchSize int
	PGDSN     string
	ABI       ABISources
	LogLevel  string
}

// LoadClassify merges config file, environment variables, and flags into ClassifyConfig.
func LoadClassify(cfgFile string, flags *pflag.FlagSet) (ClassifyConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":        "./data/actions.jsonl",
		"errors":     "./data/classify_errors.jsonl",
		"batch-size": 1000,
		"log-level":  "info",
	})
	if err != nil {
		return ClassifyConfig{}, err
	}

	cfg := ClassifyConfig{
		In:        v.GetString("in"),
		Out:       v.GetString("out"),
		Errors:    v.GetString("errors"),
		BatchSize: v.GetInt("batch-size"),
		PGDSN:     v.GetString("pg-dsn"),
		ABI:       abiSources(v),
		LogLevel:  v.GetString("log-level"),
	}
	return cfg, nil
}

// ImportABIConfig holds settings of the import-abi command.
type ImportABIConfig struct {
	PGDSN    string
	Address  string
	File     string
	Name     string
	LogLevel string
}

// LoadImportABI merges config file, environment variables, and flags into ImportABIConfig.
func LoadImportABI(cfgFile string, flags *pflag.FlagSet) (ImportABIConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"log-level": "info",
	})
	if err != nil {
		return ImportABIConfig{}, err
	}

	return ImportABIConfig{
		PGDSN:    v.GetString("pg-dsn"),
		Address:  v.GetString("address"),
		File:     v.GetString("file"),
		Name:     v.GetString("name"),
		LogLevel: v.GetString("log-level"),
	}, nil
}
