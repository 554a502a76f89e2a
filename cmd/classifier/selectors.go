package main

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"actionScope/internal/classify"
	"actionScope/internal/registry"
)

func runSelectors(cmd *cobra.Command, _ []string) error {
	mappedOnly, _ := cmd.Flags().GetBool("mapped-only")

	reg, err := registry.Default()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Interface", "Function", "Signature", "Selector", "Action"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)

	for _, iface := range reg.AllInterfaces() {
		for _, fn := range iface.Functions {
			mapped := classify.HasMapping(fn.Signature)
			if mappedOnly && !mapped {
				continue
			}
			action := ""
			if mapped {
				action = "yes"
			}
			table.Append([]string{iface.Name, fn.Name, fn.Signature, fn.Selector.Hex(), action})
		}
	}
	table.Render()
	return nil
}
