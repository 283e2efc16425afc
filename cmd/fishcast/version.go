package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fishcast/internal/config"
	"fishcast/internal/types"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build metadata",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fishcast %s\ncontract %s\n", config.NewBuildInfo(), types.ContractVersion)
		},
	}
}
