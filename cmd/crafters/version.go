package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crafters version %s\n", version.Get())
	},
}
