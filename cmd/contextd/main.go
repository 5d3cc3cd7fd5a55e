package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/craftmind/contextd/internal/cli"
	"github.com/craftmind/contextd/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contextd",
		Short: "Contextd daemon and CLI",
		Long:  "Contextd daemon for running the context engine API server and managing learning jobs",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.JobsCmd())
	rootCmd.AddCommand(admin.ReindexCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
