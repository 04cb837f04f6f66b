package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reverie-ai/reverie/cmd/service"
)

func main() {
	root := &cobra.Command{
		Use:   "reverie",
		Short: "reverie journaling service",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand(), service.NewProcessCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
