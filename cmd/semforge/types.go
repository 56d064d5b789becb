package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List registered semantic types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := buildStack(cfg)
			if err != nil {
				return err
			}

			types, err := s.registry.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(types) == 0 {
				fmt.Fprintln(out, gray("registry is empty"))
				return nil
			}
			for _, semType := range types {
				detail := fmt.Sprintf("%d patterns", len(semType.Patterns()))
				if len(semType.Members()) > 0 {
					detail = fmt.Sprintf("%d members", len(semType.Members()))
				}
				fmt.Fprintf(out, "  %s %-8s priority=%d threshold=%d %s\n",
					cyan(semType.SemanticType), semType.PluginType, semType.Priority, semType.Threshold, gray(detail))
			}
			return nil
		},
	}
}
