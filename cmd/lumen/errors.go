package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lumen/internal/errors"
)

func errorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "errors [code]",
		Short: "List error codes or explain one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if _, ok := errors.GetTemplate(args[0]); !ok {
					return fmt.Errorf("unknown error code %q", args[0])
				}
				fmt.Print(errors.New(args[0]).Format())
				return nil
			}
			for _, code := range errors.GetAllCodes() {
				t, _ := errors.GetTemplate(code)
				fmt.Printf("  %s  %-8s %s\n", code, t.Category, t.Message)
			}
			return nil
		},
	}
}
