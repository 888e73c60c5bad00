package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all clipboard history",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}

	RootCmd.AddCommand(cmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	n := s.hist.Len()
	if err := s.hist.Clear(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := s.save(cmd.Context()); err != nil {
		return err
	}

	slog.Info("clipboard history cleared", "deleted-items", n)
	return nil
}
