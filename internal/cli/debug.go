package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/clipstack/internal/config"
	"github.com/rcliao/clipstack/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:    "debug",
		Short:  "Dump the effective config and stored history as JSON",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE:   runDebug,
	}

	RootCmd.AddCommand(cmd)
}

func runDebug(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	dump := struct {
		Config  config.Config  `json:"config"`
		History model.Snapshot `json:"history"`
	}{cfg, s.hist.Snapshot()}

	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("debug: %w: %w", model.ErrSerialization, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
