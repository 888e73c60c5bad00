package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/clipstack/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show history statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	for _, id := range s.hist.Order() {
		n, err := s.blobs.Size(id)
		switch {
		case errors.Is(err, model.ErrNotFound):
			stats.MissingBlobs = append(stats.MissingBlobs, id)
		case err != nil:
			return fmt.Errorf("stats: %w", err)
		default:
			stats.DiskBytes += n
		}
	}

	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("stats: %w: %w", model.ErrSerialization, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
