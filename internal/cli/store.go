package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rcliao/clipstack/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store stdin as the newest history entry",
		Long:  "Read clipboard content from stdin and store it. Empty input or a lone newline is rejected.",
		Args:  cobra.NoArgs,
		RunE:  runStore,
	}

	RootCmd.AddCommand(cmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w: %w", model.ErrIO, err)
	}
	if len(content) == 0 || bytes.Equal(content, []byte{'\n'}) {
		return fmt.Errorf("store: %w", model.ErrEmptyInput)
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.hist.AddEntry(content)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := s.save(cmd.Context()); err != nil {
		return err
	}

	slog.Info("clipboard stored", "id", id, "entries", s.hist.Len())
	return nil
}
