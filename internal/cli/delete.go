package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "delete [id]",
		Short: "Remove an entry from history",
		Long:  "Remove an entry and its files. The id is taken from the argument or from the first field of a line on stdin. Unknown ids are ignored.",
		Example: `
  # Delete entry 42
  clipstack delete 42

  # Pick an entry to forget
  clipstack list | rofi -dmenu | clipstack delete`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDelete,
	}

	RootCmd.AddCommand(cmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args, func() ([]byte, error) { return io.ReadAll(cmd.InOrStdin()) })
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.hist.DeleteEntry(id); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err := s.save(cmd.Context()); err != nil {
		return err
	}

	slog.Info("entry deleted", "id", id, "entries", s.hist.Len())
	return nil
}
