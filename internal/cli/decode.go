package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/clipstack/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "decode [id]",
		Short: "Write the raw content of an entry to stdout",
		Long:  "Write the raw content of an entry. The id is taken from the argument or from the first field of a line on stdin.",
		Example: `
  # Pick an entry in a menu and copy it back
  clipstack list | wofi --dmenu | clipstack decode | wl-copy`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDecode,
	}

	RootCmd.AddCommand(cmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	id, err := parseID(args, func() ([]byte, error) { return io.ReadAll(cmd.InOrStdin()) })
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	content, err := s.hist.GetEntry(id)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(content); err != nil {
		return fmt.Errorf("write stdout: %w: %w", model.ErrIO, err)
	}
	return nil
}
