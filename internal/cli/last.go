package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/clipstack/internal/history"
)

func init() {
	last := &cobra.Command{
		Use:   "last",
		Short: "Show the newest entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFromEnd(cmd, (*history.History).Last)
		},
	}
	secondLast := &cobra.Command{
		Use:   "second-last",
		Short: "Show the entry before the newest one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFromEnd(cmd, (*history.History).SecondLast)
		},
	}

	for _, cmd := range []*cobra.Command{last, secondLast} {
		cmd.Flags().StringP("header", "t", "", "Line printed before the entry")
		RootCmd.AddCommand(cmd)
	}
}

func runFromEnd(cmd *cobra.Command, pick func(*history.History, history.Renderer) (string, error)) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	line, err := pick(s.hist, s.renderer)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	printHeader(cmd)
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}
