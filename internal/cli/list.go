package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history, newest first",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}

	cmd.Flags().StringP("header", "t", "", "Line printed before the entries")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	printHeader(cmd)
	for _, line := range s.hist.List(s.renderer) {
		fmt.Fprintln(out, line)
	}
	return nil
}

func printHeader(cmd *cobra.Command) {
	if header, _ := cmd.Flags().GetString("header"); header != "" {
		fmt.Fprintln(cmd.OutOrStdout(), header)
	}
}
