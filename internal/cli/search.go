package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "List entries whose preview contains the query",
		Long:  "Case-insensitive search over entry previews, newest first. Output lines use the same format as list.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().IntP("limit", "l", 0, "Max results (0 for all)")
	cmd.Flags().StringP("header", "t", "", "Line printed before the entries")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	printHeader(cmd)
	for _, line := range s.hist.Search(query, s.renderer, limit) {
		fmt.Fprintln(out, line)
	}
	return nil
}
