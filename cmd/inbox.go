package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/inbox"
)

var (
	inboxLimit int
	inboxPrune time.Duration
	inboxJSON  bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List archived contact messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := inbox.Open(cfg.InboxPath)
		if err != nil {
			return fmt.Errorf("opening inbox: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		if inboxPrune > 0 {
			n, err := store.Prune(ctx, time.Now().Add(-inboxPrune))
			if err != nil {
				return fmt.Errorf("pruning inbox: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Pruned %d messages\n", n)
		}

		entries, err := store.Recent(ctx, inboxLimit)
		if err != nil {
			return fmt.Errorf("listing inbox: %w", err)
		}
		out := cmd.OutOrStdout()
		if inboxJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "Inbox is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(out, "%s  %-9s  %s <%s>\n", e.ReceivedAt.Local().Format("2006-01-02 15:04"), e.Status, e.Name, e.Email)
			fmt.Fprintf(out, "    %s\n", e.Subject)
			if e.Error != "" {
				fmt.Fprintf(out, "    error: %s\n", e.Error)
			}
			fmt.Fprintf(out, "    %s\n\n", strings.ReplaceAll(e.Message, "\n", "\n    "))
		}
		return nil
	},
}

func init() {
	inboxCmd.Flags().IntVar(&inboxLimit, "limit", 20, "number of messages to show")
	inboxCmd.Flags().DurationVar(&inboxPrune, "prune", 0, "delete messages older than this before listing")
	inboxCmd.Flags().BoolVar(&inboxJSON, "json", false, "print JSON")
	rootCmd.AddCommand(inboxCmd)
}
