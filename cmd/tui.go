package cmd

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Zachkp/folio/internal/session"
	"github.com/Zachkp/folio/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the portfolio in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		site, err := loadSite(cfg)
		if err != nil {
			return err
		}
		deps, archive := buildDeps(cfg, site)
		if archive != nil {
			defer archive.Close()
		}
		sess := session.New(deps)
		defer sess.Close()

		// the alt screen owns stdout
		log.SetOutput(cmd.ErrOrStderr())
		_, err = tea.NewProgram(tui.New(site, sess), tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
