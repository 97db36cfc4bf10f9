package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tui"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:     "copilot",
	Short:   "AI Survey Copilot — agent-assisted medical surveys",
	Long:    `Survey Copilot runs the survey platform: AI agents that review, clarify and analyze physician surveys, plus the REST API and background worker around them.`,
	Version: core.AppVersion,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")

	CustomizeHelp(rootCmd)
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}

func CustomizeHelp(rootCmd *cobra.Command) {
	cobra.AddTemplateFunc("StyleTitle", func(s string) string { return tui.TitleStyle.Render(s) })
	cobra.AddTemplateFunc("StyleUsage", func(s string) string { return tui.UsageStyle.Render(s) })
	cobra.AddTemplateFunc("StyleFlag", func(s string) string { return tui.FlagStyle.Render(s) })
	cobra.AddTemplateFunc("StyleDesc", func(s string) string { return tui.DescStyle.Render(s) })

	template := `
{{StyleTitle "USAGE"}}
  {{.UseLine}}
{{if gt (len .Commands) 0}}{{StyleTitle "AVAILABLE COMMANDS"}}
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding}} {{StyleDesc .Short}}{{end}}
{{end}}{{end}}
{{if .HasAvailableLocalFlags}}{{StyleTitle "FLAGS"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}
{{end}}
`
	rootCmd.SetHelpTemplate(template)
}
