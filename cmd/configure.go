package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/getsavvyinc/nbcomplete/config"
	"github.com/getsavvyinc/nbcomplete/display"
	"github.com/getsavvyinc/nbcomplete/theme"
	"github.com/spf13/cobra"
)

var (
	apiKeyFlag  string
	baseURLFlag string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store the API key and defaults in the nbcomplete config file",
	Long: `
  configure writes ~/.config/nbcomplete/config.json. Values in the environment
  or in a .env file take precedence over the stored ones.

  Without --api-key you are prompted for the key.
  `,
	Example: `
  nbcomplete configure
  nbcomplete configure --api-key sk-... --model gpt-4o
  nbcomplete configure --base-url http://localhost:11434/v1
  `,
	Run: func(cmd *cobra.Command, _ []string) {
		logger := loggerFromCtx(cmd.Context()).With("command", "configure")

		cfg, err := config.LoadFromFile(config.DefaultConfigFilePath)
		if errors.Is(err, os.ErrNotExist) {
			cfg, err = &config.Config{}, nil
		}
		if err != nil {
			display.FatalErr(fmt.Errorf("failed to read %s: %w", config.DefaultConfigFilePath, err))
		}

		flags := cmd.Flags()
		if flags.Changed("api-key") {
			cfg.APIKey = apiKeyFlag
		} else {
			if !display.IsTerminal() {
				display.FatalErr(errors.New("--api-key is required when not running in a terminal"))
			}
			if err := askAPIKey(&cfg.APIKey); err != nil {
				display.FatalErr(err)
			}
		}
		if flags.Changed("base-url") {
			cfg.BaseURL = baseURLFlag
		}
		applyFlags(cmd, cfg)

		if err := cfg.Validate(); err != nil {
			display.FatalErr(err)
		}
		if err := cfg.Save(); err != nil {
			display.FatalErr(fmt.Errorf("failed to save config: %w", err))
		}
		logger.Debug("saved config", "path", config.DefaultConfigFilePath)
		display.Success("Configuration saved to " + config.DefaultConfigFilePath)
	},
}

func askAPIKey(key *string) error {
	input := huh.NewInput().
		Title("OpenAI API key").
		Description("Stored in " + config.DefaultConfigFilePath).
		Password(true).
		Value(key)
	if err := huh.NewForm(huh.NewGroup(input)).WithTheme(theme.New()).Run(); err != nil {
		return fmt.Errorf("failed to read API key: %w", err)
	}
	return nil
}

func init() {
	configureCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "API key for the completion endpoint")
	configureCmd.Flags().StringVar(&baseURLFlag, "base-url", "", "Base URL of an OpenAI compatible endpoint")
	configureCmd.Flags().StringVarP(&modelFlag, "model", "m", config.DefaultModelName, "Default chat model")
	configureCmd.Flags().StringVar(&logFileFlag, "log-file", config.DefaultLogFile, "Default explanation log file")
	configureCmd.Flags().StringVar(&logModeFlag, "log-mode", config.DefaultLogMode, "Default explanation log mode")
	configureCmd.Flags().Uint64Var(&retriesFlag, "retries", 0, "Default number of retries")
	rootCmd.AddCommand(configureCmd)
}
