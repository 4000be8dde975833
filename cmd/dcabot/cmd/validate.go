package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/dcabot/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a bot configuration file",
	Long: `Validate checks a configuration file (YAML or JSON) for missing
required fields, bad values and credentials committed into the file
instead of injected through the environment.

Example:
  dcabot validate user_data/config/config.json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(args[0])
	if err != nil {
		return err
	}

	res := cfg.Validate()
	for _, w := range res.Warnings {
		fmt.Println("WARNING: " + w)
	}
	for _, e := range res.Errors {
		fmt.Println("ERROR: " + e)
	}

	if !res.Valid() {
		return fmt.Errorf("configuration is invalid (%d errors)", len(res.Errors))
	}
	fmt.Println("Configuration OK")
	return nil
}
