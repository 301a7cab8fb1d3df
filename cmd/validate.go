package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/martinmn/defsched/app"
	"github.com/martinmn/defsched/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the input files without scheduling",
	RunE:  validateInputs,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateInputs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// MQTT is irrelevant for validation; don't require a broker.
	cfg.MQTT.Enabled = false
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close() //nolint:errcheck
	return svc.Validate()
}
