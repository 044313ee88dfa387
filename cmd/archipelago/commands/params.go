package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/archipelago-eco/archipelago/config"
	"github.com/archipelago-eco/archipelago/errors"
	"github.com/archipelago-eco/archipelago/metacommunity"
)

// ParamsCmd represents the params command
var ParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Inspect and export generation parameters",
	Long: `Inspect the generation parameters resolved from the configuration, or
export them as a TOML block reloadable through archipelago.toml.

Examples:
  archipelago params show            # Show resolved parameters
  archipelago params export          # Print a TOML metacommunity block
  archipelago params export --full   # Write prior ranges instead of values`,
}

var paramsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured generation parameters",
	RunE:  runParamsShow,
}

var paramsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export parameters as a TOML metacommunity block",
	RunE:  runParamsExport,
}

var paramsFullFlag bool

func init() {
	ParamsCmd.AddCommand(paramsShowCmd)
	ParamsCmd.AddCommand(paramsExportCmd)
	paramsExportCmd.Flags().BoolVar(&paramsFullFlag, "full", false, "Write prior ranges as low-high instead of current values")
}

func configuredStore() (*metacommunity.ParameterStore, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	pool, err := cfg.NewPool()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to build pool from configuration")
	}
	return pool.Params(), cfg, nil
}

func runParamsShow(cmd *cobra.Command, args []string) error {
	store, cfg, err := configuredStore()
	if err != nil {
		return err
	}

	fmt.Printf("Source: %s\n\n", cfg.Metacommunity.Source)
	for _, name := range store.Names() {
		var value string
		if low, high, ok := store.Prior(name); ok {
			value = fmt.Sprintf("%g-%g", low, high)
		} else {
			v, err := store.Get(name)
			if err != nil {
				return err
			}
			value = fmt.Sprintf("%g", v)
		}
		fmt.Printf("%-20s %-12s %s\n", name, value, metacommunity.ParamDescriptions[name])
	}
	return nil
}

func runParamsExport(cmd *cobra.Command, args []string) error {
	store, _, err := configuredStore()
	if err != nil {
		return err
	}

	out, err := config.ExportParams(store, paramsFullFlag)
	if err != nil {
		return errors.Wrap(err, "failed to export parameters")
	}
	fmt.Print(string(out))
	return nil
}
