package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AnTengye/contractgen/backend/service"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report missing data and prints without generating anything",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&processSpreadsheet, "spreadsheet", "s", "", "contract spreadsheet (.xlsx)")
	checkCmd.Flags().StringVar(&processPrints, "prints", "", "directory of clause prints named <contract>.png|.jpg")
	checkCmd.Flags().StringVar(&processBaseSheet, "base-sheet", "", "name of the contacts tab")
	checkCmd.Flags().StringVar(&processAddressSheet, "address-sheet", "", "name of the addresses tab")
	_ = checkCmd.MarkFlagRequired("spreadsheet")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	spreadsheet, err := os.ReadFile(processSpreadsheet)
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	tmp, err := os.MkdirTemp("", "contractgen-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	runner, err := offlineRunner(cfg, nil, tmp)
	if err != nil {
		return err
	}
	report, err := runner.Pendencies(cmd.Context(), spreadsheet, service.ReadOptions{
		BaseSheet:    processBaseSheet,
		AddressSheet: processAddressSheet,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
