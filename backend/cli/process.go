package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnTengye/contractgen/backend/config"
	"github.com/AnTengye/contractgen/backend/model"
	"github.com/AnTengye/contractgen/backend/service"
)

var (
	processTemplate     string
	processSpreadsheet  string
	processPrints       string
	processOut          string
	processContracts    []string
	processBaseSheet    string
	processAddressSheet string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate the contracts of a spreadsheet into a ZIP archive",
	Example: `  contractgen process --template modelo.docx --spreadsheet base.xlsx --prints ./prints --out contratos.zip
  contractgen process -t modelo.docx -s base.xlsx --contracts 61796,61800`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processTemplate, "template", "t", "", "Word template (.docx)")
	processCmd.Flags().StringVarP(&processSpreadsheet, "spreadsheet", "s", "", "contract spreadsheet (.xlsx)")
	processCmd.Flags().StringVar(&processPrints, "prints", "", "directory of clause prints named <contract>.png|.jpg")
	processCmd.Flags().StringVarP(&processOut, "out", "o", "contratos.zip", "archive to write")
	processCmd.Flags().StringSliceVar(&processContracts, "contracts", nil, "only these contract numbers")
	processCmd.Flags().StringVar(&processBaseSheet, "base-sheet", "", "name of the contacts tab")
	processCmd.Flags().StringVar(&processAddressSheet, "address-sheet", "", "name of the addresses tab")
	_ = processCmd.MarkFlagRequired("template")
	_ = processCmd.MarkFlagRequired("spreadsheet")
	rootCmd.AddCommand(processCmd)
}

// fileTemplate serves a single template file from disk, always active.
type fileTemplate struct {
	path string
}

func (f fileTemplate) Get(id string) (*model.Template, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", f.path, err)
	}
	return &model.Template{
		ID:        id,
		Name:      strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path)),
		Filename:  filepath.Base(f.path),
		Status:    model.TemplateActive,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
		UpdatedAt: info.ModTime(),
	}, nil
}

func (f fileTemplate) Content(string) ([]byte, error) {
	return os.ReadFile(f.path)
}

// openPrints uses dir as the print source, or an empty scratch dir under tmp.
func openPrints(dir, tmp string) (*service.PrintStore, error) {
	if dir == "" {
		dir = filepath.Join(tmp, "prints")
	} else if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("prints directory %s not found", dir)
	}
	return service.NewPrintStore(dir)
}

func runProcess(cmd *cobra.Command, args []string) error {
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

	runner, err := offlineRunner(cfg, fileTemplate{path: processTemplate}, tmp)
	if err != nil {
		return err
	}

	job, err := runner.Run(cmd.Context(), service.Request{
		TemplateID:  processTemplate,
		Spreadsheet: spreadsheet,
		Contracts:   processContracts,
		Options: service.ReadOptions{
			BaseSheet:    processBaseSheet,
			AddressSheet: processAddressSheet,
		},
	})
	if err != nil {
		writeJob(cmd.OutOrStdout(), job)
		return err
	}

	job.DownloadURL = ""
	if job.Success > 0 {
		if err := copyFile(job.ArchivePath, processOut); err != nil {
			return fmt.Errorf("write archive: %w", err)
		}
		job.DownloadURL = processOut
	}
	return writeJob(cmd.OutOrStdout(), job)
}

// offlineRunner builds a BatchRunner over local files, with jobs kept under tmp.
func offlineRunner(cfg *config.Config, templates service.TemplateSource, tmp string) (*service.BatchRunner, error) {
	office, err := service.NewOfficeStore(cfg.Storage.OfficeFile(), cfg.Office)
	if err != nil {
		return nil, err
	}
	prints, err := openPrints(processPrints, tmp)
	if err != nil {
		return nil, err
	}
	jobs := service.NewJobStore(&cfg.Store, filepath.Join(tmp, "outputs"))
	return service.NewBatchRunner(cfg, office, templates, prints, jobs)
}

func writeJob(w io.Writer, job *model.Job) error {
	if job == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(job)
}

// copyFile writes src to dst through a temp file in dst's directory.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	out, err := os.CreateTemp(dir, ".contractgen-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return err
	}
	return os.Rename(out.Name(), dst)
}
