package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AnTengye/contractgen/backend/service"
)

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders <template.docx>",
	Short: "List the placeholders of a template and the field each maps to",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaceholders,
}

func init() {
	rootCmd.AddCommand(placeholdersCmd)
}

func runPlaceholders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	resolver, err := service.NewResolver(&cfg.Generation, service.StaticOffice(cfg.Office))
	if err != nil {
		return err
	}
	extractor, err := service.NewExtractor(cfg.Generation.PlaceholderPatterns, resolver.Tokens())
	if err != nil {
		return err
	}
	tokens, err := extractor.Extract(content)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PLACEHOLDER\tFIELD")
	for _, tok := range tokens {
		field, ok := resolver.Field(tok)
		if !ok {
			field = "(unmapped)"
		}
		fmt.Fprintf(w, "%s\t%s\n", tok, field)
	}
	return w.Flush()
}
