package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/torgpult/catalog-service/internal/normalize"
	"github.com/torgpult/catalog-service/internal/parsers/feed"
	"github.com/torgpult/catalog-service/internal/types"
)

var parseOutput string

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a local XML feed without touching the database",
	Long: `Parse a local XML feed file and show what the importer would extract
from it. No database is needed; this is a dry run for inspecting vendor
feeds. Encodings are detected automatically (UTF-8, windows-1251, koi8-r).`,
	Example: `  catalog-service parse ./data/uploads/feed.xml
  catalog-service parse ./data/uploads/feed.xml --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(&parseOutput, "output", "table", "Output format: table or json")
}

func runParse(cmd *cobra.Command, args []string) error {
	filePath := args[0]

	logger.Info().Str("file", filePath).Msg("Reading file")
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	logger.Info().Str("file", filePath).Msgf("Read %d bytes", len(content))

	result, err := feed.Parse(content, filePath)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	switch strings.ToLower(parseOutput) {
	case "json":
		return outputParseJSON(result)
	case "table":
		outputParseTable(filePath, result)
	default:
		return fmt.Errorf("invalid output format: %s (use 'table' or 'json')", parseOutput)
	}

	return nil
}

func outputParseTable(filePath string, result *types.ParseResult) {
	fmt.Printf("\nParse Results for %s\n", filePath)
	fmt.Println(strings.Repeat("-", 60))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Metric\tValue\n")
	fmt.Fprintf(w, "------\t-----\n")
	fmt.Fprintf(w, "Item Tag\t%s\n", result.ItemTag)
	fmt.Fprintf(w, "Total Nodes\t%d\n", result.TotalNodes)
	fmt.Fprintf(w, "Extracted Offers\t%d\n", len(result.Offers))
	fmt.Fprintf(w, "Errors\t%d\n", len(result.Errors))
	w.Flush()

	if len(result.Errors) > 0 {
		fmt.Printf("\nFirst %d Errors:\n", min(len(result.Errors), 10))
		fmt.Println(strings.Repeat("-", 60))
		for i, extErr := range result.Errors {
			if i >= 10 {
				break
			}
			fmt.Printf("Position %d: %s\n", extErr.Position, extErr.Message)
		}
		if len(result.Errors) > 10 {
			fmt.Printf("... and %d more errors\n", len(result.Errors)-10)
		}
	}

	if len(result.Offers) > 0 {
		fmt.Printf("\nSample Offers (first %d):\n", min(len(result.Offers), 5))
		fmt.Println(strings.Repeat("-", 60))
		for i, offer := range result.Offers {
			if i >= 5 {
				break
			}
			sku := offer.SKU
			if sku == "" {
				sku = "-"
			}
			fmt.Printf("%d. [%s] %s (%s) price %.2f, stock %d\n",
				i+1, sku, offer.Name, offer.Category(),
				normalize.Price(offer.PriceText), normalize.Quantity(offer.StockText))
		}
	}
}

func outputParseJSON(result *types.ParseResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
