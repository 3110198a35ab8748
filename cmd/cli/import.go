package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inflationfighter/price-service/internal/catalog"
	"github.com/inflationfighter/price-service/internal/catalog/importer"
	"github.com/inflationfighter/price-service/internal/database"
)

var (
	importEncoding string
	importSheet    string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog data from CSV or XLSX files",
	Long: `Import stores or category prices into the database. The file format is taken from
the extension (.csv, .tsv, .txt or .xlsx). CSV delimiters and encodings are detected
unless --encoding is given.`,
}

var importStoresCmd = &cobra.Command{
	Use:   "stores <file>",
	Short: "Import stores (store_id, name, color, address, lat, lng)",
	Example: `  price-service import stores data/stores.csv
  price-service import stores data/stores.xlsx --sheet Stores`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"database": "required"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], (*importer.Importer).ImportStores)
	},
}

var importPricesCmd = &cobra.Command{
	Use:   "prices <file>",
	Short: "Import categories with per-store prices and deals",
	Example: `  price-service import prices data/prices.csv --encoding windows-1252`,
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"database": "required"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], (*importer.Importer).ImportPrices)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importStoresCmd, importPricesCmd)

	importCmd.PersistentFlags().StringVar(&importEncoding, "encoding", "", "CSV encoding: utf-8, windows-1252 or iso-8859-1 (detected when empty)")
	importCmd.PersistentFlags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (first sheet when empty)")
}

type importFunc func(*importer.Importer, context.Context, []byte, importer.Options) (*importer.Result, error)

func runImport(cmd *cobra.Command, path string, fn importFunc) error {
	opts, data, err := readImportFile(path)
	if err != nil {
		return err
	}

	repo := catalog.NewPostgresRepository(database.Pool())
	result, err := fn(importer.New(repo), cmd.Context(), data, opts)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	displayImportResult(cmd.OutOrStdout(), path, result)
	return nil
}

func readImportFile(path string) (importer.Options, []byte, error) {
	format, err := importer.FormatFromPath(path)
	if err != nil {
		return importer.Options{}, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return importer.Options{}, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return importer.Options{
		Format:   format,
		Encoding: importer.Encoding(importEncoding),
		Sheet:    importSheet,
	}, data, nil
}

func displayImportResult(out io.Writer, path string, r *importer.Result) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FILE\tROWS\tIMPORTED\tSKIPPED")
	fmt.Fprintln(w, "----\t----\t--------\t-------")
	fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", path, r.Rows, r.Imported, len(r.Errors))
	w.Flush()

	for _, e := range r.Errors {
		fmt.Fprintf(out, "  line %d: %s\n", e.Line, e.Message)
	}
}
