package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hassanhitleap1/bagisto-karaz/internal/catalog"
	"github.com/hassanhitleap1/bagisto-karaz/internal/config"
	"github.com/hassanhitleap1/bagisto-karaz/internal/database"
	"github.com/hassanhitleap1/bagisto-karaz/internal/events"
	"github.com/hassanhitleap1/bagisto-karaz/internal/importer"
	"github.com/hassanhitleap1/bagisto-karaz/internal/logger"
	"github.com/hassanhitleap1/bagisto-karaz/internal/media"
	"github.com/hassanhitleap1/bagisto-karaz/internal/shopify"
)

var (
	storeURL    string
	perPage     int
	maxPages    int
	currentPage int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "importer",
		Short:         "Catalog tooling for the karaz store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import products from a Shopify storefront's public feed",
		RunE:  runImport,
	}
	importCmd.Flags().StringVar(&storeURL, "url", "", "storefront base URL (prompted when omitted)")
	importCmd.Flags().IntVar(&perPage, "per-page", 250, "products per feed page (overrides IMPORT_PER_PAGE)")
	importCmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = unbounded)")
	importCmd.Flags().IntVar(&currentPage, "current-page", 1, "feed page to start from")

	rootCmd.AddCommand(importCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	// The flag wins over the IMPORT_PER_PAGE environment default.
	if !cmd.Flags().Changed("per-page") {
		perPage = cfg.ImportPerPage
	}

	if storeURL == "" {
		storeURL = prompt("Store URL: ")
	}
	if storeURL == "" {
		return errors.New("store url is required")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	fetcher := media.NewFetcher(cfg.StoragePath, log)
	resolver := catalog.NewResolver(fetcher, log)
	if err := resolver.LoadLocales(db.DB); err != nil {
		return err
	}

	assembler := catalog.NewAssembler(db.DB, resolver, fetcher, log)
	client := shopify.NewClient(storeURL, perPage, log)

	publisher := events.NewPublisher(cfg.KafkaBrokers, log)
	defer publisher.Close()

	driver := importer.NewDriver(client, assembler, publisher, log)
	stats, err := driver.Run(cmd.Context(), importer.Options{
		StartPage: currentPage,
		MaxPages:  maxPages,
	})
	if err != nil {
		return err
	}

	resolved := resolver.Stats()
	fmt.Println("Import finished")
	fmt.Printf("  Pages processed:    %d\n", stats.Pages)
	fmt.Printf("  Products imported:  %d\n", stats.Imported)
	fmt.Printf("  Products skipped:   %d\n", stats.Skipped)
	fmt.Printf("  Products failed:    %d\n", stats.Failed)
	fmt.Printf("  Brands created:     %d\n", resolved.Brands)
	fmt.Printf("  Categories created: %d\n", resolved.Categories)
	fmt.Printf("  Attributes created: %d (%d options)\n", resolved.Attributes, resolved.Options)

	// Per-product failures are reported above, not fatal to the process.
	return nil
}

func prompt(label string) string {
	fmt.Print(label)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}
