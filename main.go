// Package main provides the entry point of the DISPUPR document numbering service
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/dispupr-numbering/app/dto"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/amirphl/dispupr-numbering/config"
	"github.com/amirphl/dispupr-numbering/repository"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dispupr-numbering",
		Short:         "Issues sequential BAST and contract document numbers",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API (default)",
			RunE:  runServe,
		},
		newCountersCommand(),
		newExportCommand(),
	)
	return root
}

// loadConfig loads and validates configuration for every command
func loadConfig() (*config.ProductionConfig, error) {
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	log.Println("Starting DISPUPR document numbering service...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer app.Close()

	// Setup routes
	app.router.SetupRoutes()

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s (env=%s, version=%s)", address, cfg.Deployment.Environment, cfg.Deployment.Version)
		serveErr <- app.router.Start(address)
	}()

	// Wait for shutdown signal
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

func newCountersCommand() *cobra.Command {
	counters := &cobra.Command{
		Use:   "counters",
		Short: "Inspect persisted sequence counters",
	}

	var bastYear int
	bast := &cobra.Command{
		Use:   "bast",
		Short: "Show the BAST counter of a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCounterFlow(func(flow businessflow.CounterFlow) error {
				result, err := flow.BastCounter(cmd.Context(), bastYear)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	bast.Flags().IntVar(&bastYear, "year", 0, "year of the counter")
	_ = bast.MarkFlagRequired("year")

	var req dto.ContractCounterRequest
	contract := &cobra.Command{
		Use:   "contract",
		Short: "Show the counter of a contract category-year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCounterFlow(func(flow businessflow.CounterFlow) error {
				result, err := flow.ContractCounter(cmd.Context(), &req)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
	contract.Flags().StringVar(&req.LocationCode, "location", "", "location code (621|622)")
	contract.Flags().StringVar(&req.WorkType, "work-type", "", "work type (BM|BM-KONS)")
	contract.Flags().StringVar(&req.ProcurementType, "procurement-type", "", "procurement type (SP|SPK)")
	contract.Flags().IntVar(&req.Year, "year", 0, "year of the counter")
	for _, name := range []string{"location", "work-type", "procurement-type", "year"} {
		_ = contract.MarkFlagRequired(name)
	}

	counters.AddCommand(bast, contract)
	return counters
}

func withCounterFlow(fn func(businessflow.CounterFlow) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(db)

	return fn(businessflow.NewCounterFlow(repository.NewCounterRepository(db)))
}

type exportOptions struct {
	out             string
	year            int
	location        string
	workType        string
	procurementType string
}

func newExportCommand() *cobra.Command {
	var opts exportOptions

	export := &cobra.Command{
		Use:       "export {bast|contract}",
		Short:     "Write the record history to an xlsx file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bast", "contract"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], opts)
		},
	}
	export.Flags().StringVar(&opts.out, "out", "", "output path (defaults to the generated file name)")
	export.Flags().IntVar(&opts.year, "year", 0, "only records dated in this year")
	export.Flags().StringVar(&opts.location, "location", "", "contract location code filter")
	export.Flags().StringVar(&opts.workType, "work-type", "", "contract work type filter")
	export.Flags().StringVar(&opts.procurementType, "procurement-type", "", "contract procurement type filter")
	return export
}

func runExport(cmd *cobra.Command, document string, opts exportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(db)

	var year *int
	if opts.year != 0 {
		year = &opts.year
	}

	counterRepo := repository.NewCounterRepository(db)
	generator := businessflow.NewGenerator(counterRepo)

	var file *dto.ExportFile
	switch document {
	case "bast":
		flow := businessflow.NewBastFlow(repository.NewBastRecordRepository(db), generator, nil, db)
		file, err = flow.Export(cmd.Context(), &dto.ListBastRecordsRequest{Year: year})
	case "contract":
		flow := businessflow.NewContractFlow(repository.NewContractRecordRepository(db), generator, nil, db)
		file, err = flow.Export(cmd.Context(), &dto.ListContractRecordsRequest{
			Year:            year,
			LocationCode:    optionalFlag(opts.location),
			WorkType:        optionalFlag(opts.workType),
			ProcurementType: optionalFlag(opts.procurementType),
		})
	default:
		return errors.New("document must be bast or contract")
	}
	if err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = file.FileName
	}
	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func optionalFlag(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func closeStore(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
