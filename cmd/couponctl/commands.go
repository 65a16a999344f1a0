package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couponhub/couponhub-backend/internal/config"
	"github.com/couponhub/couponhub-backend/internal/domain"
	"github.com/couponhub/couponhub-backend/internal/metadata"
	"github.com/couponhub/couponhub-backend/internal/repository/postgres"
	"github.com/couponhub/couponhub-backend/internal/service"
	"github.com/couponhub/couponhub-backend/internal/sheet"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "couponctl",
		Short:         "Operate the CouponHub catalog from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newTemplateCmd(), newMigrateCmd())
	return root
}

func newImportCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <stores|coupons> <file>",
		Short: "Import a CSV or XLSX sheet into the catalog",
		Example: `  couponctl import stores stores.xlsx
  couponctl import coupons coupons.csv --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			contents, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			cfg := config.Load()
			db, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer db.Close()

			storeRepo := postgres.NewStoreRepo(db)
			logos := service.NewLogoResolver(metadata.NewScraper(cfg.MetadataTimeout), service.LogoResolverConfig{
				FaviconServiceURL: cfg.FaviconServiceURL,
				DefaultLogoURL:    cfg.DefaultLogoURL,
			})
			svc := service.NewImportService(postgres.NewImportJobRepo(db), storeRepo, postgres.NewCouponRepo(db), logos, nil, service.ImportServiceConfig{
				MaxRows:        cfg.ImportMaxRows,
				MaxFileBytes:   cfg.ImportMaxFileBytes,
				ErrorPreview:   cfg.ImportErrorPreview,
				SuccessPreview: cfg.ImportSuccessPreview,
			})

			job, outcome, _, err := svc.Import(cmd.Context(), entity, filepath.Base(args[1]), contents, dryRun)
			if err != nil {
				if outcome != nil {
					// interrupted: report what was already written
					_ = printOutcome(cmd, job, outcome)
				}
				return err
			}
			return printOutcome(cmd, job, outcome)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate rows without writing to the catalog")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "template <stores|coupons>",
		Short: "Write a blank import sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			data, _, err := sheet.Template(entity, sheet.Format(strings.ToLower(format)))
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(sheet.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file, stdout when empty")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			db, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer db.Close()

			if err := postgres.Migrate(db.DB); err != nil {
				return err
			}
			version, err := postgres.MigrationVersion(db.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database at version %d\n", version)
			return nil
		},
	}
}

func parseEntity(raw string) (domain.ImportEntity, error) {
	entity := domain.ImportEntity(strings.ToLower(strings.TrimSpace(raw)))
	if !entity.Valid() {
		return "", fmt.Errorf("unknown entity %q, expected stores or coupons", raw)
	}
	return entity, nil
}

func printOutcome(cmd *cobra.Command, job *domain.ImportJob, outcome *domain.ImportOutcome) error {
	out := cmd.OutOrStdout()
	if job != nil {
		fmt.Fprintf(out, "job %s %s (dry run: %v)\n", job.ID, job.Status, job.DryRun)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}
