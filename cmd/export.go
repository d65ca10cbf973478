package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"tixpack/internal/formatter"
	"tixpack/internal/models"
)

// Export writes the filtered package listing to a file, choosing the format
// from the output extension.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	output := cmd.String("output")
	filter, err := parseFilterFlag(cmd.String("filter"))
	if err != nil {
		return err
	}

	a, err := r.openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if packageID := cmd.Int("package"); packageID > 0 {
		return r.exportPackageTickets(ctx, a, packageID, output)
	}

	packages, err := a.packages.GetPackages(ctx, models.PackageQuery{Filter: filter})
	if err != nil {
		return err
	}

	if err := formatter.WritePackagesExport(packages, output); err != nil {
		return err
	}

	r.logger.Info("export written", "path", output, "packages", len(packages))
	r.writePlain("✓ Exported %d packages to %s\n", len(packages), output)
	return nil
}

// exportPackageTickets writes one package's allocated tickets as CSV.
func (r *Runner) exportPackageTickets(ctx context.Context, a *app, packageID int, output string) error {
	tickets, err := a.packages.GetPackageTickets(ctx, packageID, true)
	if err != nil {
		return err
	}

	data, err := formatter.ExportTicketsToCSV(tickets)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	r.logger.Info("export written", "path", output, "tickets", len(tickets))
	r.writePlain("✓ Exported %d tickets to %s\n", len(tickets), output)
	return nil
}
