// package formatter provides functions to export package and ticket listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tixpack/internal/models"
)

// ExportPackagesToCSV converts package listing rows to CSV format with
// columns: ID, Name, Color, Serial, FirstNumber, Nominal, Special, Opened, Tickets
func ExportPackagesToCSV(packages []models.PackageInfo) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Color", "Serial", "FirstNumber", "Nominal", "Special", "Opened", "Tickets"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pkg := range packages {
		firstNumber := ""
		if pkg.FirstNumber != nil {
			firstNumber = strconv.Itoa(*pkg.FirstNumber)
		}
		record := []string{
			strconv.Itoa(pkg.ID),
			pkg.Label(),
			pkg.ColorName,
			pkg.SerialName,
			firstNumber,
			strconv.FormatFloat(pkg.Nominal, 'f', 2, 64),
			strconv.FormatBool(pkg.IsSpecial),
			strconv.FormatBool(pkg.IsOpened),
			strconv.Itoa(pkg.TicketsCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportPackagesToMarkdown converts package listing rows to a Markdown table
func ExportPackagesToMarkdown(title string, packages []models.PackageInfo) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Packages**: %d\n\n", len(packages)))

	buf.WriteString("| ID | Name | Color | Serial | Nominal | Special | Opened | Tickets |\n")
	buf.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, pkg := range packages {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %.2f | %s | %s | %d |\n",
			pkg.ID, pkg.Label(), pkg.ColorName, pkg.SerialName, pkg.Nominal,
			yesNo(pkg.IsSpecial), yesNo(pkg.IsOpened), pkg.TicketsCount))
	}

	return buf.Bytes(), nil
}

// ExportPackagesToText converts package listing rows to plain text format
func ExportPackagesToText(packages []models.PackageInfo) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Packages: %d\n\n", len(packages)))
	for i, pkg := range packages {
		state := "closed"
		if pkg.IsOpened {
			state = "open"
		}
		buf.WriteString(fmt.Sprintf("%d. %s (%s, %d tickets)\n", i+1, pkg.Label(), state, pkg.TicketsCount))
	}

	return buf.Bytes(), nil
}

// ExportTicketsToCSV converts tickets to CSV format with columns:
// ID, Number, ColorID, SerialID, PackageID, Note
func ExportTicketsToCSV(tickets []*models.Ticket) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Number", "ColorID", "SerialID", "PackageID", "Note"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range tickets {
		packageID := ""
		if t.PackageID != nil {
			packageID = strconv.Itoa(*t.PackageID)
		}
		record := []string{
			strconv.Itoa(t.ID),
			strconv.Itoa(t.Number),
			strconv.Itoa(t.ColorID),
			strconv.Itoa(t.SerialID),
			packageID,
			t.Note,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WritePackagesExport writes package listing rows to a file, choosing the
// format from the extension: .csv, .md or anything else as plain text.
func WritePackagesExport(packages []models.PackageInfo, path string) error {
	var (
		data []byte
		err  error
	)

	switch {
	case strings.HasSuffix(path, ".csv"):
		data, err = ExportPackagesToCSV(packages)
	case strings.HasSuffix(path, ".md"):
		data, err = ExportPackagesToMarkdown("Ticket Packages", packages)
	default:
		data, err = ExportPackagesToText(packages)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
