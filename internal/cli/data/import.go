package data

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/interchange"
	"github.com/eliasosarumwense/Habital-sub003/internal/logger"
	"github.com/eliasosarumwense/Habital-sub003/internal/tui"
)

// maxShownWarnings bounds the row diagnostics printed after an import.
const maxShownWarnings = 20

type ImportCmd struct {
	File    string `arg:"" type:"existingfile" help:"CSV file to import."`
	Atomic  bool   `help:"Roll back everything if any pass fails."`
	Verbose bool   `short:"v" help:"Print every row diagnostic."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	desc := "Records with matching IDs are updated; duplicate completions are ignored."
	if ctx.Backups != nil {
		desc += " A backup is taken first."
	}
	if err := ctx.Confirm(fmt.Sprintf("Import %s?", filepath.Base(c.File)), desc); err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	var report *interchange.Report
	err = tui.RunTask(ctx.Stdout(), "Importing habits…", func() error {
		var err error
		report, err = ctx.Codec.Import(ctx.Ctx(), f, interchange.ImportOptions{Atomic: c.Atomic})
		return err
	})
	if report != nil {
		c.print(ctx, report)
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func (c *ImportCmd) print(ctx *cli.Context, report *interchange.Report) {
	ctx.Println(report.Summary())

	warnings := report.Warnings()
	for i, w := range warnings {
		if !c.Verbose && i == maxShownWarnings {
			ctx.Printf("  … %d more (use --verbose)\n", len(warnings)-maxShownWarnings)
			break
		}
		ctx.Printf("  ⚠ %v\n", w)
	}
	logger.Info("Import finished",
		"file", c.File,
		"imported", report.Imported.Total(),
		"skipped", report.Skipped.Total(),
		"warnings", len(warnings))
}
