package data

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/eliasosarumwense/Habital-sub003/internal/cli"
	"github.com/eliasosarumwense/Habital-sub003/internal/interchange"
	"github.com/eliasosarumwense/Habital-sub003/internal/tui"
)

type ExportCmd struct {
	Output string `short:"o" help:"File or directory to write to ('-' for stdout). Defaults to the configured export_dir."`
}

// target resolves the output file path.
func (c *ExportCmd) target(ctx *cli.Context) string {
	name := interchange.Filename(ctx.Habits.Now())
	switch {
	case c.Output == "":
		return filepath.Join(ctx.Config.ExportDir, name)
	case isDir(c.Output):
		return filepath.Join(c.Output, name)
	default:
		return c.Output
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	if c.Output == "-" {
		w := bufio.NewWriter(ctx.Stdout())
		if _, err := ctx.Codec.Export(ctx.Ctx(), w); err != nil {
			return err
		}
		return w.Flush()
	}

	path := c.target(ctx)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	var counts interchange.Counts
	err := tui.RunTask(ctx.Stdout(), "Exporting habits…", func() error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		w := bufio.NewWriter(f)
		counts, err = ctx.Codec.Export(ctx.Ctx(), w)
		if err == nil {
			err = w.Flush()
		}
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return errors.Join(err, os.Remove(path))
		}
		return nil
	})
	if err != nil {
		return err
	}

	size := ""
	if info, err := os.Stat(path); err == nil {
		size = " (" + humanize.Bytes(uint64(info.Size())) + ")"
	}
	ctx.Printf("✓ Exported %s lists, %s habits, %s repeat patterns and %s completions to %s%s\n",
		humanize.Comma(int64(counts.Lists)), humanize.Comma(int64(counts.Habits)),
		humanize.Comma(int64(counts.Patterns)), humanize.Comma(int64(counts.Completions)),
		path, size)
	return nil
}
