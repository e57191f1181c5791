package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"keel/internal/driver"
	"keel/internal/types"
)

func newShapesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shapes [flags] manifest.toml",
		Short: "Print the shape of every binding",
		Args:  cobra.ExactArgs(1),
		RunE:  runShapes,
	}
	cmd.Flags().Bool("classes", false, "also list the specialized classes")
	return cmd
}

func runShapes(cmd *cobra.Command, args []string) error {
	withClasses, err := cmd.Flags().GetBool("classes")
	if err != nil {
		return fmt.Errorf("failed to get classes flag: %w", err)
	}

	run, err := runPipeline(cmd, args[0], false)
	if err != nil {
		return err
	}
	defer run.close()

	out := cmd.OutOrStdout()
	writeTable(out, []string{"BINDING", "TYPE", "SHAPE"}, bindingRows(run.result))
	if withClasses {
		fmt.Fprintln(out)
		writeTable(out, []string{"CLASS", "ID", "SOURCE", "SHAPES"}, classRows(run.db, run.result))
	}
	printTimings(cmd, run.timer)
	return nil
}

func bindingRows(res *driver.Result) [][]string {
	rows := make([][]string, 0, len(res.Bindings))
	for _, b := range res.Bindings {
		shape := "-"
		if b.Resolved {
			shape = b.Shape.String()
		}
		rows = append(rows, []string{b.Module + "." + b.Name, b.Type, shape})
	}
	return rows
}

func classRows(db *types.Database, res *driver.Result) [][]string {
	rows := make([][]string, 0, len(res.Specialized))
	for _, cls := range res.Specialized {
		src, _ := cls.SpecializationSource(db)
		rows = append(rows, []string{
			cls.Name(db),
			fmt.Sprint(uint32(cls)),
			fmt.Sprint(uint32(src)),
			types.ShapeKey(cls.Shapes(db)),
		})
	}
	return rows
}

// writeTable aligns columns by display width, so identifiers outside ASCII
// line up too.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, b.String())
	}
	line(header)
	for _, row := range rows {
		line(row)
	}
}
