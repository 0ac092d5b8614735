package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"embedder/internal/ui"
)

var flagOutput string

var pageCmd = &cobra.Command{
	Use:   "page [file]",
	Short: "Render the player placeholders of an HTML document",
	Long: `Replaces every element carrying a data-embed attribute with its player
and appends the provider scripts the players need to the body. Other data-*
attributes of a placeholder are attribute overrides (data-width, data-autoplay...);
data-provider, data-wraptag and data-class pick the provider and wrapper.
Reads stdin when no file or "-" is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: pageRun,
}

func init() {
	pageCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the document to a file instead of stdout")
}

func pageRun(cmd *cobra.Command, args []string) error {
	var in io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening document: %w", err)
		}
		defer f.Close()
		in = f
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var out bytes.Buffer
	report, err := a.renderer.RenderHTML(context.Background(), in, &out)
	if err != nil {
		return err
	}

	if flagOutput != "" {
		if err := writeFileAtomic(flagOutput, out.Bytes()); err != nil {
			return err
		}
	} else if _, err := os.Stdout.Write(out.Bytes()); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	// The document owns stdout, so the report goes to stderr.
	if flagJSON {
		return printJSONTo(os.Stderr, report)
	}

	stderr := ui.New(os.Stderr)
	for _, res := range report.Players {
		for _, w := range res.Warnings {
			stderr.Warn(w.Kind, res.Provider+": "+w.Message)
		}
	}
	for _, ref := range report.Failed {
		stderr.Warn("nothing_to_play", ref)
	}
	debugf("%d player(s), %d failed, %d script(s)", len(report.Players), len(report.Failed), report.Scripts)
	return nil
}

// writeFileAtomic writes data through a temp file and a rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".embedder-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming document: %w", err)
	}
	return nil
}
