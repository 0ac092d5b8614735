package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"embedder/internal/ui"
)

var flagProvider string

var resolveCmd = &cobra.Command{
	Use:   "resolve <reference>[, <reference>...]",
	Short: "Resolve media references into provider ids",
	Args:  cobra.MinimumNArgs(1),
	RunE:  resolveRun,
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, embedCmd, checkCmd, oembedCmd} {
		c.Flags().StringVarP(&flagProvider, "provider", "p", "", "Provider name (detected when omitted)")
	}
}

func printJSON(v interface{}) error {
	return printJSONTo(os.Stdout, v)
}

func printJSONTo(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func resolveRun(cmd *cobra.Command, args []string) error {
	play := strings.Join(args, " ")

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, res, err := a.renderer.Pick(flagProvider, play)
	if err != nil {
		return err
	}
	debugf("provider: %s, %d reference(s)", p.Name(), len(res.Refs()))

	type row struct {
		Ref  string `json:"ref"`
		ID   string `json:"id,omitempty"`
		Type string `json:"type,omitempty"`
		Src  string `json:"src,omitempty"`
	}

	var rows []row
	for _, ref := range res.Refs() {
		e, ok := res.Lookup(ref)
		if !ok {
			rows = append(rows, row{Ref: ref})
			continue
		}
		src := ""
		if p.Src() != "" {
			src = p.Src() + e.Join[0] + e.Descriptor.ID
		}
		rows = append(rows, row{Ref: ref, ID: e.Descriptor.ID, Type: e.Descriptor.Type, Src: src})
	}

	if flagJSON {
		return printJSON(map[string]interface{}{
			"provider": p.Name(),
			"valid":    res.Valid(),
			"refs":     rows,
		})
	}

	out := ui.New(os.Stdout)
	out.Title(p.Name())
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		id, typ := r.ID, r.Type
		if id == "" {
			id, typ = "-", "unresolved"
		}
		table = append(table, []string{r.Ref, id, typ})
	}
	out.Table([]string{"REFERENCE", "ID", "TYPE"}, table)

	if !res.Valid() {
		return fmt.Errorf("no reference resolved for %s", p.Name())
	}
	return nil
}
