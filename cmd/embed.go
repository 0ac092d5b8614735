package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"embedder/internal/embed"
	"embedder/internal/render"
	"embedder/internal/ui"
)

var (
	flagAttrs   []string
	flagWrapTag string
	flagClass   string
)

var embedCmd = &cobra.Command{
	Use:   "embed <reference>[, <reference>...]",
	Short: "Render the player markup for a media reference",
	Example: `  embedder embed https://youtu.be/dQw4w9WgXcQ -a autoplay=1 -a ratio=4:3
  embedder embed -p soundcloud 293 --wraptag figure --class audio`,
	Args: cobra.MinimumNArgs(1),
	RunE: embedRun,
}

var checkCmd = &cobra.Command{
	Use:   "check <reference>[, <reference>...]",
	Short: "Exit successfully when the reference renders a player",
	Args:  cobra.MinimumNArgs(1),
	RunE:  checkRun,
}

func init() {
	embedCmd.Flags().StringArrayVarP(&flagAttrs, "attr", "a", nil, "Attribute override name=value (repeatable)")
	embedCmd.Flags().StringVar(&flagWrapTag, "wraptag", "", "Wrapper element")
	embedCmd.Flags().StringVar(&flagClass, "class", "", "Wrapper class")
}

func embedRun(cmd *cobra.Command, args []string) error {
	attrs, err := parseAttrs(flagAttrs)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	page := embed.NewPage()
	res, err := a.renderer.Render(context.Background(), page, render.Request{
		Provider: flagProvider,
		Play:     strings.Join(args, " "),
		Attrs:    attrs,
		WrapTag:  flagWrapTag,
		Class:    flagClass,
	})
	if err != nil {
		return err
	}
	scripts := page.Drain()

	if flagJSON {
		return printJSON(map[string]interface{}{
			"result":  res,
			"scripts": scripts,
		})
	}

	stderr := ui.New(os.Stderr)
	for _, w := range res.Warnings {
		stderr.Warn(w.Kind, w.Message)
	}

	out := ui.Plain(os.Stdout)
	out.Line(res.Markup)
	for _, s := range scripts {
		out.Line(embed.ScriptTag(s))
	}
	return nil
}

func checkRun(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}

	play := strings.Join(args, " ")
	ok := a.renderer.IfPlayer(flagProvider, play)
	a.Close()

	if !ok {
		debugf("nothing to play for %q", play)
		os.Exit(1)
	}
	return nil
}
