package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"embedder/internal/media"
	"embedder/internal/oembed"
	"embedder/internal/ui"
)

// oembedFields are the standard fields of an oEmbed response.
var oembedFields = []string{
	"type", "version", "title", "author_name", "author_url",
	"provider_name", "provider_url", "thumbnail_url", "width", "height", "duration",
}

var oembedCmd = &cobra.Command{
	Use:   "oembed <url>",
	Short: "Show the remote oEmbed metadata of a media URL",
	Args:  cobra.ExactArgs(1),
	RunE:  oembedRun,
}

func oembedRun(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, res, err := a.renderer.Pick(flagProvider, args[0])
	if err != nil {
		return err
	}
	entry, err := res.First()
	if err != nil {
		return err
	}
	desc := entry.Descriptor

	if p.Mode() != media.OEmbed {
		return fmt.Errorf("provider %s does not use oembed", p.Name())
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	lookup := oembed.NewClientTimeout(timeout).Lookup(p.Endpoint(), p.MediaURL(desc))
	debugf("oembed request: %s", lookup.URL())

	ctx := context.Background()
	values := make(map[string]string)
	var pairs [][2]string
	for _, name := range oembedFields {
		if v, ok := lookup.Field(ctx, name); ok {
			values[name] = v
			pairs = append(pairs, [2]string{name, v})
		}
	}
	if err := lookup.Err(); err != nil {
		return err
	}
	if src, err := lookup.EmbedSrc(ctx); err == nil {
		values["embed_src"] = src
		pairs = append(pairs, [2]string{"embed_src", src})
	}

	if flagJSON {
		return printJSON(values)
	}

	out := ui.New(os.Stdout)
	out.Title(lookup.MediaURL())
	out.Fields(pairs)
	return nil
}
