package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"embedder/internal/provider"
	"embedder/internal/ui"
)

var providersCmd = &cobra.Command{
	Use:   "providers [name]",
	Short: "List providers or describe one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  providersRun,
}

func providersRun(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return listProviders(reg)
	}

	p, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	return describeProvider(p.Info())
}

func listProviders(reg *provider.Registry) error {
	var infos []provider.Info
	for _, p := range reg.All() {
		infos = append(infos, p.Info())
	}

	if flagJSON {
		return printJSON(infos)
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		src := info.Src
		if src == "" {
			src = info.Endpoint
		}
		rows = append(rows, []string{info.Name, info.Mode, strings.Join(info.Types, ", "), src})
	}
	ui.New(os.Stdout).Table([]string{"PROVIDER", "MODE", "TYPES", "PLAYER"}, rows)
	return nil
}

func describeProvider(info provider.Info) error {
	if flagJSON {
		return printJSON(info)
	}

	out := ui.New(os.Stdout)
	out.Title(info.Name)

	fields := [][2]string{{"mode", info.Mode}}
	if info.Src != "" {
		fields = append(fields, [2]string{"src", info.Src})
	}
	if info.Endpoint != "" {
		fields = append(fields, [2]string{"endpoint", info.Endpoint})
	}
	if info.Script != "" {
		fields = append(fields, [2]string{"script", info.Script})
	}
	fields = append(fields,
		[2]string{"types", strings.Join(info.Types, ", ")},
		[2]string{"attributes", strings.Join(info.Attributes, ", ")},
	)
	out.Fields(fields)

	if len(info.Params) > 0 {
		rows := make([][]string, 0, len(info.Params))
		for _, p := range info.Params {
			valid := strings.Join(p.Valid, " | ")
			if valid == "" {
				valid = "any"
			}
			rows = append(rows, []string{p.Attribute, p.Default, valid, p.Type})
		}
		out.Table([]string{"ATTRIBUTE", "DEFAULT", "VALID", "INPUT"}, rows)
	}
	return nil
}
