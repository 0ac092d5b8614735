package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"embedder/internal/httputil"
	"embedder/internal/prefs"
	"embedder/internal/provider"
	"embedder/internal/render"
	"embedder/internal/ui"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Read and edit stored player preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored preference",
	Args:  cobra.ExactArgs(1),
	RunE:  prefsGetRun,
}

var prefsSetCmd = &cobra.Command{
	Use:     "set <key> <value>",
	Short:   "Store a preference",
	Example: "  embedder prefs set youtube_width 800\n  embedder prefs set player_responsive true",
	Args:    cobra.ExactArgs(2),
	RunE:    prefsSetRun,
}

var prefsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored preferences",
	Args:  cobra.NoArgs,
	RunE:  prefsListRun,
}

var prefsDefaultsCmd = &cobra.Command{
	Use:   "defaults [provider]",
	Short: "List every known preference with its default and stored value",
	Args:  cobra.MaximumNArgs(1),
	RunE:  prefsDefaultsRun,
}

func init() {
	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd, prefsListCmd, prefsDefaultsCmd)
}

func prefsGetRun(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	v, ok := store.Get(args[0])
	if !ok {
		return fmt.Errorf("preference %q is not set", args[0])
	}
	fmt.Println(v)
	return nil
}

func prefsSetRun(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := httputil.ValidateKey(key); err != nil {
		return fmt.Errorf("invalid preference key: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Set(key, value); err != nil {
		return err
	}
	debugf("set %s = %q", key, value)
	return nil
}

func prefsListRun(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		return err
	}

	if flagJSON {
		values := make(map[string]string, len(keys))
		for _, k := range keys {
			values[k], _ = store.Get(k)
		}
		return printJSON(values)
	}

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		v, _ := store.Get(k)
		rows = append(rows, []string{k, v})
	}
	ui.New(os.Stdout).Table([]string{"KEY", "VALUE"}, rows)
	return nil
}

type prefRow struct {
	Key     string `json:"key"`
	Default string `json:"default"`
	Value   string `json:"value,omitempty"`
	Stored  bool   `json:"stored"`
}

// catalogue lists the global switches followed by the preferences of each
// provider, with their stored values.
func catalogue(reg *provider.Registry, store prefs.Store, only string) ([]prefRow, error) {
	var known []provider.Pref
	if only == "" {
		known = append(known, provider.Pref{Key: prefs.Key(cfg.Plugin, render.ResponsiveAttr), Default: "false"})
		for _, p := range reg.All() {
			known = append(known, p.Prefs()...)
		}
	} else {
		p, err := reg.Get(only)
		if err != nil {
			return nil, err
		}
		known = p.Prefs()
	}

	rows := make([]prefRow, 0, len(known))
	for _, k := range known {
		v, ok := store.Get(k.Key)
		rows = append(rows, prefRow{Key: k.Key, Default: k.Default, Value: v, Stored: ok})
	}
	return rows, nil
}

func prefsDefaultsRun(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	only := ""
	if len(args) == 1 {
		only = args[0]
	}
	rows, err := catalogue(reg, store, only)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(rows)
	}

	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		value := "-"
		if r.Stored {
			value = r.Value
		}
		table = append(table, []string{r.Key, r.Default, value})
	}
	ui.New(os.Stdout).Table([]string{"KEY", "DEFAULT", "STORED"}, table)
	return nil
}
