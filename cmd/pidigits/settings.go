package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/pidigits/internal/store"
)

var (
	settingsDelete bool
	settingsClear  bool
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings [KEY [VALUE]]",
		Short: "List, read, or write stored settings",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runSettingsCmd,
	}
	cmd.Flags().BoolVar(&settingsDelete, "delete", false, "delete KEY")
	cmd.Flags().BoolVar(&settingsClear, "clear", false, "delete every setting")
	return cmd
}

func runSettingsCmd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return applySettings(context.Background(), cmd.OutOrStdout(), st, args, settingsDelete, settingsClear)
}

func applySettings(ctx context.Context, w io.Writer, st *store.Store, args []string, del, clearAll bool) error {
	switch {
	case clearAll:
		if len(args) > 0 {
			return fmt.Errorf("--clear takes no arguments")
		}
		return st.ClearSettings(ctx)
	case del:
		if len(args) != 1 {
			return fmt.Errorf("--delete requires exactly KEY")
		}
		return st.DeleteSetting(ctx, args[0])
	case len(args) == 2:
		if args[0] == store.KeyAdsRemoved {
			return setBoolSetting(ctx, st, args[0], args[1])
		}
		return st.SetString(ctx, args[0], args[1])
	case len(args) == 1:
		value, ok, err := st.GetString(ctx, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("setting %q is not set", args[0])
		}
		_, err = fmt.Fprintln(w, value)
		return err
	}
	all, err := st.ListSettings(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s = %s\n", k, all[k]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func setBoolSetting(ctx context.Context, st *store.Store, key, raw string) error {
	switch raw {
	case "true", "1", "yes", "on":
		return st.SetBool(ctx, key, true)
	case "false", "0", "no", "off":
		return st.SetBool(ctx, key, false)
	default:
		return fmt.Errorf("setting %q expects a boolean, got %q", key, raw)
	}
}
