package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func (r *root) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change settings stored in the database",
	}

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := r.app.notes.ConfigGet(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(r.streams.Out, v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.notes.ConfigSet(cmd.Context(), args[0], args[1])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print all settings",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := r.app.notes.ConfigList(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(r.streams.Out, "%s=%s\n", k, all[k])
			}
			return nil
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.app.notes.ConfigUnset(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(get, set, list, unset)
	return cmd
}
