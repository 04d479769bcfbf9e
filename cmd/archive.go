package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/danielpatrickdp/srl-toolkit/internal/archive"
	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd(a *app) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store a distribution file in the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := distribution.ReadFile(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Put(cmd.Context(), label, d)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), snap.ID)
			return err
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "free-form label stored with the snapshot")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export ID FILE",
		Short: "Write an archived snapshot to a distribution file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := snap.Distribution.WriteFile(args[1]); err != nil {
				return err
			}
			a.logger.Info("snapshot exported", zap.String("snapshot_id", args[0]), zap.String("path", args[1]))
			return nil
		},
	}
}

type listRow struct {
	ID        string `json:"id"`
	Label     string `json:"label,omitempty"`
	Variables int    `json:"variables"`
	Version   int    `json:"format_version"`
	CreatedAt string `json:"created_at"`
}

func newListCmd(a *app) *cobra.Command {
	var (
		last    int
		jsonOut bool
		remote  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remote {
				return listRemote(cmd, a.cfg.Addr, last, jsonOut)
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			snaps, err := store.List(cmd.Context(), last)
			if err != nil {
				return err
			}
			rows := make([]listRow, len(snaps))
			for i, s := range snaps {
				rows[i] = toListRow(s)
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			return printListTable(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "show N most recent snapshots")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of table")
	cmd.Flags().BoolVar(&remote, "remote", false, "list snapshot ids held by the server at --addr")
	return cmd
}

// listRemote prints the ids the server returns, newest first. The server
// caps the listing, so last can only shorten it.
func listRemote(cmd *cobra.Command, addr string, last int, jsonOut bool) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
	defer cancel()
	client, err := dialServer(ctx, addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ids, err := client.List(ctx)
	if err != nil {
		return err
	}
	if last >= 0 && len(ids) > last {
		ids = ids[:last]
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), ids)
	}
	if len(ids) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "no snapshots found")
		return err
	}
	for _, id := range ids {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
			return err
		}
	}
	return nil
}

func toListRow(s archive.Snapshot) listRow {
	return listRow{
		ID:        s.ID,
		Label:     s.Label,
		Variables: s.Variables,
		Version:   s.FormatVersion,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func printListTable(w io.Writer, rows []listRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no snapshots found")
		return err
	}
	fmt.Fprintf(w, "%-36s  %9s  %-20s  %s\n", "Snapshot", "Variables", "Time", "Label")
	fmt.Fprintf(w, "%-36s+-%9s+-%-20s+-%s\n", strings.Repeat("-", 36), "---------", "--------------------", "----------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s  %9d  %-20s  %s\n", r.ID, r.Variables, r.CreatedAt, r.Label)
	}
	return nil
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a snapshot from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Delete(cmd.Context(), args[0])
		},
	}
}
