package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"github.com/danielpatrickdp/srl-toolkit/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const rpcTimeout = 30 * time.Second

// dialServer connects to the configured server and fails fast when it is
// not serving.
func dialServer(ctx context.Context, addr string) (*service.Client, error) {
	client, err := service.NewClient(addr)
	if err != nil {
		return nil, err
	}
	if err := client.Ready(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("server %s not ready: %w", addr, err)
	}
	return client, nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			lis, err := net.Listen("tcp", a.cfg.Addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", a.cfg.Addr, err)
			}

			srv := service.NewServer(store, a.logger)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				a.logger.Info("shutting down", zap.String("addr", a.cfg.Addr))
				srv.GracefulStop()
			}()

			return srv.Serve(lis)
		},
	}
}

func newPushCmd(a *app) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "push FILE",
		Short: "Upload a distribution file to a running srl server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := distribution.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
			defer cancel()
			client, err := dialServer(ctx, a.cfg.Addr)
			if err != nil {
				return err
			}
			defer client.Close()

			id, err := client.Put(ctx, label, d)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), id)
			return err
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "free-form label stored with the snapshot")
	return cmd
}

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch ID FILE",
		Short: "Download a snapshot from a running srl server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
			defer cancel()
			client, err := dialServer(ctx, a.cfg.Addr)
			if err != nil {
				return err
			}
			defer client.Close()

			d, err := client.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return d.WriteFile(args[1])
		},
	}
}
