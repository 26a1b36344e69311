package main

import (
	"os"
	"os/signal"
	"stickynotes/internal/server"
	"stickynotes/internal/sessions"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStores(ctx, cfg.Database.AutoMigrate)
		if err != nil {
			return err
		}
		defer st.Close()

		storage, err := sessions.NewStorage(ctx, cfg, zlog)
		if err != nil {
			return err
		}
		if storage != nil {
			defer storage.Close()
		}

		srv, err := server.New(cfg, zlog, server.Deps{
			DB:      st.db,
			Users:   st.users,
			Notes:   st.notes,
			Storage: storage,
		})
		if err != nil {
			return err
		}
		defer srv.Close()
		srv.RegisterFiberRoutes()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen(cfg.Server.Addr())
		}()
		zlog.Info("server started", zap.String("addr", cfg.Server.Addr()), zap.String("env", cfg.App.Env))

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		zlog.Info("shutting down")
		return srv.ShutdownWithTimeout(shutdownTimeout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
