package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/auth"
	"tidemark/cmd/client/cmd/collection"
	"tidemark/cmd/client/cmd/sync"
	"tidemark/cmd/client/cmd/types"
	"tidemark/internal/app/client"
	"tidemark/internal/app/client/config"
	"tidemark/internal/utils/logger"
)

const logFileName = "tidemark.log"

var (
	cfgFile   string
	serverURL string
	app       *client.App
)

var rootCmd = &cobra.Command{
	Use:   "tidemark",
	Short: "tidemark keeps stream bookmarks in sync across your devices",
	Long: `tidemark stores timestamped stream records, folders and channel bookmarks
locally and synchronizes them with the tidemark sync service.

Every change is applied locally first. Changes made offline are queued and
pushed once the service is reachable again.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg := config.MustLoad(cfgFile)
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	// Only the daemon logs to stdout by default; other commands keep it for output.
	logFile := cfg.LogFile
	if logFile == "" && cmd.Name() != sync.RunCmd.Name() {
		logFile = filepath.Join(cfg.DataDir, logFileName)
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	log := logger.NewWithFile(cfg.Env, logFile)

	var err error
	app, err = client.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("init client: %w", err)
	}
	cmd.SetContext(types.WithApp(cmd.Context(), app))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	return app.Close()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "sync service URL")

	rootCmd.AddCommand(
		auth.LoginCmd,
		auth.RegisterCmd,
		auth.LogoutCmd,
		sync.SyncCmd,
		sync.StatusCmd,
		sync.RunCmd,
		sync.QueueCmd,
		sync.DirectCmd,
		collection.RecordCmd,
		collection.FolderCmd,
		collection.BookmarkCmd,
	)
}
