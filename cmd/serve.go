package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adocshq/adocs/internal/server"
)

var (
	servePort     int
	serveAllowAll bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the documentation generation HTTP service",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)
		if servePort != 0 {
			cfg.Port = servePort
		}

		a, err := buildApp(cfg, true)
		exitOnError(err)
		defer a.Close()

		// Serve whatever snapshot is already on disk; an empty
		// knowledge base still serves, without exemplars.
		if snap, err := a.rebuilder.Restore(context.Background()); err != nil {
			exitOnError(fmt.Errorf("loading knowledge base: %w", err))
		} else if snap == nil {
			log.Printf("no knowledge base snapshot found, run `adocs build` to create one")
		}

		srv := server.New(server.Config{
			Port:     cfg.Port,
			AllowAll: serveAllowAll,
		}, a.service, a.rebuilder, a.history)

		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)

		go func() {
			if err := srv.Start(); err != nil {
				log.Printf("server stopped: %v", err)
			}
		}()

		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override configured port")
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
