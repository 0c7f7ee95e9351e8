package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/blogapi"
)

var feedOut string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := blogapi.LoadConfig()
		if err != nil {
			return err
		}
		app := blogapi.New(cfg)
		defer app.Close()
		if err := app.Init(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			log.Printf("listening on %s", cfg.Addr)
			if err := app.Echo.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Shutdown(shutdownCtx)
	},
}

var rssCmd = &cobra.Command{
	Use:   "rss",
	Short: "Write the RSS feed of the newest active posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		n, err := app.GenerateFeed(cmd.Context(), feedOut)
		if err != nil {
			return fmt.Errorf("generate rss: %w", err)
		}
		log.Printf("rss feed with %d posts written to %s", n, feedOut)
		return nil
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill-og",
	Short: "Set the og:image of every post that has none",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		n, err := app.Posts.BackfillOGImages(cmd.Context())
		if err != nil {
			return err
		}
		log.Printf("updated og image of %d posts", n)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("blogapi %s\n", version)
	},
}

func init() {
	rssCmd.Flags().StringVarP(&feedOut, "out", "o", "rss.xml", "Output file")
	rootCmd.AddCommand(serveCmd, rssCmd, backfillCmd, versionCmd)
}
