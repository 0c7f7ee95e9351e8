// Command blogapi runs the content API server and its maintenance jobs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eringen/blogapi"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "blogapi",
	Short: "Content API for posts, categories, images, quotes and newsletters",
	Long: `blogapi serves the blog REST API and runs its maintenance jobs.

Configuration is read from the environment; a .env file in the working
directory is loaded first when present.

Examples:
  blogapi serve
  blogapi rss --out public/rss.xml
  blogapi backfill-og`,
	SilenceUsage: true,
	Version:      version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp loads configuration and returns an App with its backends open.
func newApp() (*blogapi.App, error) {
	cfg, err := blogapi.LoadConfig()
	if err != nil {
		return nil, err
	}
	app := blogapi.New(cfg)
	if err := app.Open(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}
