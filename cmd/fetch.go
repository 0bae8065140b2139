package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/foglio/clipper/internal/clip"
	"github.com/foglio/clipper/internal/extractor"
	"github.com/foglio/clipper/internal/fetcher"
)

// newFetchCmd creates the 'fetch' subcommand: a one-shot fetch and extract
// that prints the result as JSON. It talks to no store, so it works without
// Redis.
func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch URL",
		Short: "Fetch a single page and print its extracted content",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f := newFetcher(cfg, logger)
	defer f.Close()

	resp, err := f.Fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !fetcher.IsResponseValid(resp) {
		return &clip.FetchError{URL: resp.URL, Err: errors.New("response is not valid HTML")}
	}

	article, err := extractor.New(cfg.Extractor.MinContentLength).ExtractArticle(string(resp.Body), resp.URL)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(article, "", "  ")
	if err != nil {
		return fmt.Errorf("encode article: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
