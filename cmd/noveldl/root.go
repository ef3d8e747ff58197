// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HalCanary/noveldl/book"
	"github.com/HalCanary/noveldl/config"
	"github.com/HalCanary/noveldl/download"
	"github.com/HalCanary/noveldl/humanize"
	"github.com/HalCanary/noveldl/source"
)

var cfgFile string

// Used for every page request; nil means http.DefaultClient.
var httpClient *http.Client

var rootCmd = &cobra.Command{
	Use:   "noveldl [flags] URL",
	Short: "Download a web novel into a single text file",
	Long: `noveldl fetches every chapter of a novel from a supported site, several at
a time, and writes them in reading order to "<title>.txt".

Supported hosts:
  ` + strings.Join(sortedHosts(), "\n  "),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./noveldl.yaml or ~/.noveldl/noveldl.yaml)",
	)
	flags := rootCmd.Flags()
	flags.IntP(config.KeyConcurrency, "c", 0, "simultaneous chapter downloads (default: chosen per site)")
	flags.StringP(config.KeyOutput, "o", "", "directory for the merged file (default: current directory)")
	flags.String(config.KeyUserAgent, "", "HTTP User-Agent header")
	flags.BoolP(config.KeyVerbose, "v", false, "debug logging")
}

func sortedHosts() []string {
	hosts := source.Hosts()
	sort.Strings(hosts)
	return hosts
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), cfgFile)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	src, err := source.Open(args[0], source.Options{
		Client: &download.Client{HTTP: httpClient, UserAgent: cfg.UserAgent},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	res, err := book.Download(cmd.Context(), src, book.Options{
		Concurrency: cfg.Concurrency,
		OutputDir:   cfg.Output,
		Progress:    book.NewBarProgress(cmd.ErrOrStderr(), "chapters"),
		Logger:      logger,
	})
	if errors.Is(err, book.ErrCancelled) {
		logger.Info("cancelled, temporary files removed")
		return nil
	}
	if err != nil {
		return err
	}

	if len(res.Omitted) > 0 {
		names := make([]string, len(res.Omitted))
		for i, ch := range res.Omitted {
			names[i] = ch.Name
		}
		logger.Warn("some chapters could not be downloaded",
			"omitted", len(res.Omitted), "of", res.Chapters, "chapters", names)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%7s written to %q\n", humanize.Humanize(int64(res.Size)), res.Path)
	return nil
}
