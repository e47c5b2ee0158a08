// Command sender posts the rendered charts to the configured WhatsApp groups
// through a logged-in Chrome profile.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"opsreports/internal/config"
	"opsreports/internal/files"
	"opsreports/internal/infrastructure"
	"opsreports/internal/messenger"
)

func main() {
	configFile := flag.String("config", "", "config file (default: config.yaml or configs/config.yaml)")
	dir := flag.String("dir", "", "directory holding the .png charts (defaults to the output directory)")
	groups := flag.String("groups", "", "comma separated group names (defaults to messenger.groups)")
	headless := flag.Bool("headless", false, "run browser headless")
	dryRun := flag.Bool("dry-run", false, "list what would be sent without opening the browser")
	flag.Parse()

	if err := run(*configFile, *dir, *groups, *headless, *dryRun); err != nil {
		slog.Error("sender failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(configFile, dir, groupList string, headless, dryRun bool) error {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.LoadFrom(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	logger = infrastructure.WithComponent(logger, "sender")

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = paths.OutputDir
	}
	if headless {
		cfg.Messenger.Headless = true
	}

	targets := cfg.Messenger.Groups
	if groupList != "" {
		targets = splitGroups(groupList)
	}
	if len(targets) == 0 {
		logger.Warn("no groups configured, nothing to send")
		return nil
	}

	charts, err := files.NewDiscovery("").FindCharts(dir)
	if err != nil {
		return err
	}
	attachments := messenger.Attachments(charts)

	logger.Info("charts discovered",
		slog.String("dir", dir),
		slog.Int("charts", len(attachments)),
		slog.Any("groups", targets))

	if dryRun {
		for _, a := range attachments {
			logger.Info("would send", slog.String("file", a.Name), slog.String("caption", a.Caption))
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := messenger.NewSender(cfg.Messenger, nil, nil, logger)
	return sender.SendAll(ctx, targets, attachments)
}

func splitGroups(list string) []string {
	var groups []string
	for _, g := range strings.Split(list, ",") {
		if g = strings.TrimSpace(g); g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}
