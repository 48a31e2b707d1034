package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"scristobal/commandbot/commands"
	"scristobal/commandbot/config"
	"scristobal/commandbot/delegate"
	"scristobal/commandbot/handlers"
	"scristobal/commandbot/health"
	"scristobal/commandbot/logger"
	"scristobal/commandbot/messenger"
	"scristobal/commandbot/store"
	"scristobal/commandbot/telegram"
)

var rootCmd = &cobra.Command{
	Use:   "commandbot",
	Short: "Telegram bot answering a fixed set of commands",
	Long: `commandbot listens for private messages and mentions, runs the command
named by the first word and keeps a small profile per user.

Settings come from a YAML file, the environment (a .env file included)
and the flags below, later sources winning.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	config.BindFlags(rootCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {

	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path, envFile)

	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	log := logger.New(logger.Level(cfg.LoggingLevel), os.Stdout)
	defer log.Sync()

	boot := log.Scope("main")

	boot.Printf("Logging at %s level", log.Threshold())

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	persist, closeStore, err := openStore(cfg.StorePath)

	if err != nil {
		return err
	}

	defer closeStore()

	client, err := telegram.New(cfg.BotToken, log)

	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}

	me, err := client.Connect(ctx)

	if err != nil {
		return err
	}

	db := store.New(persist, client, log)
	m := messenger.New(client, log)

	var fallback commands.FallbackFunc

	switch cfg.Fallback {
	case config.FallbackOpenAI:
		d := delegate.New(delegate.NewClient(cfg.OpenAIToken, cfg.OpenAIBaseURL), client, log, cfg.OpenAIModel)
		fallback = d.Fallback
	default:
		fallback = commands.ReplyFallback(client, cfg.FallbackText)
	}

	registry := commands.New(log, m,
		commands.WithPreamble(cfg.HelpPreamble),
		commands.WithFallback(fallback),
	)

	teamID := strconv.FormatInt(me.ID, 10)

	if err := handlers.Install(registry, db, m, client, teamID); err != nil {
		return err
	}

	_, err = db.Teams.Overwrite(ctx, teamID, store.Record{
		"name":       "@" + me.Username,
		"started_at": time.Now().UTC().Format(time.RFC3339),
	})

	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return client.Listen(ctx, registry)
	})

	g.Go(func() error {
		return health.Serve(ctx, cfg.Port)
	})

	boot.Print("Bot online, listening to messages...")

	err = g.Wait()

	boot.Print("Bot stopped")

	return err
}

func openStore(path string) (store.Persistence, func(), error) {

	if path == "" {
		return store.NewMemory(), func() {}, nil
	}

	db, err := store.OpenSQLite(path)

	if err != nil {
		return nil, nil, fmt.Errorf("error opening store: %w", err)
	}

	return db, func() { db.Close() }, nil
}
