// File: cmd/chatcli/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/iyunix/go-aichat/internal/app"
	"github.com/iyunix/go-aichat/internal/config"
	"github.com/iyunix/go-aichat/internal/services"
	"github.com/iyunix/go-aichat/internal/stores"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("chatcli", pflag.ContinueOnError)
	dbPath := flagSet.String("db", "", "sqlite database file (overrides SQLITE_PATH)")
	memory := flagSet.Bool("memory", false, "keep all data in memory for this session")
	envFile := flagSet.String("env", "", "load environment variables from this file")
	historyPath := flagSet.String("history", defaultHistoryPath(), "line history file")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Usage = func() { printHelp(flagSet) }

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			return fmt.Errorf("load %s: %w", *envFile, err)
		}
	}
	cfg, err := config.New()
	if err != nil {
		return err
	}
	switch {
	case *memory:
		cfg.StorageDriver = "memory"
	case *dbPath != "":
		cfg.StorageDriver = "sqlite"
		cfg.SQLitePath = *dbPath
	}

	level := "error"
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level = v
	}
	logger := services.NewProductionLogger(services.LoggerConfig{
		Service: "chatcli",
		Level:   level,
		Pretty:  true,
		Output:  os.Stderr,
	})

	store, err := app.ProvideStore(cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	application, err := app.New(cfg, store, nil, logger)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer application.Close()

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeCommand)
	loadHistory(line, *historyPath)
	defer func() {
		saveHistory(line, *historyPath)
		line.Close()
	}()

	s := &session{
		out:    os.Stdout,
		chat:   stores.NewChatStore(application.ChatService, logger),
		users:  stores.NewUserStore(application.UserService, stores.NewTokenStore(application.Store), logger),
		health: application.AIClient,
		password: func(prompt string) (string, error) {
			return line.PasswordPrompt(prompt)
		},
	}

	s.users.Initialize(context.Background())
	fmt.Fprintln(s.out, "go-aichat terminal client. Type /help for commands.")

	for {
		input, err := line.Prompt(s.prompt())
		if err != nil {
			// Ctrl+C at the prompt or Ctrl+D both end the session.
			fmt.Fprintln(s.out)
			return nil
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		// Ctrl+C while a request is running cancels that request only.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		quit := s.handle(ctx, input)
		stop()
		if quit {
			return nil
		}
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "Usage: chatcli [flags]\n\nFlags:\n")
	flagSet.PrintDefaults()
}

func defaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "go-aichat", "chatcli_history")
}

func loadHistory(line *liner.State, path string) {
	if f, err := os.Open(path); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
