package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/config"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/database"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// Exit codes for the migrate command.
const (
	exitSuccess = 0
	exitFailure = 1
)

const usage = "Usage: migrate <up|down [steps]|version|force <version>>"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return exitFailure
	}

	command := args[0]
	arg, err := parseArg(command, args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		return exitFailure
	}

	cfg, err := config.Load(config.GetConfigPath("config.yml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFailure
	}

	log, err := logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitFailure
	}
	defer func() { _ = log.Sync() }()

	db, err := database.New(context.Background(), &cfg.Database, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return exitFailure
	}
	defer func() { _ = db.Close() }()

	migrator, err := database.NewMigrator(db.DB, os.Getenv("MIGRATIONS_PATH"), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrator: %v\n", err)
		return exitFailure
	}

	if runErr := runCommand(migrator, command, arg); runErr != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", command, runErr)
		return exitFailure
	}
	return exitSuccess
}

func parseArg(command string, rest []string) (int, error) {
	switch command {
	case "up", "version":
		return 0, nil
	case "down":
		if len(rest) == 0 {
			return 1, nil
		}
		steps, err := strconv.Atoi(rest[0])
		if err != nil || steps < 1 {
			return 0, fmt.Errorf("invalid steps: %q", rest[0])
		}
		return steps, nil
	case "force":
		if len(rest) == 0 {
			return 0, errors.New("force requires a version")
		}
		version, err := strconv.Atoi(rest[0])
		if err != nil {
			return 0, fmt.Errorf("invalid version: %q", rest[0])
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unknown command: %q", command)
	}
}

func runCommand(m *database.Migrator, command string, arg int) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down(arg)
	case "force":
		return m.Force(arg)
	default:
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	}
}
