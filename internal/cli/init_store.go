package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/grocery-share/internal/config"
	"github.com/mrlokans/grocery-share/internal/database"
)

// InitStoreCommand creates the database file and schema, then exits.
type InitStoreCommand struct {
	DatabasePath string
	Timeout      time.Duration
}

func NewInitStoreCommand() *InitStoreCommand {
	return &InitStoreCommand{}
}

func (cmd *InitStoreCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.DurationVar(&cmd.Timeout, "timeout", 30*time.Second, "How long to wait for the database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s init [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create the database and its tables if they do not exist.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s init\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s init -db ./data/grocery-share.db\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *InitStoreCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	store := openStore(cmd.DatabasePath)
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize %s: %w", cmd.DatabasePath, err)
	}

	fmt.Printf("Database ready at %s\n", cmd.DatabasePath)
	return nil
}

func openStore(path string) *database.Manager {
	return database.NewManager(database.Options{
		Name: config.DefaultConnectionName,
		Path: path,
	})
}
