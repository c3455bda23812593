package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/uschtwill/trackd/internal/configfile"
	"github.com/uschtwill/trackd/internal/storage/sqlite"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the .trackd data directory and database",
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		backend, _ := cmd.Flags().GetString("backend")

		if backend != configfile.BackendSQLite {
			FatalError("unsupported backend for init: %s", backend)
		}

		if err := os.MkdirAll(dir, 0750); err != nil {
			FatalError("creating %s: %v", dir, err)
		}

		existing, err := configfile.Load(dir)
		if err != nil {
			FatalError("%v", err)
		}
		if existing != nil {
			FatalError("%s already initialized", dir)
		}

		cfg := configfile.DefaultConfig()
		cfg.Backend = backend
		cfg.Version = version
		if err := cfg.Save(dir); err != nil {
			FatalError("%v", err)
		}

		// Opening the store creates the database and applies the schema.
		store, err := sqlite.New(context.Background(), cfg.DatabasePath(dir))
		if err != nil {
			FatalError("creating database: %v", err)
		}
		if err := store.Close(); err != nil {
			FatalError("closing database: %v", err)
		}

		abs, _ := filepath.Abs(dir)
		fmt.Printf("Initialized trackd in %s\n", abs)
	},
}

func init() {
	initCmd.Flags().String("dir", ".trackd", "data directory to create")
	initCmd.Flags().String("backend", configfile.BackendSQLite, "storage backend")
}
