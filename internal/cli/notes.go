package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sboosali/notegraph/pkg/storage"
)

// notesCommand creates the notes management command.
func (c *CLI) notesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage the stored notes",
		Long: `Manage the notes that draw, render and explore use when no file is given.
Where they are kept is set by the [storage] section of the config.`,
	}

	cmd.AddCommand(c.notesGetCommand())
	cmd.AddCommand(c.notesSetCommand())
	cmd.AddCommand(c.notesPathCommand())

	return cmd
}

// withStore runs fn with the configured note store open.
func (c *CLI) withStore(ctx context.Context, fn func(storage.Store) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// notesGetCommand creates the "notes get" subcommand.
func (c *CLI) notesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(store storage.Store) error {
				text, ok, err := store.Get(ctx, storage.NotesKey)
				if err != nil {
					return err
				}
				if !ok {
					printInfo("No notes stored")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

// notesSetCommand creates the "notes set" subcommand.
func (c *CLI) notesSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <notes-file|->",
		Short: "Store a note file as the current notes",
		Args:  cobra.ExactArgs(1),
		// "-" reads stdin; files complete to note extensions.
		ValidArgsFunction: completeNoteFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, func(store storage.Store) error {
				text, err := readNotes(ctx, store, args[0])
				if err != nil {
					return err
				}
				if err := store.Set(ctx, storage.NotesKey, text); err != nil {
					return err
				}
				printSuccess("Stored %d bytes from %s", len(text), notesName(args[0]))
				return nil
			})
		},
	}
}

// notesPathCommand creates the "notes path" subcommand.
func (c *CLI) notesPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the notes are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			loc, err := storeLocation(cfg.StorageOptions())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
}

// storeLocation describes where a store keeps the notes without connecting
// to a database.
func storeLocation(cfg storage.Config) (string, error) {
	switch orDefault(cfg.Backend, storage.BackendFile) {
	case storage.BackendFile:
		fs, err := storage.NewFileStore(cfg.Path)
		if err != nil {
			return "", err
		}
		return fs.Path(storage.NotesKey), nil
	case storage.BackendSQLite:
		if cfg.Path != "" {
			return cfg.Path, nil
		}
		return storage.DefaultSQLitePath()
	case storage.BackendRedis:
		return "redis://" + orDefault(cfg.RedisAddr, "localhost:6379") + "/" + storage.DefaultRedisPrefix + storage.NotesKey, nil
	case storage.BackendMongo:
		return orDefault(cfg.MongoURI, storage.DefaultMongoURI), nil
	case storage.BackendMemory:
		return "memory (not persisted)", nil
	default:
		return "", fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
