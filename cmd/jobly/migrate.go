package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/migrations"
)

func newMigrateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(newMigrateUpCommand(a))
	cmd.AddCommand(newMigrateDownCommand(a))
	cmd.AddCommand(newMigrateVersionCommand(a))
	cmd.AddCommand(newMigrateForceCommand(a))
	cmd.AddCommand(newMigrateDropCommand(a))

	return cmd
}

func (a *app) migrator(cmd *cobra.Command) (*migrate.Migrate, error) {
	d, err := a.database(cmd.Context())
	if err != nil {
		return nil, err
	}
	// Not closed: the instance shares the pool owned by a.
	return migrations.New(d.Raw(), d.Dialect(), a.log)
}

func newMigrateUpCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.migrator(cmd)
			if err != nil {
				return err
			}
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("up failed: %w", err)
			}
			a.log.Info("migrations: up completed")
			return nil
		},
	}
}

func newMigrateDownCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "down [N]",
		Short: "Roll back N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("down: invalid steps argument %q", args[0])
				}
				steps = n
			}
			m, err := a.migrator(cmd)
			if err != nil {
				return err
			}
			if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("down failed: %w", err)
			}
			a.log.Info("migrations: down completed", "steps", steps)
			return nil
		},
	}
}

func newMigrateVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.migrator(cmd)
			if err != nil {
				return err
			}
			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				a.printf("version: none\n")
				return nil
			}
			if err != nil {
				return fmt.Errorf("version failed: %w", err)
			}
			a.printf("version: %d  dirty: %v\n", v, dirty)
			return nil
		},
	}
}

func newMigrateForceCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "force <V>",
		Short: "Set the schema version without running migrations (clears dirty state)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("force: invalid version %q", args[0])
			}
			m, err := a.migrator(cmd)
			if err != nil {
				return err
			}
			if err := m.Force(v); err != nil {
				return fmt.Errorf("force failed: %w", err)
			}
			a.log.Info("migrations: forced", "version", v)
			return nil
		},
	}
}

func newMigrateDropCommand(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table (development only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				fmt.Fprintln(cmd.ErrOrStderr(), "WARNING: drop will destroy all tables. Type 'yes' to confirm:")
				line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if strings.TrimSpace(line) != "yes" {
					a.printf("aborted\n")
					return nil
				}
			}
			m, err := a.migrator(cmd)
			if err != nil {
				return err
			}
			if err := m.Drop(); err != nil {
				return fmt.Errorf("drop failed: %w", err)
			}
			a.log.Info("migrations: all tables dropped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}
