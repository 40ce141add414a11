// Command seed creates or refreshes the built-in roles.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/yukikurage/workspace-rbac-api/internal/config"
	"github.com/yukikurage/workspace-rbac-api/internal/database"
	"github.com/yukikurage/workspace-rbac-api/internal/logging"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var reset bool
	var migrate bool
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flagSet.BoolVar(&reset, "reset", false, "delete roles that are not part of the default set")
	flagSet.BoolVar(&migrate, "migrate", true, "run database migrations before seeding")
	flagSet.DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for the seed")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.GinMode)

	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	if migrate {
		if err := database.Migrate(db, log); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	roles := services.NewRoleService(repository.NewRoleRepository(db), log)
	if err := roles.Seed(ctx, reset); err != nil {
		return err
	}

	log.WithField("reset", reset).Info("Roles seeded")
	return nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `seed creates the OWNER, ADMIN and MEMBER roles, updating their
permissions if they already exist. Database settings come from the
same environment variables as the server.

Usage:
  seed [flags]

Flags:
`)
	flagSet.PrintDefaults()
}
