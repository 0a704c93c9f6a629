package seed

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/CobrasOrg/auth-service/internal/config"
	"github.com/CobrasOrg/auth-service/internal/database"
)

type options struct {
	envFile string
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Database seed tooling"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newApplyCommand(opts), newDryRunCommand(opts))
	return cmd
}

func newApplyCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply",
		Short: "Migrate schema and apply demo account seed data",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := func() ([]string, error) {
				_, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				if err := database.Migrate(db); err != nil {
					return nil, err
				}
				report, err := database.Seed(db)
				if err != nil {
					return nil, err
				}
				if report.Noop {
					return []string{"demo accounts already present"}, nil
				}
				return []string{fmt.Sprintf("created %d demo accounts", report.CreatedUsers)}, nil
			}()
			if opts.ci {
				printCIResult(err == nil, "seed apply", details, err)
			} else if err == nil {
				for _, d := range details {
					fmt.Println(d)
				}
			}
			if err != nil {
				if !opts.ci {
					fmt.Fprintln(os.Stderr, err)
				}
				os.Exit(3)
			}
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show what seeding would do",
		RunE: func(cmd *cobra.Command, args []string) error {
			details := []string{
				"would migrate the users table",
				"would ensure demo accounts: owner@example.com, clinic@example.com",
			}
			if opts.ci {
				printCIResult(true, "seed dry-run", details, nil)
				return nil
			}
			for _, d := range details {
				fmt.Println(d)
			}
			return nil
		},
	}
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
