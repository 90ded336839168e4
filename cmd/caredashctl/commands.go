package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/caredash-api/internal/config"
	"github.com/jwalitptl/caredash-api/internal/model"
	"github.com/jwalitptl/caredash-api/internal/repository"
	"github.com/jwalitptl/caredash-api/internal/repository/file"
	"github.com/jwalitptl/caredash-api/internal/repository/postgres"
	"github.com/jwalitptl/caredash-api/internal/service/doctor"
	"github.com/jwalitptl/caredash-api/internal/service/patient"
	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/listquery"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
	"github.com/jwalitptl/caredash-api/pkg/security"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "caredashctl",
		Short:        "CareDash data and operator tooling",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "path to a config file")

	cmd.AddCommand(importCmd(), doctorsCmd(), patientsCmd(), hashPasswordCmd())
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

type (
	doctorWriter interface {
		Replace(ctx context.Context, doc *model.DoctorsDocument) error
	}
	patientWriter interface {
		Replace(ctx context.Context, doc *model.PatientsDocument) error
	}
)

func isNoData(err error) bool {
	return errors.Is(err, errors.ErrNoData)
}

// importData copies the JSON documents of a data directory into dst. Missing
// documents are skipped.
func importData(ctx context.Context, src *file.Store, doctors doctorWriter, patients patientWriter) (imported []string, err error) {
	docs, err := file.NewDoctorRepository(src).Load(ctx)
	switch {
	case err == nil:
		if err := doctors.Replace(ctx, docs); err != nil {
			return imported, err
		}
		imported = append(imported, fmt.Sprintf("%d doctors", len(docs.Doctors)))
	case !isNoData(err):
		return imported, err
	}

	pats, err := file.NewPatientRepository(src).Load(ctx)
	switch {
	case err == nil:
		if err := patients.Replace(ctx, pats); err != nil {
			return imported, err
		}
		imported = append(imported, fmt.Sprintf("%d patients", len(pats.Patients)))
	case !isNoData(err):
		return imported, err
	}

	return imported, nil
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load the data directory into the postgres storage driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir, err := cmd.Flags().GetString("dir")
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Storage.DataDir
			}

			db, err := postgres.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			base := postgres.NewBaseRepository(db)
			if err := base.Migrate(cmd.Context()); err != nil {
				return err
			}

			imported, err := importData(cmd.Context(), file.NewStore(dir),
				postgres.NewDoctorRepository(base), postgres.NewPatientRepository(base))
			if err != nil {
				return err
			}
			log.Info().Str("dir", dir).Strs("imported", imported).Msg("import complete")
			return nil
		},
	}
	cmd.Flags().String("dir", "", "data directory (defaults to storage.data_dir)")
	return cmd
}

// sources opens the configured storage driver for reading.
func sources(cfg *config.Config) (repository.DoctorRepository, repository.PatientRepository, func(), error) {
	if cfg.Storage.Driver != config.StoragePostgres {
		store := file.NewStore(cfg.Storage.DataDir)
		return file.NewDoctorRepository(store), file.NewPatientRepository(store), func() {}, nil
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	base := postgres.NewBaseRepository(db)
	return postgres.NewDoctorRepository(base), postgres.NewPatientRepository(base), func() { db.Close() }, nil
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().String("search", "", "case-insensitive search term")
	cmd.Flags().StringToString("filter", nil, "exact-match filters, e.g. --filter department=Neurology")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("page-size", 10, "page size")
	cmd.Flags().Bool("all", false, "return every matching record")
}

func listQuery(cmd *cobra.Command) (listquery.Query, error) {
	var (
		q   listquery.Query
		err error
	)
	flags := cmd.Flags()
	if q.Search, err = flags.GetString("search"); err != nil {
		return q, err
	}
	if q.Selections, err = flags.GetStringToString("filter"); err != nil {
		return q, err
	}
	if q.Page, err = flags.GetInt("page"); err != nil {
		return q, err
	}
	if q.PageSize, err = flags.GetInt("page-size"); err != nil {
		return q, err
	}
	if q.ShowAll, err = flags.GetBool("all"); err != nil {
		return q, err
	}
	return q, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func doctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctors",
		Short: "List doctors through the same search and filter pipeline as the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			doctors, _, closeFn, err := sources(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			svc := doctor.NewService(doctors, cache.New(0, 0), 0, metrics.NewNop())
			q, err := listQuery(cmd)
			if err != nil {
				return err
			}
			page, _, err := svc.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	addListFlags(cmd)
	return cmd
}

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List enriched patients through the same search and filter pipeline as the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			_, patients, closeFn, err := sources(cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			svc := patient.NewService(patients, cache.New(0, 0), 0, metrics.NewNop())
			q, err := listQuery(cmd)
			if err != nil {
				return err
			}
			page, err := svc.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	addListFlags(cmd)
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.operator_password_hash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := security.NewBcryptHasher(0).Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
