package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"hrmgo/internal/platform/legacy"
)

const maxImportBatch = 500

// importResult mirrors the body returned by POST /api/v1/employees/import.
type importResult struct {
	Created  int `json:"created"`
	Skipped  int `json:"skipped"`
	Failures []struct {
		Index    int    `json:"index"`
		LegacyID *int64 `json:"legacyId"`
		Reason   string `json:"reason"`
	} `json:"failures"`
}

func newLegacyCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Work with a legacy HRMGO database",
	}
	cmd.AddCommand(newLegacyImportCommand(e))
	return cmd
}

func newLegacyImportCommand(e *env) *cobra.Command {
	var (
		dsn       string
		src       legacy.Source
		batchSize int
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy employees from an HRMGO MySQL database into hrmgo",
		Long: `Import reads the HRMGO employees table in id order and posts it to the
employee import endpoint in batches. Employees imported before are skipped
by the server, so an interrupted import can simply be run again.`,
		Example: `  hrmctl legacy import --dsn 'hrm:secret@tcp(db:3306)/hrmgo?parseTime=true'
  hrmctl legacy import --host db --user hrm --password secret --database hrmgo --created-by 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batchSize <= 0 || batchSize > maxImportBatch {
				return fmt.Errorf("batch size must be between 1 and %d", maxImportBatch)
			}
			if dsn == "" {
				if src.Host == "" || src.Database == "" {
					return errors.New("either --dsn or --host and --database are required")
				}
				dsn = src.DSN()
			}

			conn, err := legacy.Open(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			defer conn.Close()

			var total importResult
			reader := legacy.NewReader(conn, src.CreatedBy, batchSize)
			err = reader.Each(cmd.Context(), func(batch []legacy.ImportEmployee) error {
				if dryRun {
					total.Created += len(batch)
					return nil
				}
				var res importResult
				if err := e.client.Post(cmd.Context(), "/api/v1/employees/import", map[string]any{"employees": batch}, &res); err != nil {
					return fmt.Errorf("import batch: %w", err)
				}
				e.log.Infow("legacy batch imported", "created", res.Created, "skipped", res.Skipped, "failed", len(res.Failures))
				total.Created += res.Created
				total.Skipped += res.Skipped
				total.Failures = append(total.Failures, res.Failures...)
				return nil
			})
			if err != nil {
				return err
			}

			for _, f := range total.Failures {
				id := "-"
				if f.LegacyID != nil {
					id = fmt.Sprint(*f.LegacyID)
				}
				cmd.Printf("  legacy id %s: %s\n", id, f.Reason)
			}
			cmd.Printf("%s: %d  %s: %d  %s: %d\n",
				e.t("Imported"), total.Created, e.t("Skipped"), total.Skipped, e.t("Failed"), len(total.Failures))
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "go-sql-driver DSN of the HRMGO database")
	cmd.Flags().StringVar(&src.Host, "host", "", "MySQL host")
	cmd.Flags().IntVar(&src.Port, "port", 3306, "MySQL port")
	cmd.Flags().StringVar(&src.User, "user", "root", "MySQL user")
	cmd.Flags().StringVar(&src.Password, "password", "", "MySQL password")
	cmd.Flags().StringVar(&src.Database, "database", "", "MySQL database name")
	cmd.Flags().StringVar(&src.TLS, "tls", "", "TLS mode (disable, required, preferred, skip-verify)")
	cmd.Flags().Int64Var(&src.CreatedBy, "created-by", 0, "only import employees of this HRMGO company id (0 for all)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 200, "employees per API request")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "read the legacy database without importing")
	cmd.MarkFlagsMutuallyExclusive("dsn", "host")
	return cmd
}
