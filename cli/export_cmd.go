package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"timetracker/export"
	"timetracker/query"
)

func newExportCmd(a *app) *cobra.Command {
	var format, out, employee, date string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activities to an .xlsx workbook or the store to a SQLite database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			switch format {
			case "xlsx":
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				rows := mgr.FilteredActivities(employee, date)
				if err := export.WriteXLSX(f, rows); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d activities to %s\n", len(rows), out)
			case "sqlite":
				db, err := query.OpenReportDatabase(a.cfg.Export.SQLiteDriver, out)
				if err != nil {
					return err
				}
				defer db.Close()
				employees := mgr.Employees()
				if err := db.ExportSnapshot(employees); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d employees to %s\n", len(employees), out)
			default:
				return fmt.Errorf("unknown format %q (want xlsx or sqlite)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "xlsx", "xlsx or sqlite")
	cmd.Flags().StringVar(&out, "out", "", "output file")
	cmd.Flags().StringVar(&employee, "employee", query.AllEmployees, "employee name (xlsx only)")
	cmd.Flags().StringVar(&date, "date", "", "timestamp substring (xlsx only)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			employees, err := a.store().Load()
			if err != nil {
				return err
			}
			events := 0
			for _, e := range employees {
				events += len(e.Events)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d employees, %d events\n", a.cfg.DataFile, len(employees), events)
			return nil
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Per employee totals for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			items, err := query.Summarize(a.cfg.Export.SQLiteDriver, mgr.Employees(), period, time.Now())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMPLOYEE\tDAYS\tIN\tOUT\tFIRST\tLAST")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n", it.Name, it.DaysPresent, it.ClockIns, it.ClockOuts, it.FirstSeen, it.LastSeen)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&period, "period", "week", "day, week, month, year or all")
	return cmd
}
