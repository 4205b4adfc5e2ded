package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"timetracker/launch"
	"timetracker/manager"
	"timetracker/query"
)

func printStatus(cmd *cobra.Command, st manager.Status, err error) error {
	if err != nil {
		return err
	}
	if !st.OK {
		return &statusError{st: st}
	}
	fmt.Fprintln(cmd.OutOrStdout(), st.Message)
	return nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI without a tray icon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.writer()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return launch.Serve(ctx, a.cfg, mgr)
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.writer()
			if err != nil {
				return err
			}
			st, err := mgr.AddEmployee(args[0])
			return printStatus(cmd, st, err)
		},
	}
}

func newClockCmd(a *app, direction string) *cobra.Command {
	return &cobra.Command{
		Use:   direction + " NAME",
		Short: "Clock an employee " + direction,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.writer()
			if err != nil {
				return err
			}
			op := mgr.ClockIn
			if direction == "out" {
				op = mgr.ClockOut
			}
			st, err := op(args[0])
			return printStatus(cmd, st, err)
		},
	}
}

func newEmployeesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "employees",
		Short: "List employee names in file order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			for _, name := range mgr.EmployeeNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newActivitiesCmd(a *app) *cobra.Command {
	var employee, date string
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Print the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.manager()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMPLOYEE\tACTION\tTIMESTAMP")
			for _, r := range mgr.FilteredActivities(employee, date) {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Employee, r.Action, r.Timestamp)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&employee, "employee", query.AllEmployees, "employee name")
	cmd.Flags().StringVar(&date, "date", "", "timestamp substring, e.g. 2024-01-01")
	return cmd
}
