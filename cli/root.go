package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"timetracker/config"
	"timetracker/launch"
	"timetracker/manager"
	"timetracker/query"
)

// statusError carries a failed validation status to the exit path.
type statusError struct {
	st manager.Status
}

func (e *statusError) Error() string { return e.st.Message }

type app struct {
	configPath string
	dataFile   string
	cfg        *config.Config
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dataFile != "" {
		cfg.DataFile = a.dataFile
	}
	a.cfg = cfg
	return nil
}

func (a *app) close(cmd *cobra.Command, _ []string) error {
	if a.cfg == nil {
		return nil
	}
	return a.cfg.Close()
}

func (a *app) store() *query.FileStore {
	return query.NewFileStore(a.cfg.DataFile)
}

func (a *app) manager() (*manager.AttendanceManager, error) {
	log := a.cfg.Logger().WithField("data_file", a.cfg.DataFile)
	mgr, err := manager.NewAttendanceManager(a.store(), manager.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", a.cfg.DataFile, err)
	}
	return mgr, nil
}

// writer returns a manager after making sure no other instance could
// overwrite the same data file.
func (a *app) writer() (*manager.AttendanceManager, error) {
	if !a.cfg.AllowMultipleInstances {
		if err := launch.CheckSingleInstance(); err != nil {
			var running *launch.ErrAlreadyRunning
			if errors.As(err, &running) {
				return nil, err
			}
			a.cfg.Logger().WithError(err).Warn("could not check for other instances")
		}
	}
	return a.manager()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:                "timetracker",
		Short:              "Employee attendance tracker (tray app, web UI and CLI)",
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.load,
		PersistentPostRunE: a.close,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.writer()
			if err != nil {
				return err
			}
			return launch.StartProgramme(a.cfg, mgr)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	cmd.PersistentFlags().StringVar(&a.dataFile, "data", "", "employee data file (overrides data_file)")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newClockCmd(a, "in"))
	cmd.AddCommand(newClockCmd(a, "out"))
	cmd.AddCommand(newEmployeesCmd(a))
	cmd.AddCommand(newActivitiesCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newSummaryCmd(a))
	cmd.AddCommand(newCheckCmd(a))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
