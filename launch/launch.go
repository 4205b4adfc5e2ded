package launch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"timetracker/config"
	"timetracker/manager"
	"timetracker/web"
)

const shutdownTimeout = 5 * time.Second

// StartProgramme runs the tray application until the user picks Quit.
func StartProgramme(cfg *config.Config, mgr *manager.AttendanceManager) error {
	log := cfg.Logger().WithField("component", "launch")

	srv := web.NewServer(mgr, cfg)
	addr, err := srv.Start()
	if err != nil {
		return err
	}
	url := "http://" + addr

	systray.Run(func() { onReady(cfg, log, url) }, func() { onExit(srv, log) })
	return nil
}

// Serve runs the web UI without a tray icon until ctx is done.
func Serve(ctx context.Context, cfg *config.Config, mgr *manager.AttendanceManager) error {
	srv := web.NewServer(mgr, cfg)
	if _, err := srv.Start(); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func onReady(cfg *config.Config, log logrus.FieldLogger, url string) {
	icon, err := os.ReadFile(filepath.Join(filepath.Dir(cfg.DataFile), "icon.ico"))
	if err == nil {
		systray.SetIcon(icon)
	}
	systray.SetTitle("Time Tracker")
	systray.SetTooltip("Employee Time Tracker")

	mOpenWeb := systray.AddMenuItem("Open attendance UI", "Open "+url+" in the browser")
	mInfo := systray.AddMenuItem("About", "Show the data file location")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	if cfg.Web.OpenBrowser {
		openURL(log, url)
	}

	go func() {
		for {
			select {
			case <-mOpenWeb.ClickedCh:
				openURL(log, url)
			case <-mInfo.ClickedCh:
				systray.SetTooltip("Data file: " + cfg.DataFile)
			case <-mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func onExit(srv *web.Server, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("web server shutdown")
	}
}

func openURL(log logrus.FieldLogger, url string) {
	if err := browserCommand(url).Start(); err != nil {
		log.WithError(err).Warn("could not open browser")
	}
}
