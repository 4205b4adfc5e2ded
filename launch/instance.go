package launch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/process"
)

type processInfo struct {
	PID int32
	Exe string
}

// ErrAlreadyRunning means another process runs the same executable. Two
// instances would overwrite each other's data file.
type ErrAlreadyRunning struct {
	PIDs []int32
}

func (e *ErrAlreadyRunning) Error() string {
	return fmt.Sprintf("another instance is already running (pid %v)", e.PIDs)
}

// CheckSingleInstance fails when another process runs this executable.
func CheckSingleInstance() error {
	self, err := os.Executable()
	if err != nil {
		return err
	}
	procs, err := listProcesses()
	if err != nil {
		return err
	}
	if pids := otherInstances(int32(os.Getpid()), self, procs); len(pids) > 0 {
		return &ErrAlreadyRunning{PIDs: pids}
	}
	return nil
}

func listProcesses() ([]processInfo, error) {
	processes, err := process.Processes()
	if err != nil {
		return nil, err
	}
	out := make([]processInfo, 0, len(processes))
	for _, p := range processes {
		if p == nil {
			continue
		}
		exe, err := p.Exe()
		if err != nil {
			// other users' processes are not readable; they cannot be us
			continue
		}
		out = append(out, processInfo{PID: p.Pid, Exe: exe})
	}
	return out, nil
}

func otherInstances(selfPID int32, selfExe string, procs []processInfo) []int32 {
	self := filepath.Clean(selfExe)
	var pids []int32
	for _, p := range procs {
		if p.PID == selfPID {
			continue
		}
		if filepath.Clean(p.Exe) == self {
			pids = append(pids, p.PID)
		}
	}
	return pids
}
