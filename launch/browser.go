package launch

import (
	"os/exec"
	"runtime"
)

func browserCommand(url string) *exec.Cmd {
	name, args := browserArgs(runtime.GOOS, url)
	return exec.Command(name, args...)
}

func browserArgs(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}
