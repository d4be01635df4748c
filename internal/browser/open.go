package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches the user's default browser at url. The help overlay uses
// it to open project links without leaving the terminal.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
