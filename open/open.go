// Package open launches URLs with the system's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/reelgate/reelgate/constant"
)

// Start opens url in the default browser without waiting for it.
func Start(url string) error {
	cmd, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", url), nil
	case constant.Darwin:
		return exec.Command("open", url), nil
	case constant.Linux:
		return exec.Command("xdg-open", url), nil
	case constant.Android:
		return exec.Command("termux-open", url), nil
	default:
		return nil, fmt.Errorf("open: unsupported OS %s", goos)
	}
}
