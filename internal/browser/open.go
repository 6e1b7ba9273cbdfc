// Package browser hands URLs to the desktop's default browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// command is swapped out in tests.
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens rawURL in the user's default browser. Only absolute http(s)
// URLs are accepted; anything else could be interpreted by the opener as a
// file or a command.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("browser.Open: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser.Open: refusing non-web URL %q", rawURL)
	}
	target := u.String()

	switch runtime.GOOS {
	case "darwin":
		return command("open", target)
	case "linux", "freebsd", "openbsd", "netbsd":
		return command("xdg-open", target)
	case "windows":
		return command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("browser.Open: unsupported OS: %s", runtime.GOOS)
	}
}
