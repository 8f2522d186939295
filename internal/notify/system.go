package notify

import (
	"log"
	"os"
	"os/exec"
	"runtime"
)

// System opens URLs and plays sounds with platform tools.
type System struct {
	// BrowserPath is an optional browser binary; resolution failure falls
	// back to the platform default opener with a warning only.
	BrowserPath string

	// DefaultSound is tried when the requested sound file is missing.
	DefaultSound string
}

// NewSystem creates a System sink.
func NewSystem(browserPath, defaultSound string) *System {
	return &System{BrowserPath: browserPath, DefaultSound: defaultSound}
}

// OpenURL launches the browser without waiting for it to exit, so a slow
// browser start cannot stall the countdown.
func (s *System) OpenURL(url string) error {
	if s.BrowserPath != "" {
		if path, err := exec.LookPath(s.BrowserPath); err == nil {
			return exec.Command(path, url).Start()
		}
		log.Printf("notify: browser %q not found, using system default", s.BrowserPath)
	}
	return openDefault(url)
}

func openDefault(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

// PlaySound plays the requested file, then the default, then gives up.
// All errors are ignored.
func (s *System) PlaySound(file string) {
	candidate := ""
	if file != "" && fileExists(file) {
		candidate = file
	} else if s.DefaultSound != "" && fileExists(s.DefaultSound) {
		candidate = s.DefaultSound
	}
	if candidate == "" {
		return
	}

	cmd := playerCommand(candidate)
	if cmd == nil {
		return
	}
	_ = cmd.Run()
}

func playerCommand(file string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("afplay", file)
	case "windows":
		return exec.Command("powershell", "-c",
			"(New-Object Media.SoundPlayer '"+file+"').PlaySync()")
	default:
		for _, player := range []string{"paplay", "aplay", "mpg123"} {
			if path, err := exec.LookPath(player); err == nil {
				return exec.Command(path, file)
			}
		}
		return nil
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
