package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// launchAgentLabel identifies the LaunchAgent job.
const launchAgentLabel = "local.caffeine.agent"

// FileAutostart implements domain.Autostarter by writing a login entry file,
// an XDG .desktop file on Linux or a LaunchAgent plist on macOS.
type FileAutostart struct {
	fs      afero.Fs
	path    string
	content []byte
}

// NewFileAutostart creates an autostarter that writes content to path on fs.
func NewFileAutostart(fs afero.Fs, path string, content []byte) *FileAutostart {
	return &FileAutostart{fs: fs, path: path, content: content}
}

// NewXDGAutostart registers exe under ~/.config/autostart.
func NewXDGAutostart(home, exe string) *FileAutostart {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(home, ".config")
	}
	path := filepath.Join(dir, "autostart", strings.ToLower(AppName)+".desktop")
	return NewFileAutostart(afero.NewOsFs(), path, desktopEntry(exe))
}

// NewLaunchAgentAutostart registers exe under ~/Library/LaunchAgents.
func NewLaunchAgentAutostart(home, exe string) *FileAutostart {
	path := filepath.Join(home, "Library", "LaunchAgents", launchAgentLabel+".plist")
	return NewFileAutostart(afero.NewOsFs(), path, launchAgentPlist(exe))
}

// Path returns the entry file location.
func (f *FileAutostart) Path() string {
	return f.path
}

func (f *FileAutostart) IsEnabled() (bool, error) {
	ok, err := afero.Exists(f.fs, f.path)
	if err != nil {
		return false, fmt.Errorf("stat autostart entry: %w", err)
	}
	return ok, nil
}

func (f *FileAutostart) SetEnabled(enabled bool) error {
	if !enabled {
		if err := f.fs.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove autostart entry: %w", err)
		}
		return nil
	}
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	if err := afero.WriteFile(f.fs, f.path, f.content, 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func desktopEntry(exe string) []byte {
	return []byte(fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=Keep the system awake on a schedule
Exec="%s" run
Terminal=false
X-GNOME-Autostart-enabled=true
`, AppName, exe))
}

func launchAgentPlist(exe string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>` + launchAgentLabel + `</string>
	<key>ProgramArguments</key>
	<array>
		<string>`)
	b.WriteString(xmlEscape(exe))
	b.WriteString(`</string>
		<string>run</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
</dict>
</plist>
`)
	return []byte(b.String())
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;").Replace(s)
}
