package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/swiftlogistics/swifttrack/internal/app"
	"github.com/swiftlogistics/swifttrack/internal/auth"
	"github.com/swiftlogistics/swifttrack/internal/logging"
	"github.com/swiftlogistics/swifttrack/internal/model"
	"github.com/swiftlogistics/swifttrack/internal/store"
)

func main() {
	cfgPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	dbPath := flag.String("db", defaultDBPath(), "path to the local order cache")
	flag.Parse()

	cfg, err := model.LoadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logPath := cfg.LogPath
	if logPath == "" {
		logPath = logging.DefaultLogPath()
	}
	cleanup := logging.Init(logPath)
	defer cleanup()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating data directory: %v\n", err)
		os.Exit(1)
	}
	cache, err := store.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening order cache: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	// A saved session skips the login screen. A stale token surfaces
	// as a 401 in-app, where the user can log in again.
	user, err := auth.LoadSession()
	if err != nil {
		user = nil
	}

	m := app.New(cfg, cache, user)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// defaultDBPath returns the default location of the local order cache,
// at ~/.local/share/swifttrack/orders.db.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "orders.db")
	}
	return filepath.Join(home, ".local", "share", "swifttrack", "orders.db")
}
