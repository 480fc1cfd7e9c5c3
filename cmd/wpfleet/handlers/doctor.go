package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imamik/wpfleet/internal/config"
	"github.com/imamik/wpfleet/internal/util/netutil"
	"github.com/imamik/wpfleet/internal/util/prerequisites"
)

var (
	// probeTCP checks that the MySQL port accepts connections.
	probeTCP = netutil.ProbeTCP

	// checkTools looks up the installer toolchain on PATH.
	checkTools = prerequisites.CheckAll
)

// errDoctorFailed is returned when any required check fails.
var errDoctorFailed = errors.New("one or more checks failed")

// Doctor runs the batch-level preconditions without touching any site:
// the site list, MySQL reachability and login, and installer availability.
func Doctor(ctx context.Context, configPath string, verbosity int) error {
	fmt.Fprintln(stdout, "wpfleet doctor")
	fmt.Fprintln(stdout)

	cfg, err := loadConfig(configPath)
	if err != nil {
		printRow("Configuration", false, err.Error())
		return errDoctorFailed
	}
	printRow("Configuration", true, fmt.Sprintf("%d site(s)", len(cfg.Sites)))

	ok := true
	timeouts := loadTimeouts()
	mysql := cfg.Shared.MySQL

	if err := probeTCP(ctx, mysql.Address(), timeouts.Connect); err != nil {
		printRow("MySQL reachable", false, err.Error())
		ok = false
	} else {
		printRow("MySQL reachable", true, mysql.Address())
		ok = checkLogin(ctx, mysql, timeouts.Connect) && ok
	}

	results := checkTools()
	for _, r := range results.Results {
		switch {
		case r.Found:
			printRow(r.Tool.Name, true, r.Version)
		case r.Tool.Required:
			printRow(r.Tool.Name, false, "not found, see "+r.Tool.InstallURL)
			ok = false
		default:
			printRow(r.Tool.Name, true, "optional, not installed")
		}
	}

	inst := newSiteInstaller(newObserver(verbosity))
	if err := inst.Available(ctx); err != nil {
		printRow("Installer", false, err.Error())
		ok = false
	} else {
		printRow("Installer", true, "")
	}

	fmt.Fprintln(stdout)
	if !ok {
		return errDoctorFailed
	}
	fmt.Fprintln(stdout, "All checks passed.")
	return nil
}

func checkLogin(ctx context.Context, mysql config.MySQLCredentials, timeout time.Duration) bool {
	conn, err := openDatabase(ctx, mysql, timeout)
	if err != nil {
		printRow("MySQL login", false, err.Error())
		return false
	}
	_ = conn.Close()
	printRow("MySQL login", true, mysql.RootUser)
	return true
}

func printRow(name string, ok bool, extra string) {
	indicator := "[OK]"
	if !ok {
		indicator = "[!!]"
	}

	if extra != "" {
		fmt.Fprintf(stdout, "  %s  %-20s %s\n", indicator, name, extra)
	} else {
		fmt.Fprintf(stdout, "  %s  %s\n", indicator, name)
	}
}
