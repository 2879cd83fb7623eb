package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arpanmondalz/digital-health-daemon/internal/config"
	"github.com/Arpanmondalz/digital-health-daemon/internal/daemon"
	"github.com/Arpanmondalz/digital-health-daemon/internal/database"
	"github.com/Arpanmondalz/digital-health-daemon/internal/monitor"
	"github.com/Arpanmondalz/digital-health-daemon/internal/notify"
	"github.com/Arpanmondalz/digital-health-daemon/internal/reporter"
	"github.com/Arpanmondalz/digital-health-daemon/internal/web"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/utils"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/watcher"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		startDaemon(false)
	case "serve":
		startDaemon(true)
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "resurrect":
		resurrectPet()
	case "report":
		generateReport()
	case "clear":
		clearDatabase()
	case "version":
		fmt.Printf("biodaemon version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`biodaemon - Screen-time health companion

Usage:
  biodaemon <command> [options]

Commands:
  start              Start the health daemon
  serve              Start daemon with web dashboard
  stop               Stop the health daemon
  status             Show daemon status and pet health
  resurrect          Revive a dead pet (do your jumping jacks first)
  report [period]    Generate break report (period: day, week, month)
  clear              Clear all recorded history from database
  version            Show version information
  help               Show this help message

Examples:
  biodaemon serve
  biodaemon status
  biodaemon report week
  biodaemon resurrect
  biodaemon stop

Environment Variables:
  BIODAEMON_LIMIT_ROUND      Minutes of work before the pet degrades
  BIODAEMON_LIMIT_DEATH      Minutes of continuous work that kill the pet
  BIODAEMON_MIN_BREAK        Minimum break length that heals (minutes)
  BIODAEMON_FULL_RESET       Break length for full recovery (minutes)
  BIODAEMON_TICK_INTERVAL    Poll interval in seconds (1-300)
  BIODAEMON_DB_PATH          Database file path
  BIODAEMON_PID_FILE         PID file path
  BIODAEMON_LOG_FILE         Daemon log file path
  BIODAEMON_NOTIFY           Desktop notifications (true/false)
  BIODAEMON_PET_NAME         Name of your pet
  BIODAEMON_WEB_HOST         Dashboard bind host
  BIODAEMON_WEB_PORT         Dashboard port

Version: %s
`, version)
}

func startDaemon(withWeb bool) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	// Parent process forks and exits; the child carries on below.
	if os.Getenv("BIODAEMON_DAEMON_CHILD") != "1" {
		daemonize(cfg, withWeb)
		return
	}

	runDaemon(cfg, dm, withWeb)
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, withWeb bool) {
	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	w, err := watcher.New()
	if err != nil {
		log.Fatalf("Failed to initialize session watcher: %v", err)
	}
	defer w.Close()

	log.Printf("Session watcher initialized: %s", w.Backend())

	if err := dm.WritePID(); err != nil {
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer dm.RemovePID()

	var notifier notify.Notifier = notify.Discard{}
	if cfg.Notify.Enabled {
		notifier = notify.NewDesktop()
	}

	repo := database.NewRepository(db)
	monitorSvc := monitor.NewService(cfg, repo, w, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// SIGUSR1 is the out-of-band resurrect ritual for start mode,
	// where no web API is listening.
	resurrectChan := make(chan os.Signal, 1)
	signal.Notify(resurrectChan, syscall.SIGUSR1)
	go func() {
		for range resurrectChan {
			if err := monitorSvc.Resurrect(); err != nil {
				log.Printf("Resurrect request ignored: %v", err)
			}
		}
	}()

	var webServer *web.Server
	if withWeb {
		webServer = web.NewServer(cfg, repo, monitorSvc)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Web server error: %v", err)
			}
		}()
		log.Printf("Dashboard available at: http://%s", webServer.GetAddress())
	}

	go func() {
		if err := monitorSvc.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Monitor error: %v", err)
			cancel()
		}
	}()

	log.Printf("Watching over %s", cfg.Notify.PetName)
	log.Printf("Configuration:\n%s", cfg.String())

	<-sigChan
	log.Println("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	cancel()
	monitorSvc.Stop()

	if webServer != nil {
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down web server: %v", err)
		}
	}

	log.Println("Daemon stopped successfully")
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop daemon: %v", err)
	}

	fmt.Println("Daemon stopped successfully")
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Tick Interval: %v\n", cfg.Monitor.TickInterval)
		fmt.Printf("Database: %s\n", cfg.Database.Path)

		// The live snapshot only exists inside the daemon process; serve
		// mode exposes it over the dashboard API.
		if snapshot := fetchSnapshot(cfg); snapshot != nil {
			fmt.Printf("\n%s:\n", cfg.Notify.PetName)
			fmt.Printf("  %s\n", utils.HealthBar(snapshot.Health))
			fmt.Printf("  Stage: %s\n", snapshot.Stage)
			fmt.Printf("  Mode: %s\n", snapshot.Mode)
			fmt.Printf("  Worked: %s\n", utils.FormatMinutes(int64(snapshot.WorkMinutes)))
			if snapshot.Dead {
				fmt.Println("  Your pet has died. Run 'biodaemon resurrect' after 10 jumping jacks.")
			} else {
				fmt.Printf("  Healthy work left: %s\n", utils.FormatMinutes(int64(snapshot.SafeMinutes)))
			}
		}
	}

	// Live lock-state probe works whether or not the daemon runs.
	w, err := watcher.New()
	if err != nil {
		fmt.Printf("\nCould not probe session state: %v\n", err)
		return
	}
	defer w.Close()

	status, err := w.Status()
	if err == nil && status != nil {
		fmt.Printf("\nSession State (%s):\n", w.Backend())
		fmt.Printf("  Locked: %v\n", status.IsLocked)
		if status.IdleTime > 0 {
			fmt.Printf("  Idle Time: %ds\n", status.IdleTime)
		}
	}
}

func fetchSnapshot(cfg *config.Config) *monitor.Snapshot {
	client := &http.Client{Timeout: 2 * time.Second}
	url := fmt.Sprintf("http://%s:%d/api/status", cfg.Web.Host, cfg.Web.Port)

	resp, err := client.Get(url)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var payload struct {
		Snapshot monitor.Snapshot `json:"snapshot"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil
	}
	return &payload.Snapshot
}

func resurrectPet() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	fmt.Println("Resurrection ritual: 10 jumping jacks, then press Enter.")
	fmt.Scanln()

	if err := dm.Signal(syscall.SIGUSR1); err != nil {
		log.Fatalf("Failed to resurrect: %v", err)
	}

	fmt.Printf("%s stirs back to life. Be kinder this time.\n", cfg.Notify.PetName)
}

func generateReport() {
	periodType := "day"
	if len(os.Args) > 2 {
		periodType = os.Args[2]
	}

	cfg := config.New()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	rep := reporter.New(cfg, repo)

	jsonOutput := false
	if len(os.Args) > 3 && os.Args[3] == "--json" {
		jsonOutput = true
	}

	report, err := rep.GenerateReport(periodType)
	if err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}

	if jsonOutput {
		jsonStr, err := rep.FormatReportJSON(report)
		if err != nil {
			log.Fatalf("Failed to format JSON: %v", err)
		}
		fmt.Println(jsonStr)
	} else {
		fmt.Println(rep.FormatReportText(report))
	}
}

func clearDatabase() {
	cfg := config.New()

	fmt.Print("This will delete all recorded history. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	if err := repo.Clear(); err != nil {
		log.Fatalf("Failed to clear database: %v", err)
	}

	fmt.Println("Database cleared successfully")
}

func daemonize(cfg *config.Config, withWeb bool) {
	env := os.Environ()
	env = append(env, "BIODAEMON_DAEMON_CHILD=1")

	args := os.Args

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil}, // stdin, stdout, stderr to /dev/null
		Sys: &syscall.SysProcAttr{
			Setsid: true, // detach from the controlling terminal
		},
	}

	process, err := os.StartProcess(args[0], args, procAttr)
	if err != nil {
		log.Fatalf("Failed to start daemon process: %v", err)
	}

	fmt.Printf("Daemon started successfully (PID: %d)\n", process.Pid)
	if withWeb {
		fmt.Printf("Dashboard available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
}
