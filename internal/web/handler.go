package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Arpanmondalz/digital-health-daemon/internal/config"
	"github.com/Arpanmondalz/digital-health-daemon/internal/database"
	"github.com/Arpanmondalz/digital-health-daemon/internal/monitor"
	"github.com/Arpanmondalz/digital-health-daemon/internal/reporter"
	"github.com/Arpanmondalz/digital-health-daemon/pkg/utils"
)

type Handler struct {
	config   *config.Config
	repo     *database.Repository
	monitor  *monitor.Service
	reporter *reporter.Reporter
}

func NewHandler(cfg *config.Config, repo *database.Repository, mon *monitor.Service) *Handler {
	return &Handler{
		config:   cfg,
		repo:     repo,
		monitor:  mon,
		reporter: reporter.New(cfg, repo),
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/api/events", h.handleEvents)
	mux.HandleFunc("/api/events/latest", h.handleLatestEvent)
	mux.HandleFunc("/api/report", h.handleReport)
	mux.HandleFunc("/api/resurrect", h.handleResurrect)

	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot := h.monitor.Snapshot()

	if r.Header.Get("HX-Request") == "true" {
		h.respondStatusHTML(w, snapshot)
		return
	}

	status := map[string]interface{}{
		"pet_name":      h.config.Notify.PetName,
		"snapshot":      snapshot,
		"tick_interval": h.config.Monitor.TickInterval.String(),
	}

	respondJSON(w, status)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	limitStr := query.Get("limit")

	start := time.Now().Add(-24 * time.Hour)
	events, err := h.repo.GetEventsSince(start)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch events: %v", err), http.StatusInternalServerError)
		return
	}

	limit := 100 // default
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if len(events) > limit {
		events = events[len(events)-limit:]
	}

	respondJSON(w, events)
}

func (h *Handler) handleLatestEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	event, err := h.repo.GetLatest()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch latest event: %v", err), http.StatusInternalServerError)
		return
	}

	if event == nil {
		http.Error(w, "No events found", http.StatusNotFound)
		return
	}

	respondJSON(w, event)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	periodType := r.URL.Query().Get("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := h.reporter.GenerateReport(periodType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}

	respondJSON(w, report)
}

// handleResurrect is the caller-attested recovery ritual. The daemon cannot
// verify the jumping jacks happened; posting here is the attestation.
func (h *Handler) handleResurrect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.monitor.Resurrect(); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	log.Println("Resurrect requested via web API")
	respondJSON(w, h.monitor.Snapshot())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// stageFaces maps avatar stages to the dashboard glyphs.
var stageFaces = map[string]string{
	"round":  "●",
	"slouch": "◔",
	"melt":   "◑",
	"flat":   "▬",
	"dead":   "✝",
}

func (h *Handler) respondStatusHTML(w http.ResponseWriter, snapshot monitor.Snapshot) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	face := stageFaces[snapshot.Stage]
	if face == "" {
		face = "?"
	}

	html := fmt.Sprintf(`<div class="avatar stage-%s">
		<span class="face">%s</span>
		<span class="stage-name">%s</span>
	</div>
	<div class="health-bar">
		<div class="health-fill" style="--health: %.0f%%"></div>
	</div>
	<div class="stats">
		<span>Health: %.0f/100</span>
		<span>Worked: %s</span>
		<span>Mode: %s</span>
	</div>`,
		snapshot.Stage, face, snapshot.Stage,
		snapshot.Health,
		snapshot.Health,
		utils.FormatMinutes(int64(snapshot.WorkMinutes)),
		snapshot.Mode)

	if snapshot.Dead {
		html += `<button class="resurrect" hx-post="/api/resurrect" hx-swap="none">PERFORM RITUAL</button>`
	} else {
		html += fmt.Sprintf(`<div class="remaining">%s of healthy work left</div>`,
			utils.FormatMinutes(int64(snapshot.SafeMinutes)))
	}

	w.Write([]byte(html))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --bg-primary: #1a1a1a;
            --bg-secondary: #2d2d2d;
            --text-primary: #e0e0e0;
            --text-muted: #a0a0a0;
            --accent-color: #5dade2;
            --health-color: #2ecc71;
            --dead-color: #e74c3c;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            display: flex;
            justify-content: center;
            padding: 40px 20px;
        }

        .card {
            background: var(--bg-secondary);
            border-radius: 12px;
            padding: 30px;
            width: 100%%;
            max-width: 420px;
            text-align: center;
        }

        h1 {
            font-size: 1.4rem;
            margin-bottom: 20px;
            color: var(--accent-color);
        }

        .avatar .face {
            font-size: 4rem;
            display: block;
        }

        .avatar .stage-name {
            color: var(--text-muted);
            text-transform: uppercase;
            letter-spacing: 2px;
            font-size: 0.8rem;
        }

        .avatar.stage-dead .face {
            color: var(--dead-color);
        }

        .health-bar {
            background: var(--bg-primary);
            border-radius: 6px;
            height: 14px;
            margin: 20px 0;
            overflow: hidden;
        }

        .health-fill {
            background: var(--health-color);
            height: 100%%;
            width: var(--health);
            transition: width 0.5s ease;
        }

        .stats {
            display: flex;
            justify-content: space-between;
            color: var(--text-muted);
            font-size: 0.85rem;
            margin-bottom: 12px;
        }

        .remaining {
            color: var(--health-color);
            font-size: 0.9rem;
        }

        .resurrect {
            background: var(--dead-color);
            border: none;
            border-radius: 6px;
            color: white;
            cursor: pointer;
            font-size: 1rem;
            padding: 10px 24px;
        }
    </style>
</head>
<body>
    <div class="card">
        <h1>%s</h1>
        <div id="status" hx-get="/api/status" hx-trigger="load, every 30s">
            <div class="loading">Loading...</div>
        </div>
    </div>
</body>
</html>`, h.config.Notify.PetName, h.config.Notify.PetName)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}
