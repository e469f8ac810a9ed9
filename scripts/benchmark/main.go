// Command benchmark compares fetch modes against a running topchart API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/use-agent/topchart/models"
)

var (
	apiURL = flag.String("api-url", "http://localhost:8080", "topchart API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per fetch mode")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

var fetchModes = []string{models.FetchModeHTTP, models.FetchModeAuto, models.FetchModeBrowser}

type runResult struct {
	Run        int    `json:"run"`
	TotalMs    int64  `json:"total_ms"`
	FetchMs    int64  `json:"fetch_ms"`
	ExtractMs  int64  `json:"extract_ms"`
	Movies     int    `json:"movies"`
	Skipped    int    `json:"skipped"`
	EngineUsed string `json:"engine_used"`
	Status     string `json:"status"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type modeAverages struct {
	TotalMs   float64 `json:"total_ms"`
	FetchMs   float64 `json:"fetch_ms"`
	ExtractMs float64 `json:"extract_ms"`
	Movies    float64 `json:"movies"`
}

type modeResult struct {
	FetchMode string        `json:"fetch_mode"`
	Runs      []runResult   `json:"runs"`
	Averages  *modeAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp   string       `json:"timestamp"`
	APIURL      string       `json:"api_url"`
	RunsPerMode int          `json:"runs_per_mode"`
	Results     []modeResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== topchart fetch mode benchmark ===")
	fmt.Printf("API URL:    %s\n", *apiURL)
	fmt.Printf("Runs/mode:  %d\n", *runs)
	fmt.Printf("Output:     %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure the server is running (topchart serve)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		APIURL:      *apiURL,
		RunsPerMode: *runs,
	}

	for _, mode := range fetchModes {
		fmt.Printf("Benchmarking fetch mode %q ...\n", mode)
		mr := modeResult{FetchMode: mode}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkMode(mode, i)
			if rr.Success {
				fmt.Printf("%s  %dms  %d movies via %s\n", rr.Status, rr.TotalMs, rr.Movies, rr.EngineUsed)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			mr.Runs = append(mr.Runs, rr)
		}

		mr.Averages = computeAverages(mr.Runs)
		report.Results = append(report.Results, mr)
		fmt.Println()
	}

	fmt.Println(renderTable(report.Results))

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkMode(mode string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(models.ScrapeRequest{FetchMode: mode, Timeout: 120})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest(http.MethodPost, *apiURL+"/api/v1/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 150 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var sr models.ScrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.Status = sr.Status
	rr.EngineUsed = sr.EngineUsed
	rr.TotalMs = sr.Timing.TotalMs
	rr.FetchMs = sr.Timing.FetchMs
	rr.ExtractMs = sr.Timing.ExtractMs
	rr.Movies = len(sr.Movies)
	rr.Skipped = sr.Skipped
	if sr.Error != nil {
		rr.Error = fmt.Sprintf("[%s] %s", sr.Error.Code, sr.Error.Message)
	}
	return rr
}

func computeAverages(runs []runResult) *modeAverages {
	var n int
	var avg modeAverages
	for _, r := range runs {
		if !r.Success {
			continue
		}
		n++
		avg.TotalMs += float64(r.TotalMs)
		avg.FetchMs += float64(r.FetchMs)
		avg.ExtractMs += float64(r.ExtractMs)
		avg.Movies += float64(r.Movies)
	}
	if n == 0 {
		return nil
	}

	d := float64(n)
	avg.TotalMs /= d
	avg.FetchMs /= d
	avg.ExtractMs /= d
	avg.Movies /= d
	return &avg
}

func renderTable(results []modeResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Mode", "Avg total", "Avg fetch", "Avg extract", "Avg movies", "Engines"})

	for _, r := range results {
		if r.Averages == nil {
			tw.AppendRow(table.Row{r.FetchMode, "FAILED", "-", "-", "-", "-"})
			continue
		}
		a := r.Averages
		tw.AppendRow(table.Row{
			r.FetchMode,
			fmt.Sprintf("%dms", int64(a.TotalMs)),
			fmt.Sprintf("%dms", int64(a.FetchMs)),
			fmt.Sprintf("%dms", int64(a.ExtractMs)),
			fmt.Sprintf("%.0f", a.Movies),
			enginesUsed(r.Runs),
		})
	}
	return tw.Render()
}

// enginesUsed lists the distinct engines that served successful runs.
func enginesUsed(runs []runResult) string {
	seen := map[string]bool{}
	var out string
	for _, r := range runs {
		if !r.Success || r.EngineUsed == "" || seen[r.EngineUsed] {
			continue
		}
		seen[r.EngineUsed] = true
		if out != "" {
			out += ","
		}
		out += r.EngineUsed
	}
	if out == "" {
		return "-"
	}
	return out
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
