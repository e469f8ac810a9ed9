package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/topchart/models"
	"github.com/use-agent/topchart/output"
)

func main() {
	apiURL := os.Getenv("TOPCHART_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("TOPCHART_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "TOPCHART_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"topchart",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	scrapeTool := mcp.NewTool("scrape_top_chart",
		mcp.WithDescription("Scrape the IMDb Top 250 chart and return the ranked movies as a Markdown table with rank, title, year, rating and votes."),
		mcp.WithString("fetch_mode",
			mcp.Description("How to load the page: 'browser' (default, headless Chrome), 'http' (static HTML only) or 'auto' (http first, browser when no rows are found)"),
			mcp.Enum(models.FetchModeBrowser, models.FetchModeHTTP, models.FetchModeAuto),
		),
		mcp.WithNumber("max_rows",
			mcp.Description("Maximum number of movies to return (default: 250, max: 250)"),
		),
		mcp.WithNumber("max_age",
			mcp.Description("Reuse a cached result up to this many milliseconds old (default: 0, always scrape)"),
		),
	)
	s.AddTool(scrapeTool, handleScrape(apiURL, apiKey))

	latestTool := mcp.NewTool("latest_top_chart",
		mcp.WithDescription("Return the movies from the most recent completed scrape without starting a new one."),
	)
	s.AddTool(latestTool, handleLatest(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiDo sends a request to the topchart API and returns the response body.
func apiDo(ctx context.Context, client *http.Client, method, url, apiKey string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleScrape(apiURL, apiKey string) server.ToolHandlerFunc {
	// A browser run can take the full 300s request timeout.
	client := &http.Client{Timeout: 320 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload := models.ScrapeRequest{
			FetchMode: request.GetString("fetch_mode", ""),
			MaxRows:   request.GetInt("max_rows", 0),
			MaxAge:    request.GetInt("max_age", 0),
		}

		respBody, err := apiDo(ctx, client, http.MethodPost, apiURL+"/api/v1/scrape", apiKey, payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}
		return formatResult(respBody, "scrape failed")
	}
}

func handleLatest(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		respBody, err := apiDo(ctx, client, http.MethodGet, apiURL+"/api/v1/movies", apiKey, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("movies request failed: %v", err)), nil
		}
		return formatResult(respBody, "no completed run")
	}
}

// formatResult turns an API response body into a tool result.
func formatResult(respBody []byte, failMsg string) (*mcp.CallToolResult, error) {
	var resp models.ScrapeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
	}

	if !resp.Success {
		errMsg := failMsg
		if resp.Error != nil {
			errMsg = fmt.Sprintf("[%s] %s", resp.Error.Code, resp.Error.Message)
		}
		return mcp.NewToolResultError(errMsg), nil
	}
	return mcp.NewToolResultText(describe(&resp)), nil
}

func describe(resp *models.ScrapeResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\nStatus: %s\n", resp.SourceURL, resp.Status)
	if resp.CacheStatus != "" {
		fmt.Fprintf(&sb, "Cache: %s\n", resp.CacheStatus)
	}
	if len(resp.Movies) == 0 {
		sb.WriteString("\nNo movies were found on the page.")
		if resp.Screenshot != "" {
			fmt.Fprintf(&sb, " A debug screenshot was saved to %s on the server.", resp.Screenshot)
		}
		return sb.String()
	}

	s := resp.Summary
	fmt.Fprintf(&sb, "Movies: %d", s.Total)
	if resp.Skipped > 0 {
		fmt.Fprintf(&sb, " (%d rows skipped)", resp.Skipped)
	}
	sb.WriteString("\n")
	if s.RatedCount > 0 {
		fmt.Fprintf(&sb, "Average rating: %.2f\n", s.AverageRating)
	}
	if s.MinYear != 0 {
		fmt.Fprintf(&sb, "Years: %d - %d\n", s.MinYear, s.MaxYear)
	}
	sb.WriteString("\n")

	md, err := output.NewMarkdownSink("").Render(resp)
	if err != nil {
		for _, m := range resp.Movies {
			fmt.Fprintf(&sb, "%d. %s (%s) %s\n", m.Rank, m.Title, m.ReleaseYear, m.Rating)
		}
		return sb.String()
	}
	sb.WriteString(md)
	return sb.String()
}
