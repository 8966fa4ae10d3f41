package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mauv0809/mahjong-league/internal/scoring"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(calculateCmd)

	teamsCmd.AddCommand(teamsAddCmd)
	teamsAddCmd.Flags().String("color", "#3b82f6", "Team color as a hex code")
	playersCmd.AddCommand(playersAddCmd)
	playersAddCmd.Flags().String("team", "", "Team id the player belongs to")

	statsCmd.Flags().String("team", "", "Only count players of this team id")
	statsCmd.Flags().String("from", "", "First day to include (YYYY-MM-DD)")
	statsCmd.Flags().String("to", "", "Last day to include (YYYY-MM-DD)")
	sessionCmd.Flags().String("since", "", "Session start day (YYYY-MM-DD), defaults to today")
	exportCmd.Flags().String("format", "json", "Export format: json, xlsx, or teams.csv, players.csv, gameResults.csv")
	exportCmd.Flags().StringP("out", "o", "", "Write the export to this file instead of stdout")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "List the league's teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/teams")
	},
}

var teamsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")
		return performJSONRequest(http.MethodPost, "/api/teams", map[string]string{"name": args[0], "color": color})
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the league's players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players")
	},
}

var playersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"name": args[0]}
		if team, _ := cmd.Flags().GetString("team"); team != "" {
			body["teamId"] = team
		}
		return performJSONRequest(http.MethodPost, "/api/players", body)
	},
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List recorded games, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/games")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the player and team leaderboards",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		for flag, param := range map[string]string{"team": "teamFilter", "from": "dateFrom", "to": "dateTo"} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				q.Set(param, v)
			}
		}
		endpoint := "/api/stats"
		if len(q) > 0 {
			endpoint += "?" + q.Encode()
		}
		return performGetRequest(endpoint)
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show each player's score change since the start of a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/api/stats/session"
		if since, _ := cmd.Flags().GetString("since"); since != "" {
			endpoint += "?since=" + url.QueryEscape(since)
		}
		return performGetRequest(endpoint)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the league data",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		endpoint := "/api/export?format=" + url.QueryEscape(format)
		if strings.HasSuffix(format, ".csv") {
			endpoint = "/api/export/" + format
		}
		body, err := doRequest(http.MethodGet, endpoint, "", nil)
		if err != nil {
			return err
		}
		if out == "" {
			_, err = os.Stdout.Write(body)
			return err
		}
		if err := os.WriteFile(out, body, 0o644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(body), out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.json|file.xlsx>",
	Short: "Import a JSON bundle or XLSX workbook; nothing is written if any record is rejected",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}
		contentType := "application/json"
		if strings.EqualFold(filepath.Ext(args[0]), ".xlsx") {
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		}
		body, err := doRequest(http.MethodPost, "/api/import", contentType, bytes.NewReader(data))
		if err != nil {
			return err
		}
		fmt.Println(string(body))
		return nil
	},
}

var calculateCmd = &cobra.Command{
	Use:   "calculate <name:points> <name:points> <name:points> <name:points>",
	Short: "Compute scores and ranks for one table locally",
	Args:  cobra.ExactArgs(scoring.PlayersPerGame),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := parseEntries(args)
		if err != nil {
			return err
		}
		results, err := scoring.Calculate(entries)
		if err != nil {
			return err
		}
		for _, r := range results {
			fmt.Printf("%d. %-16s %7d %+7.1f\n", r.Rank, r.Label, r.Points, r.Score)
		}
		fmt.Printf("Sum of scores: %+.1f\n", scoring.Sum(results))
		return nil
	},
}

func parseEntries(args []string) ([]scoring.Entry, error) {
	entries := make([]scoring.Entry, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, ":")
		if i <= 0 {
			return nil, fmt.Errorf("expected name:points, got %q", arg)
		}
		points, err := strconv.Atoi(arg[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid points in %q: %w", arg, err)
		}
		entries = append(entries, scoring.Entry{Label: arg[:i], Points: points})
	}
	return entries, nil
}

func performGetRequest(endpoint string) error {
	body, err := doRequest(http.MethodGet, endpoint, "", nil)
	if err != nil {
		return err
	}
	fmt.Println("Response Body:")
	fmt.Println(string(body))
	return nil
}

func performJSONRequest(method, endpoint string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	body, err := doRequest(method, endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

// doRequest returns the response body, or an error for any non-2xx status.
func doRequest(method, endpoint, contentType string, payload io.Reader) ([]byte, error) {
	url := host + endpoint
	fmt.Fprintf(os.Stderr, "Making %s request to %s\n", method, url)

	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if adminToken != "" {
		req.Header.Set("X-Admin-Token", adminToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Status Code: %d\n", resp.StatusCode)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("server answered %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
