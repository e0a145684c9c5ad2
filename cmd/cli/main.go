package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "legendtrack-cli",
		Short: "Legend League tracker CLI tool",
		Long:  `A command line interface for interacting with the legendtrack API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the legendtrack API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	trackCmd := &cobra.Command{
		Use:   "track <player-tag>",
		Short: "Start tracking a Legend League player",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			trackPlayer(args[0])
		},
	}

	untrackCmd := &cobra.Command{
		Use:   "untrack <player-tag>",
		Short: "Stop tracking a player (history is kept)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			untrackPlayer(args[0])
		},
	}

	playerCmd := &cobra.Command{
		Use:   "player <player-tag>",
		Short: "Show a player's trophy day",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showPlayer(args[0])
		},
	}

	leaderboardCmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the tracked-player leaderboard",
		Run: func(cmd *cobra.Command, args []string) {
			showLeaderboard()
		},
	}

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Trigger a poll cycle now",
		Run: func(cmd *cobra.Command, args []string) {
			triggerPoll()
		},
	}

	rootCmd.AddCommand(trackCmd, untrackCmd, playerCmd, leaderboardCmd, pollCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func trackPlayer(tag string) {
	payload, _ := json.Marshal(map[string]string{"player_tag": tag})

	body, status := doRequest(http.MethodPost, "/api/v1/players", bytes.NewReader(payload))
	if status != http.StatusOK && status != http.StatusCreated {
		fail(status, body)
	}

	var resp struct {
		IsNewPlayer bool `json:"is_new_player"`
		Player      struct {
			Tag             string `json:"player_tag"`
			Name            string `json:"name"`
			ClanName        string `json:"clan_name"`
			CurrentTrophies int    `json:"current_trophies"`
		} `json:"player"`
	}
	mustDecode(body, &resp)

	verb := "Already tracking"
	if resp.IsNewPlayer {
		verb = "Now tracking"
	}
	fmt.Printf("%s #%s (%s, %s) at %d trophies\n",
		verb, resp.Player.Tag, resp.Player.Name, resp.Player.ClanName, resp.Player.CurrentTrophies)
}

func untrackPlayer(tag string) {
	body, status := doRequest(http.MethodDelete, "/api/v1/players/"+url.PathEscape(tag), nil)
	if status != http.StatusOK {
		fail(status, body)
	}

	fmt.Printf("Stopped tracking #%s\n", tag)
}

func showPlayer(tag string) {
	body, status := doRequest(http.MethodGet, "/api/v1/players/"+url.PathEscape(tag), nil)
	if status != http.StatusOK {
		fail(status, body)
	}

	var resp struct {
		Player struct {
			Tag             string `json:"player_tag"`
			Name            string `json:"name"`
			ClanName        string `json:"clan_name"`
			CurrentTrophies int    `json:"current_trophies"`
		} `json:"player"`
		Summary struct {
			OffenseTotal  int     `json:"offense_total"`
			OffenseAvg    float64 `json:"offense_avg"`
			DefenseTotal  int     `json:"defense_total"`
			DefenseAvg    float64 `json:"defense_avg"`
			NetChange     int     `json:"net_change"`
			SeasonHighest int     `json:"season_highest"`
		} `json:"summary"`
		TodayAttacks  []json.RawMessage `json:"today_attacks"`
		TodayDefenses []json.RawMessage `json:"today_defenses"`
		SeasonInfo    struct {
			Name string `json:"name"`
			Day  int    `json:"day"`
		} `json:"season_info"`
	}
	mustDecode(body, &resp)

	fmt.Printf("#%s %s (%s) — %d trophies\n",
		resp.Player.Tag, resp.Player.Name, resp.Player.ClanName, resp.Player.CurrentTrophies)
	fmt.Printf("Season %s, day %d (highest: %d)\n",
		resp.SeasonInfo.Name, resp.SeasonInfo.Day, resp.Summary.SeasonHighest)
	fmt.Printf("Today: %d attacks +%d (avg %.1f), %d defenses -%d (avg %.1f), net %+d\n",
		len(resp.TodayAttacks), resp.Summary.OffenseTotal, resp.Summary.OffenseAvg,
		len(resp.TodayDefenses), resp.Summary.DefenseTotal, resp.Summary.DefenseAvg,
		resp.Summary.NetChange)
}

func showLeaderboard() {
	body, status := doRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	if status != http.StatusOK {
		fail(status, body)
	}

	var resp struct {
		Entries []struct {
			Rank      int    `json:"rank"`
			Tag       string `json:"tag"`
			Name      string `json:"name"`
			Trophies  int    `json:"trophies"`
			NetChange int    `json:"net_change"`
		} `json:"entries"`
	}
	mustDecode(body, &resp)

	if len(resp.Entries) == 0 {
		fmt.Println("No tracked players yet.")
		return
	}

	for _, e := range resp.Entries {
		fmt.Printf("%3d. %-20s #%-12s %5d (%+d today)\n",
			e.Rank, e.Name, e.Tag, e.Trophies, e.NetChange)
	}
}

func triggerPoll() {
	body, status := doRequest(http.MethodPost, "/api/v1/poll", nil)
	if status == http.StatusConflict {
		fmt.Println("A poll cycle is already running.")
		os.Exit(1)
	}
	if status != http.StatusOK {
		fail(status, body)
	}

	var resp struct {
		Outcomes []struct {
			Tag    string `json:"player_tag"`
			Status string `json:"status"`
			Detail string `json:"detail"`
		} `json:"outcomes"`
	}
	mustDecode(body, &resp)

	for _, o := range resp.Outcomes {
		fmt.Printf("#%-12s %-8s %s\n", o.Tag, o.Status, o.Detail)
	}
	fmt.Printf("Cycle finished: %d players\n", len(resp.Outcomes))
}

func doRequest(method, path string, body io.Reader) ([]byte, int) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	return data, resp.StatusCode
}

func mustDecode(body []byte, v any) {
	if err := json.Unmarshal(body, v); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
}

func fail(status int, body []byte) {
	fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
	os.Exit(1)
}
