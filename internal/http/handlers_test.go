package http

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/mahjong-league/internal/config"
	"github.com/mauv0809/mahjong-league/internal/database"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/metrics"
	"github.com/mauv0809/mahjong-league/internal/notifier"
	"github.com/mauv0809/mahjong-league/internal/pubsub"
	"github.com/mauv0809/mahjong-league/internal/scoring"
	"github.com/mauv0809/mahjong-league/internal/stats"
	"github.com/mauv0809/mahjong-league/internal/transfer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSlackSigningSecret = "test-signing-secret"
	testAdminToken         = "test-admin-token"
)

// setupTestServer initializes a new server with an in-memory database. A nil
// pubsubClient makes the server announce games inline.
func setupTestServer(t *testing.T, notifier notifier.Notifier, pubsubClient pubsub.PubSubClient, cfg config.Config) (*Server, *metrics.Mock) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(teardown)

	metricsMock := metrics.NewMock()
	server := NewServer(league.New(db), metricsMock, metrics.NewMetricsHandler(prometheus.NewRegistry()), cfg, notifier, pubsubClient)
	return server, metricsMock
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req, err := http.NewRequest("POST", targetURL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, body)
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func serve(server *Server, method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func serveJSON(t *testing.T, server *Server, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return serve(server, method, target, bytes.NewReader(body), "Content-Type", "application/json")
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// seedPlayers creates team Red with Alice and Bob, and unaffiliated Carol and Dave.
func seedPlayers(t *testing.T, store league.Store) (league.Team, []league.Player) {
	t.Helper()
	ctx := t.Context()
	red, err := store.CreateTeam(ctx, "Red", "#ff0000")
	require.NoError(t, err)

	var players []league.Player
	for i, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		var teamID *string
		if i < 2 {
			teamID = &red.ID
		}
		p, err := store.CreatePlayer(ctx, name, teamID)
		require.NoError(t, err)
		players = append(players, *p)
	}
	return *red, players
}

// newGame builds a valid game with scores from the calculator.
func newGame(t *testing.T, date time.Time, players []league.Player, points ...int) league.NewGameResult {
	t.Helper()
	entries := make([]scoring.Entry, len(points))
	for i, p := range points {
		entries[i] = scoring.Entry{Label: players[i].ID, Points: p}
	}
	results, err := scoring.Calculate(entries)
	require.NoError(t, err)

	game := league.NewGameResult{GameDate: date}
	for _, r := range results {
		game.Entries = append(game.Entries, league.NewPlayerResult{PlayerID: r.Label, Points: r.Points, Score: r.Score, Rank: r.Rank})
	}
	return game
}

func TestHealthCheckHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})

	rr := serve(server, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestTeamAndPlayerHandlers(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})

	rr := serveJSON(t, server, "POST", "/api/teams", map[string]string{"name": "Red", "color": "#ff0000"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	red := decode[league.Team](t, rr)
	assert.Equal(t, "Red", red.Name)

	t.Run("duplicate team name conflicts", func(t *testing.T) {
		rr := serveJSON(t, server, "POST", "/api/teams", map[string]string{"name": "Red", "color": "#00ff00"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		rr := serve(server, "POST", "/api/teams", strings.NewReader("{"), "Content-Type", "application/json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	rr = serveJSON(t, server, "POST", "/api/players", map[string]any{"name": "Alice", "teamId": red.ID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	alice := decode[league.Player](t, rr)
	require.NotNil(t, alice.TeamID)
	assert.Equal(t, red.ID, *alice.TeamID)

	t.Run("unknown team is not found", func(t *testing.T) {
		rr := serveJSON(t, server, "POST", "/api/players", map[string]any{"name": "Bob", "teamId": "missing"})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("team with members cannot be deleted", func(t *testing.T) {
		rr := serve(server, "DELETE", "/api/teams/"+red.ID, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	rr = serveJSON(t, server, "PUT", "/api/players/"+alice.ID, map[string]any{"name": "Alice", "teamId": nil})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Nil(t, decode[league.Player](t, rr).TeamID)

	rr = serve(server, "DELETE", "/api/teams/"+red.ID, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = serve(server, "GET", "/api/teams", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]league.Team](t, rr))

	rr = serve(server, "GET", "/api/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	players := decode[[]league.Player](t, rr)
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].Name)
}

func TestAdminToken(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{AdminToken: testAdminToken})
	body := `{"name":"Red","color":"#ff0000"}`

	t.Run("rejects mutation without token", func(t *testing.T) {
		rr := serve(server, "POST", "/api/teams", strings.NewReader(body))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects mutation with wrong token", func(t *testing.T) {
		rr := serve(server, "POST", "/api/teams", strings.NewReader(body), adminTokenHeader, "nope")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("accepts mutation with token", func(t *testing.T) {
		rr := serve(server, "POST", "/api/teams", strings.NewReader(body), adminTokenHeader, testAdminToken)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("reads stay open", func(t *testing.T) {
		rr := serve(server, "GET", "/api/teams", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestCalculateHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})

	t.Run("scores a table", func(t *testing.T) {
		rr := serveJSON(t, server, "POST", "/api/games/calculate", map[string]any{"entries": []scoring.Entry{
			{Label: "East", Points: 10000},
			{Label: "South", Points: 40000},
			{Label: "West", Points: 20000},
			{Label: "North", Points: 30000},
		}})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		resp := decode[struct {
			Results []scoring.Result `json:"results"`
			Sum     float64          `json:"sum"`
		}](t, rr)
		require.Len(t, resp.Results, 4)
		assert.Equal(t, scoring.Result{Label: "South", Points: 40000, Score: 60, Rank: 1}, resp.Results[0])
		assert.Equal(t, scoring.Result{Label: "East", Points: 10000, Score: -50, Rank: 4}, resp.Results[3])
		assert.Equal(t, 0.0, resp.Sum)
	})

	t.Run("rejects points not summing to the table total", func(t *testing.T) {
		rr := serveJSON(t, server, "POST", "/api/games/calculate", map[string]any{"entries": []scoring.Entry{
			{Label: "a", Points: 25000}, {Label: "b", Points: 25000}, {Label: "c", Points: 25000}, {Label: "d", Points: 24000},
		}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCreateGameHandler(t *testing.T) {
	date := time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC)

	t.Run("notifies inline without pubsub", func(t *testing.T) {
		mockNotifier := notifier.NewMock()
		server, metricsMock := setupTestServer(t, mockNotifier, nil, config.Config{})
		_, players := seedPlayers(t, server.Store)

		rr := serveJSON(t, server, "POST", "/api/games", newGame(t, date, players, 40000, 30000, 20000, 10000))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		game := decode[league.GameResult](t, rr)
		require.Len(t, game.Players, 4)
		assert.Equal(t, "Alice", game.Players[0].PlayerName)
		assert.Equal(t, 1, mockNotifier.GameResultCalls())
		assert.Equal(t, 1, metricsMock.GamesRecorded())

		rr = serve(server, "GET", "/api/games/"+game.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, game.ID, decode[league.GameResult](t, rr).ID)
	})

	t.Run("publishes an event with pubsub", func(t *testing.T) {
		mockNotifier := notifier.NewMock()
		mockPubSub := pubsub.NewMock()
		server, metricsMock := setupTestServer(t, mockNotifier, mockPubSub, config.Config{})
		_, players := seedPlayers(t, server.Store)

		rr := serveJSON(t, server, "POST", "/api/games", newGame(t, date, players, 40000, 30000, 20000, 10000))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		require.Len(t, mockPubSub.SendMessageCalls, 1)
		assert.Equal(t, pubsub.EventGameRecorded, mockPubSub.SendMessageCalls[0].Topic)
		event, ok := mockPubSub.SendMessageCalls[0].Data.(pubsub.GameRecorded)
		require.True(t, ok)
		assert.Len(t, event.Seats, 4)
		assert.Equal(t, 0, mockNotifier.GameResultCalls())
		assert.Equal(t, 1, metricsMock.EventsPublished())
	})

	t.Run("rejects invalid games", func(t *testing.T) {
		server, metricsMock := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
		_, players := seedPlayers(t, server.Store)

		short := newGame(t, date, players, 40000, 30000, 20000, 10000)
		short.Entries = short.Entries[:3]
		rr := serveJSON(t, server, "POST", "/api/games", short)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		unknown := newGame(t, date, players, 40000, 30000, 20000, 10000)
		unknown.Entries[3].PlayerID = "ghost"
		rr = serveJSON(t, server, "POST", "/api/games", unknown)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		wrapped := newGame(t, date, players, 40000, 30000, 20000, 10000)
		for i, p := range []int{math.MaxInt, math.MaxInt, 50001, 50001} {
			wrapped.Entries[i].Points = p
		}
		rr = serveJSON(t, server, "POST", "/api/games", wrapped)
		assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

		assert.Equal(t, 0, metricsMock.GamesRecorded())
	})

	t.Run("updates and deletes", func(t *testing.T) {
		server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
		_, players := seedPlayers(t, server.Store)
		game, err := server.Store.CreateGameResult(t.Context(), newGame(t, date, players, 40000, 30000, 20000, 10000))
		require.NoError(t, err)

		rr := serveJSON(t, server, "PUT", "/api/games/"+game.ID, newGame(t, date, players, 10000, 20000, 30000, 40000))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		updated := decode[league.GameResult](t, rr)
		assert.Equal(t, "Dave", updated.Players[0].PlayerName)

		rr = serve(server, "DELETE", "/api/games/"+game.ID, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = serve(server, "GET", "/api/games/"+game.ID, nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestStatsHandler(t *testing.T) {
	server, metricsMock := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
	red, players := seedPlayers(t, server.Store)
	ctx := t.Context()

	_, err := server.Store.CreateGameResult(ctx, newGame(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), players, 40000, 30000, 20000, 10000))
	require.NoError(t, err)
	_, err = server.Store.CreateGameResult(ctx, newGame(t, time.Date(2024, 5, 8, 19, 0, 0, 0, time.UTC), players, 10000, 20000, 30000, 40000))
	require.NoError(t, err)

	t.Run("all games", func(t *testing.T) {
		rr := serve(server, "GET", "/api/stats", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		board := decode[stats.Leaderboard](t, rr)

		require.Len(t, board.Players, 4)
		names := make([]string, 0, len(board.Players))
		for _, p := range board.Players {
			assert.Equal(t, 2, p.GameCount)
			names = append(names, p.PlayerName)
		}
		// Equal totals fall back to name order.
		assert.Equal(t, []string{"Alice", "Dave", "Bob", "Carol"}, names)
		assert.Equal(t, 10.0, board.Players[0].TotalScore)
		assert.Equal(t, -10.0, board.Players[3].TotalScore)
		require.Len(t, board.Teams, 1)
		assert.Equal(t, 0.0, board.Teams[0].TotalScore)
		assert.Equal(t, 2, board.Teams[0].PlayerCount)
		assert.Equal(t, 1, metricsMock.StatsRequests())
	})

	t.Run("date range", func(t *testing.T) {
		rr := serve(server, "GET", "/api/stats?dateFrom=2024-05-01&dateTo=2024-05-01", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		board := decode[stats.Leaderboard](t, rr)
		require.Len(t, board.Players, 4)
		assert.Equal(t, "Alice", board.Players[0].PlayerName)
		assert.Equal(t, 60.0, board.Players[0].TotalScore)
		assert.Equal(t, 1, board.Players[0].Wins)
	})

	t.Run("team filter", func(t *testing.T) {
		rr := serve(server, "GET", "/api/stats?teamFilter="+red.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		board := decode[stats.Leaderboard](t, rr)
		require.Len(t, board.Players, 2)
		assert.Equal(t, "Red", board.Players[0].TeamName)
	})

	t.Run("invalid date", func(t *testing.T) {
		rr := serve(server, "GET", "/api/stats?dateFrom=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestStatsHandler_TeamFilterKeepsTeamLeaderboard(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
	red, players := seedPlayers(t, server.Store)
	ctx := t.Context()

	blue, err := server.Store.CreateTeam(ctx, "Blue", "#0000ff")
	require.NoError(t, err)
	for _, p := range players[2:] {
		_, err := server.Store.UpdatePlayer(ctx, p.ID, p.Name, &blue.ID)
		require.NoError(t, err)
	}
	_, err = server.Store.CreateGameResult(ctx, newGame(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), players, 40000, 30000, 20000, 10000))
	require.NoError(t, err)

	rr := serve(server, "GET", "/api/stats?teamFilter="+red.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	board := decode[stats.Leaderboard](t, rr)

	require.Len(t, board.Players, 2)
	for _, p := range board.Players {
		assert.Equal(t, "Red", p.TeamName)
	}
	require.Len(t, board.Teams, 2)
	assert.Equal(t, "Red", board.Teams[0].TeamName)
	assert.Equal(t, "Blue", board.Teams[1].TeamName)
	assert.Equal(t, 2, board.Teams[1].PlayerCount)
}

func TestSessionHandlers(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _ := setupTestServer(t, mockNotifier, nil, config.Config{})
	_, players := seedPlayers(t, server.Store)
	ctx := t.Context()

	_, err := server.Store.CreateGameResult(ctx, newGame(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), players, 40000, 30000, 20000, 10000))
	require.NoError(t, err)
	_, err = server.Store.CreateGameResult(ctx, newGame(t, time.Date(2024, 5, 2, 19, 0, 0, 0, time.UTC), players, 10000, 20000, 30000, 40000))
	require.NoError(t, err)

	rr := serve(server, "GET", "/api/stats/session?since=2024-05-02", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	session := decode[struct {
		Since  string              `json:"since"`
		Deltas []stats.PlayerDelta `json:"deltas"`
	}](t, rr)

	assert.Equal(t, "2024-05-02", session.Since)
	require.Len(t, session.Deltas, 4)
	assert.Equal(t, "Dave", session.Deltas[0].PlayerName)
	assert.Equal(t, 60.0, session.Deltas[0].Delta)
	assert.Equal(t, -50.0, session.Deltas[0].Before)
	assert.Equal(t, "Alice", session.Deltas[3].PlayerName)

	rr = serve(server, "POST", "/api/stats/session/announce?since=2024-05-02&dry_run=true", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, mockNotifier.SendSessionSummaryCalls, 1)
	assert.Len(t, mockNotifier.SendSessionSummaryCalls[0], 4)

	rr = serve(server, "POST", "/api/stats/announce", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, mockNotifier.SendLeaderboardCalls, 1)
	assert.Len(t, mockNotifier.SendLeaderboardCalls[0].Players, 4)

	rr = serve(server, "GET", "/api/stats/session?since=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayerChartHandler(t *testing.T) {
	server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
	_, players := seedPlayers(t, server.Store)
	_, err := server.Store.CreateGameResult(t.Context(), newGame(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), players, 40000, 30000, 20000, 10000))
	require.NoError(t, err)

	rr := serve(server, "GET", "/api/players/"+players[0].ID+"/chart", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	rr = serve(server, "GET", "/api/players/missing/chart", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// seedLeagueServer returns a server holding two games between four players.
func seedLeagueServer(t *testing.T) *Server {
	t.Helper()
	server, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
	_, players := seedPlayers(t, server.Store)
	_, err := server.Store.CreateGameResult(t.Context(), newGame(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), players, 40000, 30000, 20000, 10000))
	require.NoError(t, err)
	_, err = server.Store.CreateGameResult(t.Context(), newGame(t, time.Date(2024, 5, 2, 19, 0, 0, 0, time.UTC), players, 35000, 35000, 20000, 10000))
	require.NoError(t, err)
	return server
}

func leaderboardOf(t *testing.T, server *Server) []stats.PlayerStats {
	t.Helper()
	rr := serve(server, "GET", "/api/stats", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[stats.Leaderboard](t, rr).Players
}

func assertSameStandings(t *testing.T, want, got []stats.PlayerStats) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].PlayerName, got[i].PlayerName)
		assert.Equal(t, want[i].TotalScore, got[i].TotalScore)
		assert.Equal(t, want[i].GameCount, got[i].GameCount)
		assert.Equal(t, want[i].TeamName, got[i].TeamName)
	}
}

func TestExportImportHandlers(t *testing.T) {
	source := seedLeagueServer(t)
	want := leaderboardOf(t, source)

	t.Run("json bundle", func(t *testing.T) {
		rr := serve(source, "GET", "/api/export", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Header().Get("Content-Disposition"), ".json")

		target, metricsMock := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
		imported := serve(target, "POST", "/api/import", bytes.NewReader(rr.Body.Bytes()), "Content-Type", "application/json")
		require.Equal(t, http.StatusOK, imported.Code, imported.Body.String())
		assert.Equal(t, transfer.Summary{Teams: 1, Players: 4, Games: 2}, decode[transfer.Summary](t, imported))
		assert.Equal(t, 1, metricsMock.Imports(true))
		assertSameStandings(t, want, leaderboardOf(t, target))

		// Names now clash with the existing records.
		again := serve(target, "POST", "/api/import", bytes.NewReader(rr.Body.Bytes()), "Content-Type", "application/json")
		assert.Equal(t, http.StatusConflict, again.Code)
		assert.Equal(t, 1, metricsMock.Imports(false))
		assertSameStandings(t, want, leaderboardOf(t, target))
	})

	t.Run("xlsx workbook", func(t *testing.T) {
		rr := serve(source, "GET", "/api/export?format=xlsx", nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, xlsxContentTypeForTest, rr.Header().Get("Content-Type"))

		target, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
		imported := serve(target, "POST", "/api/import", bytes.NewReader(rr.Body.Bytes()), "Content-Type", xlsxContentTypeForTest)
		require.Equal(t, http.StatusOK, imported.Code, imported.Body.String())
		assertSameStandings(t, want, leaderboardOf(t, target))
	})

	t.Run("csv files", func(t *testing.T) {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		for _, kind := range []string{transfer.TeamsSheet, transfer.PlayersSheet, transfer.GameResultsSheet} {
			rr := serve(source, "GET", "/api/export/"+kind+".csv", nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))

			part, err := form.CreateFormFile(kind, kind+".csv")
			require.NoError(t, err)
			_, err = part.Write(rr.Body.Bytes())
			require.NoError(t, err)
		}
		require.NoError(t, form.Close())

		target, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
		imported := serve(target, "POST", "/api/import", &body, "Content-Type", form.FormDataContentType())
		require.Equal(t, http.StatusOK, imported.Code, imported.Body.String())
		assertSameStandings(t, want, leaderboardOf(t, target))
	})

	t.Run("unknown formats", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, serve(source, "GET", "/api/export?format=pdf", nil).Code)
		assert.Equal(t, http.StatusNotFound, serve(source, "GET", "/api/export/matches.csv", nil).Code)
		assert.Equal(t, http.StatusNotFound, serve(source, "GET", "/api/export/teams.json", nil).Code)
	})

	t.Run("malformed import writes nothing", func(t *testing.T) {
		target, _ := setupTestServer(t, notifier.NewMock(), nil, config.Config{})
		rr := serve(target, "POST", "/api/import", strings.NewReader(`{"teams": [`), "Content-Type", "application/json")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Empty(t, leaderboardOf(t, target))
	})
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestLeaderboardCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	var got stats.Leaderboard
	mockNotifier.FormatLeaderboardResponseFunc = func(board stats.Leaderboard) (any, error) {
		got = board
		return slack.Message{Msg: slack.Msg{Text: "leaderboard"}}, nil
	}
	server, _ := setupTestServer(t, mockNotifier, nil, config.Config{Slack: config.SlackConfig{SigningSecret: testSlackSigningSecret}})
	_, players := seedPlayers(t, server.Store)
	_, err := server.Store.CreateGameResult(t.Context(), newGame(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), players, 40000, 30000, 20000, 10000))
	require.NoError(t, err)

	req := createSlackCommandRequest(t, "/slack/command/leaderboard", url.Values{}, testSlackSigningSecret)
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "leaderboard")
	require.Len(t, got.Players, 4)
	assert.Equal(t, "Alice", got.Players[0].PlayerName)
}

func TestPlayerStatsCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	var found *stats.PlayerStats
	mockNotifier.FormatPlayerStatsResponseFunc = func(stats *stats.PlayerStats, query string) (any, error) {
		found = stats
		return slack.Message{}, nil
	}
	var notFound string
	mockNotifier.FormatPlayerNotFoundResponseFunc = func(query string) (any, error) {
		notFound = query
		return slack.Message{}, nil
	}
	server, _ := setupTestServer(t, mockNotifier, nil, config.Config{Slack: config.SlackConfig{SigningSecret: testSlackSigningSecret}})
	_, players := seedPlayers(t, server.Store)
	_, err := server.Store.CreateGameResult(t.Context(), newGame(t, time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC), players, 40000, 30000, 20000, 10000))
	require.NoError(t, err)

	t.Run("handles found player", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"car"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, found)
		assert.Equal(t, "Carol", found.PlayerName)
		assert.Equal(t, -20.0, found.TotalScore)
	})

	t.Run("handles not found player", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Unknown"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Unknown", notFound)
	})

	t.Run("handles missing player name", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Carol"}}, testSlackSigningSecret)
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request signed with another secret", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Carol"}}, "other-secret")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with missing signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Carol"}}, testSlackSigningSecret)
		req.Header.Del("X-Slack-Signature")
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with outdated timestamp", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"Carol"}}, testSlackSigningSecret)
		req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestGameRecordedHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	server, _ := setupTestServer(t, mockNotifier, pubsub.NewMock(), config.Config{})

	event := pubsub.GameRecorded{
		GameID:   "g1",
		GameDate: time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC),
		Seats: []pubsub.SeatResult{
			{PlayerID: "p1", PlayerName: "Alice", Points: 40000, Score: 60, Rank: 1},
			{PlayerID: "p2", PlayerName: "Bob", Points: 30000, Score: 10, Rank: 2},
			{PlayerID: "p3", PlayerName: "Carol", Points: 20000, Score: -20, Rank: 3},
			{PlayerID: "p4", PlayerName: "Dave", Points: 10000, Score: -50, Rank: 4},
		},
	}
	data, err := pubsub.Encode(event)
	require.NoError(t, err)

	t.Run("notifies the game", func(t *testing.T) {
		envelope := map[string]any{
			"subscription": "projects/test/subscriptions/game-recorded",
			"message":      map[string]string{"data": base64.StdEncoding.EncodeToString(data)},
		}
		rr := serveJSON(t, server, "POST", "/pubsub/game-recorded", envelope)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Equal(t, 1, mockNotifier.GameResultCalls())
		game := mockNotifier.SendGameResultCalls[0].Game
		assert.Equal(t, "g1", game.ID)
		require.Len(t, game.Players, 4)
		assert.Equal(t, "Dave", game.Players[3].PlayerName)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		envelope := map[string]any{"message": map[string]string{"data": "not base64!"}}
		rr := serveJSON(t, server, "POST", "/pubsub/game-recorded", envelope)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("asks for redelivery when notifying fails", func(t *testing.T) {
		mockNotifier.SendGameResultFunc = func(*league.GameResult, bool) error { return fmt.Errorf("slack down") }
		t.Cleanup(func() { mockNotifier.SendGameResultFunc = nil })

		envelope := map[string]any{"message": map[string]string{"data": base64.StdEncoding.EncodeToString(data)}}
		rr := serveJSON(t, server, "POST", "/pubsub/game-recorded", envelope)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestClearStoreHandler(t *testing.T) {
	server := seedLeagueServer(t)

	rr := serve(server, "POST", "/clear", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Store cleared!", rr.Body.String())
	assert.Empty(t, leaderboardOf(t, server))
}
