package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/mahjong-league/internal/league"
	"github.com/mauv0809/mahjong-league/internal/metrics"
	"github.com/mauv0809/mahjong-league/internal/notifier"
	"github.com/mauv0809/mahjong-league/internal/stats"
	"github.com/slack-go/slack"
)

// leaderboardSize caps the rows posted to the channel.
const leaderboardSize = 10

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. Without a token every message is only
// logged, as in a dry run.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	n := &Notifier{
		channelID: channelID,
		metrics:   metrics,
	}
	if token != "" {
		n.api = slack.New(token)
	} else {
		log.Warn("Slack token not set, notifications will only be logged")
	}
	return n
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// Implement the Notifier interface
func (s *Notifier) SendGameResult(game *league.GameResult, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatGameResult(game), dryRun)
	return err
}

func (s *Notifier) SendLeaderboard(board stats.Leaderboard, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatLeaderboard(board), dryRun)
	return err
}

func (s *Notifier) SendSessionSummary(deltas []stats.PlayerDelta, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatSessionSummary(deltas), dryRun)
	return err
}

// FormatLeaderboardResponse formats a leaderboard message for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(board stats.Leaderboard) (any, error) {
	return s.formatLeaderboard(board), nil
}

// FormatPlayerStatsResponse formats a player stats message for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(stats *stats.PlayerStats, query string) (any, error) {
	return s.formatPlayerStats(stats, query), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func signed(score float64) string {
	return fmt.Sprintf("%+.1f", score)
}

// formatGameResult creates the Slack message for a recorded game using Block Kit.
func (s *Notifier) formatGameResult(game *league.GameResult) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🀄 Game recorded! 🀄", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// The game's own offset is what the players saw on the clock.
	dateText := game.GameDate.Format("Monday 02 Jan 2006, 15:04")
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", dateText, true, false), nil, nil))

	lines := make([]string, 0, len(game.Players))
	for _, p := range game.Players {
		lines = append(lines, fmt.Sprintf("%d. %s *%s*: %d points (%s)", p.Rank, medal(p.Rank), p.PlayerName, p.Points, signed(p.Score)))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatLeaderboard(board stats.Leaderboard) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 League Leaderboard 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(board.Players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No games recorded yet. Go play some hanchan!", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, p := range board.Players {
		if i == leaderboardSize {
			break
		}
		position := i + 1
		team := ""
		if p.TeamName != "" {
			team = fmt.Sprintf(" [%s]", p.TeamName)
		}
		playerText := fmt.Sprintf("%d. %s %s%s\n> Total: %s | Games: %d | Avg rank: %.2f | 1st/2nd/3rd/4th: %d/%d/%d/%d",
			position,
			medal(position),
			p.PlayerName,
			team,
			signed(p.TotalScore),
			p.GameCount,
			p.AverageRank,
			p.Wins, p.Seconds, p.Thirds, p.Fourths,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", playerText, true, false), nil, nil))
	}

	if len(board.Teams) > 0 {
		blocks = append(blocks, slack.NewDividerBlock())
		lines := make([]string, 0, len(board.Teams))
		for i, t := range board.Teams {
			lines = append(lines, fmt.Sprintf("%d. *%s*: %s over %d games (%d players)", i+1, t.TeamName, signed(t.TotalScore), t.GameCount, t.PlayerCount))
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", "*Teams*\n"+strings.Join(lines, "\n"), false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatSessionSummary(deltas []stats.PlayerDelta) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🀄 Today's points 🀄", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(deltas) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Nobody has played today.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	lines := make([]string, 0, len(deltas))
	for _, d := range deltas {
		lines = append(lines, fmt.Sprintf("*%s*: %s in %d games (total %s)", d.PlayerName, signed(d.Delta), d.Games, signed(d.After)))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatPlayerStats(stat *stats.PlayerStats, query string) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("🏆 Stats for %s 🏆", stat.PlayerName)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	playerText := fmt.Sprintf("> *Total score*: %s\n> *Games*: %d\n> *Average score*: %s\n> *Average rank*: %.2f\n> *1st/2nd/3rd/4th*: %d/%d/%d/%d",
		signed(stat.TotalScore),
		stat.GameCount,
		signed(stat.AverageScore),
		stat.AverageRank,
		stat.Wins, stat.Seconds, stat.Thirds, stat.Fourths,
	)
	if stat.TeamName != "" {
		playerText += fmt.Sprintf("\n> *Team*: %s", stat.TeamName)
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	)
}
