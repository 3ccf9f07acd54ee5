package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quickflip/server/internal/models"
	"quickflip/server/internal/queue"
)

const defaultAPIBase = "https://api.telegram.org"

// maxListedBuyers caps how many matched buyers are written into one message.
const maxListedBuyers = 5

type Settings struct {
	Enabled  bool
	BotToken string
	ChatID   string
	MinRank  models.Rank
}

type Service struct {
	logger   *logrus.Logger
	client   *http.Client
	settings Settings
	apiBase  string
}

func NewService(settings Settings, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	if !settings.MinRank.Valid() {
		settings.MinRank = models.RankD
	}
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		settings: settings,
		apiBase:  defaultAPIBase,
	}
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if !s.settings.Enabled {
		return nil
	}

	if s.settings.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.settings.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.settings.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.settings.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// HandleDealEvent is a queue subscriber. It announces newly matched deals
// whose rank clears the configured minimum and ignores everything else.
func (s *Service) HandleDealEvent(event queue.DealEvent) error {
	if !s.settings.Enabled || !s.shouldNotify(event) {
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"deal_id": event.Deal.ID,
		"rank":    event.Deal.Rank,
		"matches": len(event.Matches),
	}).Info("Sending deal notification")

	return s.SendMessage(FormatDeal(event.Deal, event.Matches))
}

func (s *Service) shouldNotify(event queue.DealEvent) bool {
	return event.Type == queue.DealCreated &&
		event.Deal.Status == models.StatusMatched &&
		event.Deal.Rank.AtLeast(s.settings.MinRank)
}

// FormatDeal renders the HTML notification text for a matched deal.
func FormatDeal(deal models.Deal, matches []models.BuyerMatch) string {
	a := deal.Analysis

	var b strings.Builder
	fmt.Fprintf(&b, "<b>New Rank %s Deal!</b>\n\n", html.EscapeString(string(deal.Rank)))
	fmt.Fprintf(&b, "🏷️ Deal: %s\n", html.EscapeString(deal.ID))
	fmt.Fprintf(&b, "💰 Asking: $%.2f\n", a.AskingPrice)
	fmt.Fprintf(&b, "🔨 ARV: $%.2f (repairs $%.2f)\n", a.ARV, a.RepairCost)
	fmt.Fprintf(&b, "📐 MAO: $%.2f\n", a.MaxAllowableOffer)
	fmt.Fprintf(&b, "💵 Spread: $%.2f\n", a.ProjectedSpread)
	fmt.Fprintf(&b, "📊 Discount: %.2f%%\n\n", a.DiscountPct)
	fmt.Fprintf(&b, "🤝 Matched buyers: %d\n", len(matches))

	for i, m := range matches {
		if i == maxListedBuyers {
			fmt.Fprintf(&b, "… and %d more\n", len(matches)-maxListedBuyers)
			break
		}
		fmt.Fprintf(&b, "• %s (%.1f)\n", html.EscapeString(m.Name), m.Score)
	}

	return b.String()
}
