// Package telegram provides a client for sending notifications via Telegram Bot API.
// It formats profitable upgrade deals into human-readable messages and handles
// delivery with retry logic for reliability.
//
// The client supports MarkdownV2 formatting and includes error handling for
// common Telegram API issues like rate limiting and network failures.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tf2tools/tf2arb/internal/models"
	"github.com/tf2tools/tf2arb/internal/pricing"
)

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send sends a notification with the profitable deals from a run. keyRate and
// minDisplayKeys drive the keys re-expression of large refined amounts; a nil
// keyRate leaves everything in refined.
func (c *Client) Send(deals []models.UpgradeEvaluation, keyRate *float64, minDisplayKeys float64) error {
	message := formatMessage(deals, keyRate, minDisplayKeys)

	msg := tgbotapi.NewMessage(c.chatID, message)
	msg.ParseMode = "MarkdownV2"

	// Send with retry
	var lastErr error

	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage formats deals into a Telegram message
func formatMessage(deals []models.UpgradeEvaluation, keyRate *float64, minDisplayKeys float64) string {
	var b strings.Builder
	b.WriteString("💰 *Profitable Killstreak Upgrades*\n\n")

	if len(deals) > 0 {
		dateStr := escapeMarkdownV2(deals[0].EvaluatedAt.Format("2006-01-02 15:04:05"))
		b.WriteString(fmt.Sprintf("📅 Evaluated: %s\n\n", dateStr))
	}

	for i, deal := range deals {
		item := escapeMarkdownV2(deal.UpgradedItem)
		profit := escapeMarkdownV2(formatAmount(deal.ProfitRefined, keyRate, minDisplayKeys))
		cost := escapeMarkdownV2(formatAmount(deal.TotalCostRefined, keyRate, minDisplayKeys))
		buy := escapeMarkdownV2(formatAmount(deal.UpgradedBuyRefined, keyRate, minDisplayKeys))
		roiStr := escapeMarkdownV2(fmt.Sprintf("%.1f%%", deal.ROIPercent))

		b.WriteString(fmt.Sprintf("%d\\. %s\n", i+1, item))
		b.WriteString(fmt.Sprintf("   📈 Profit: *%s* \\(ROI %s\\)\n", profit, roiStr))
		b.WriteString(fmt.Sprintf("   💸 Cost: %s → Resale: %s\n\n", cost, buy))
	}

	return b.String()
}

// formatAmount renders a refined amount, re-expressed in keys when large
// enough to read better that way.
func formatAmount(refined float64, keyRate *float64, minDisplayKeys float64) string {
	price := pricing.ToKeysIfWorthIt(refined, keyRate, minDisplayKeys)
	if price.Currency == models.CurrencyKeys {
		return fmt.Sprintf("%.2f keys", price.Amount)
	}
	return fmt.Sprintf("%.2f ref", price.Amount)
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
