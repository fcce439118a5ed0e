package notify

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier announces finished assets to a Telegram channel. It is best
// effort: a delivery failure is logged and never propagated into the
// generation pipeline.

type Options struct {
	Token      string
	ChatID     int64
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func New(opts Options) (*Notifier, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}

	return &Notifier{
		bot:    bot,
		chatID: opts.ChatID,
		logger: logger,
	}, nil
}

func (n *Notifier) AssetReady(campaignTitle, kind string) {
	text := fmt.Sprintf("🎨 New %s asset ready for campaign %q", kind, campaignTitle)
	msg := tgbotapi.NewMessage(n.chatID, text)

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn("telegram notification failed", "kind", kind, "err", err)
		return
	}
	n.logger.Debug("telegram notification sent", "kind", kind)
}

func (n *Notifier) CampaignBatchReady(brand string, count int) {
	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("🚀 %d campaign concepts generated for %s", count, brand))

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Warn("telegram notification failed", "brand", brand, "err", err)
	}
}
