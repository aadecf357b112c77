package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"prodi/internal/domain/entity"
	"prodi/internal/domain/value"
	"prodi/pkg/contextx"
	"prodi/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const defaultExplorerTx = "https://explorer.solana.com/tx/%s?cluster=devnet"

type TelegramBot struct {
	bot        *telego.Bot
	chatID     int64
	explorerTx string
}

type Option func(*options)

type options struct {
	apiServer  string
	httpClient *http.Client
	explorerTx string
}

// WithAPIServer points the bot at another Bot API server.
func WithAPIServer(url string) Option {
	return func(o *options) {
		o.apiServer = url
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithExplorer sets the transaction link format, %s is the signature.
func WithExplorer(format string) Option {
	return func(o *options) {
		o.explorerTx = format
	}
}

func NewTelegramBot(ctx context.Context, token string, chatID int64, opts ...Option) (*TelegramBot, error) {
	o := options{explorerTx: defaultExplorerTx}
	for _, opt := range opts {
		opt(&o)
	}

	botOpts := []telego.BotOption{telego.WithLogger(botLogger{ctx: ctx})}

	if o.apiServer != "" {
		botOpts = append(botOpts, telego.WithAPIServer(o.apiServer))
	}

	if o.httpClient != nil {
		botOpts = append(botOpts, telego.WithHTTPClient(o.httpClient))
	}

	bot, err := telego.NewBot(token, botOpts...)
	if err != nil {
		return nil, fmt.Errorf("telego.NewBot: %w", err)
	}

	return &TelegramBot{
		bot:        bot,
		chatID:     chatID,
		explorerTx: o.explorerTx,
	}, nil
}

// Run relays deal events to the operator chat until ctx is done or the
// channel is closed. Delivery failures are logged and skipped.
func (b *TelegramBot) Run(ctx context.Context, events <-chan entity.DealEvent) error {
	logger(ctx).Info("deal notifier started", slog.Int64("chat-id", b.chatID))

	for {
		select {
		case <-ctx.Done():
			logger(ctx).Info("deal notifier stopped")
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}

			if err := b.SendEvent(ctx, event); err != nil {
				logger(ctx).Error("failed to send deal event",
					slog.String(logx.FieldDealID, event.Deal.ID.String()),
					logx.Error(err),
				)
			}
		}
	}
}

func (b *TelegramBot) SendEvent(ctx context.Context, event entity.DealEvent) error {
	msg := tu.Message(tu.ID(b.chatID), b.FormatEvent(event)).
		WithParseMode(telego.ModeHTML)

	sent, err := b.bot.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	logger(ctx).Debug("deal event sent",
		slog.String(logx.FieldDealID, event.Deal.ID.String()),
		slog.Int(logx.FieldMessageID, sent.MessageID),
	)

	return nil
}

func (b *TelegramBot) FormatEvent(event entity.DealEvent) string {
	deal := event.Deal

	var sb strings.Builder

	switch event.Type {
	case entity.DealEventCreated:
		sb.WriteString("🤝 <b>New deal proposed</b>\n\n")
	case entity.DealEventStatusChanged:
		if deal.Status == value.DealStatusAccepted {
			sb.WriteString("✅ <b>Deal accepted</b>\n\n")
		} else {
			sb.WriteString("❌ <b>Deal rejected</b>\n\n")
		}
	case entity.DealEventMemoRecorded:
		sb.WriteString("⛓ <b>Deal memo recorded</b>\n\n")
	}

	fmt.Fprintf(&sb, "<b>From:</b> <code>%s</code>\n", deal.InitiatorWallet)
	fmt.Fprintf(&sb, "<b>To:</b> <code>%s</code>\n", deal.PartnerWallet)

	if deal.Terms.Marketplaces != "" {
		fmt.Fprintf(&sb, "<b>Marketplaces:</b> %s%s\n", html.EscapeString(deal.Terms.Marketplaces), exclusive(deal.Terms.IsExclusiveMP))
	}

	if deal.Terms.Regions != "" {
		fmt.Fprintf(&sb, "<b>Regions:</b> %s%s\n", html.EscapeString(deal.Terms.Regions), exclusive(deal.Terms.IsExclusiveReg))
	}

	fmt.Fprintf(&sb, "<b>ID:</b> <code>%s</code>", deal.ID)

	if event.Type == entity.DealEventMemoRecorded && deal.BlockchainTx != nil {
		fmt.Fprintf(&sb, "\n\n🔗 <a href=\"%s\">Transaction</a>", fmt.Sprintf(b.explorerTx, *deal.BlockchainTx))
	}

	return sb.String()
}

func exclusive(ok bool) string {
	if ok {
		return " (exclusive)"
	}

	return ""
}

// botLogger routes telego's logging through slog.
type botLogger struct {
	ctx context.Context //nolint:containedctx
}

func (l botLogger) Debugf(format string, args ...any) {
	logger(l.ctx).Debug(fmt.Sprintf(format, args...))
}

func (l botLogger) Errorf(format string, args ...any) {
	logger(l.ctx).Error(fmt.Sprintf(format, args...))
}
