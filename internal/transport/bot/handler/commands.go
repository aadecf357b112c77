package handler

import (
	"fmt"
	"html"
	"strings"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"prodi/internal/domain/value"
	"prodi/pkg/errcodes"
	"prodi/pkg/logx"
)

const startMessage = `<b>Prodi desk</b>

/profile &lt;wallet&gt; shows a company page
/search &lt;query&gt; looks up companies by name, region or email
/status shows background jobs`

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return reply(ctx, msg, startMessage, nil)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return reply(ctx, msg, h.statusText(), nil)
}

func (h *Handler) statusText() string {
	warmer := "🔴 stopped"
	if h.warmer != nil && h.warmer.IsRunning() {
		warmer = "🟢 running"
	}

	return "Search snapshot warmer: " + warmer
}

func (h *Handler) OnProfile(ctx *th.Context, msg telego.Message) error {
	_, _, args := tu.ParseCommand(msg.Text)
	if len(args) != 1 {
		return reply(ctx, msg, "Usage: /profile &lt;wallet&gt;", nil)
	}

	view, err := h.profiles.View(ctx, value.Wallet(""), args[0])
	if err != nil {
		switch errcodes.KindOf(err) {
		case errcodes.KindNotFound:
			return reply(ctx, msg, "Company not found.", nil)
		case errcodes.KindInvalidArgument:
			return reply(ctx, msg, "That is not a wallet address.", nil)
		default:
			logger(ctx).Error("profiles.View", logx.Error(err))

			return reply(ctx, msg, "Directory is unavailable, try again later.", nil)
		}
	}

	p := view.Profile

	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>%s</b> (%s)\n", html.EscapeString(p.Company), p.Type)
	fmt.Fprintf(&sb, "Region: %s\n", html.EscapeString(p.Region))

	if p.Marketplaces != "" {
		fmt.Fprintf(&sb, "Marketplaces: %s\n", html.EscapeString(p.Marketplaces))
	}

	fmt.Fprintf(&sb, "Contact: %s, %s\n", html.EscapeString(p.Contact), html.EscapeString(p.Email))

	if p.Website != "" {
		fmt.Fprintf(&sb, "Website: %s\n", html.EscapeString(p.Website))
	}

	fmt.Fprintf(&sb, "Wallet: <code>%s</code>\n", p.Wallet)
	fmt.Fprintf(&sb, "Propose a deal: %s", html.EscapeString(view.DealLink))

	return reply(ctx, msg, sb.String(), nil)
}

func (h *Handler) OnSearch(ctx *th.Context, msg telego.Message) error {
	_, _, query := tu.ParseCommandPayload(msg.Text)

	query = strings.TrimSpace(query)
	if query == "" {
		return reply(ctx, msg, "Usage: /search &lt;query&gt;", nil)
	}

	text, keyboard, err := h.searchPage(ctx, query, 1)
	if err != nil {
		logger(ctx).Error("searchPage", logx.Error(err))

		return reply(ctx, msg, "Directory is unavailable, try again later.", nil)
	}

	return reply(ctx, msg, text, keyboard)
}

func reply(ctx *th.Context, msg telego.Message, text string, keyboard *telego.InlineKeyboardMarkup) error {
	params := tu.Message(tu.ID(msg.Chat.ID), text).WithParseMode(telego.ModeHTML)

	if keyboard != nil {
		params = params.WithReplyMarkup(keyboard)
	}

	if _, err := ctx.Bot().SendMessage(ctx, params); err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}
