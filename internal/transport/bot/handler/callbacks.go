package handler

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"

	"prodi/internal/domain/entity"
	"prodi/pkg/logx"
)

const (
	searchPagePrefix = "search_page:"

	// Telegram limits callback data to 64 bytes, the prefix and a page number
	// take the rest.
	maxCallbackQuery = 46
)

func (h *Handler) OnSearchPage(ctx *th.Context, query telego.CallbackQuery) error {
	page, q, ok := parsePageData(query.Data)
	if !ok {
		return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
	}

	text, keyboard, err := h.searchPage(ctx, q, page)
	if err != nil {
		logger(ctx).Error("searchPage", logx.Error(err))

		return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID).
			WithText("Directory is unavailable").WithShowAlert())
	}

	if query.Message != nil {
		_, err = ctx.Bot().EditMessageText(ctx, &telego.EditMessageTextParams{
			ChatID:      tu.ID(query.Message.GetChat().ID),
			MessageID:   query.Message.GetMessageID(),
			Text:        text,
			ParseMode:   telego.ModeHTML,
			ReplyMarkup: keyboard,
		})
		if err != nil {
			// Telegram refuses edits that leave the message unchanged.
			logger(ctx).Debug("bot.EditMessageText", logx.Error(err))
		}
	}

	return ctx.Bot().AnswerCallbackQuery(ctx, tu.CallbackQuery(query.ID))
}

func (h *Handler) searchPage(ctx context.Context, query string, page int) (string, *telego.InlineKeyboardMarkup, error) {
	query = truncate(query, maxCallbackQuery)

	found, err := h.search.Snapshot(ctx, query)
	if err != nil {
		return "", nil, fmt.Errorf("search.Snapshot: %w", err)
	}

	text, totalPages := renderPage(found, query, page, h.pageSize)

	return text, pageKeyboard(query, page, totalPages), nil
}

func renderPage(found []entity.Profile, query string, page, pageSize int) (string, int) {
	if len(found) == 0 {
		return fmt.Sprintf("Nothing found for <b>%s</b>.", html.EscapeString(query)), 0
	}

	totalPages := (len(found) + pageSize - 1) / pageSize
	page = min(max(page, 1), totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(found))

	var sb strings.Builder

	fmt.Fprintf(&sb, "Results for <b>%s</b> (page %d/%d)\n\n", html.EscapeString(query), page, totalPages)

	for _, p := range found[start:end] {
		fmt.Fprintf(&sb, "<b>%s</b>, %s\n<code>%s</code>\n", html.EscapeString(p.Company), html.EscapeString(p.Region), p.Wallet)
	}

	return sb.String(), totalPages
}

func pageKeyboard(query string, page, totalPages int) *telego.InlineKeyboardMarkup {
	if totalPages <= 1 {
		return nil
	}

	var buttons []telego.InlineKeyboardButton

	if page > 1 {
		buttons = append(buttons, tu.InlineKeyboardButton("« Prev").WithCallbackData(pageData(page-1, query)))
	}

	if page < totalPages {
		buttons = append(buttons, tu.InlineKeyboardButton("Next »").WithCallbackData(pageData(page+1, query)))
	}

	return tu.InlineKeyboard(tu.InlineKeyboardRow(buttons...))
}

func pageData(page int, query string) string {
	return searchPagePrefix + strconv.Itoa(page) + ":" + query
}

func parsePageData(data string) (int, string, bool) {
	rest, ok := strings.CutPrefix(data, searchPagePrefix)
	if !ok {
		return 0, "", false
	}

	rawPage, query, ok := strings.Cut(rest, ":")
	if !ok || query == "" {
		return 0, "", false
	}

	page, err := strconv.Atoi(rawPage)
	if err != nil || page < 1 {
		page = 1
	}

	return page, query, true
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	cut := 0

	for i, r := range s {
		if i+utf8.RuneLen(r) > n {
			break
		}

		cut = i + utf8.RuneLen(r)
	}

	return s[:cut]
}
