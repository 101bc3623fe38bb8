package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"professional-persona-ai/internal/persona"
	"professional-persona-ai/internal/session"
	"professional-persona-ai/internal/telegram"
)

const (
	callbackPrefix = "ps"
	viewMain       = "main"
)

type callback struct {
	Owner  int64
	Action string
	Args   []string
}

// cb encodes callback data as "ps:<owner>:<action>[:arg...]".
func cb(ownerID int64, parts ...string) string {
	return fmt.Sprintf("%s:%d:%s", callbackPrefix, ownerID, strings.Join(parts, ":"))
}

func parseCallback(data string) (callback, bool) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	if len(parts) < 3 || parts[0] != callbackPrefix {
		return callback{}, false
	}
	owner, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || parts[2] == "" {
		return callback{}, false
	}
	return callback{Owner: owner, Action: parts[2], Args: parts[3:]}, true
}

func (h *Handler) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if q == nil || q.Message == nil || q.Message.Chat == nil || q.From == nil {
		return nil
	}
	c, ok := parseCallback(q.Data)
	if !ok {
		return h.tg.AnswerCallback(q.ID, "", false)
	}
	if c.Owner != q.From.ID {
		return h.tg.AnswerCallback(q.ID, "This menu belongs to someone else.", true)
	}

	chatID := q.Message.Chat.ID
	msgID := q.Message.MessageID
	key := sessionKey(chatID, c.Owner)
	sessions := h.studio.Sessions()
	st := sessions.GetOrCreate(key)
	view := viewMain
	notice := ""

	switch c.Action {
	case "menu":
		if len(c.Args) > 0 {
			if _, ok := persona.OptionsFor(c.Args[0]); ok {
				view = c.Args[0]
			}
		}
	case "set":
		if len(c.Args) < 2 {
			return h.tg.AnswerCallback(q.ID, "", false)
		}
		axis, value := c.Args[0], c.Args[1]
		updated, err := sessions.Select(key, func(cfg *persona.Config) error {
			if !cfg.Set(axis, value) {
				return fmt.Errorf("%w: %s=%q", session.ErrInvalidSelection, axis, value)
			}
			return nil
		})
		if err != nil {
			h.logger.Warn("selection rejected", "session", key, "err", err)
			return h.tg.AnswerCallback(q.ID, "Unknown option.", true)
		}
		st = updated
		notice = persona.AxisTitle(axis) + ": " + persona.Label(axis, value)
	case "prompt":
		_ = h.tg.AnswerCallback(q.ID, "", false)
		return h.tg.SendText(chatID, st.Prompt)
	case "generate":
		_ = h.tg.AnswerCallback(q.ID, "Generating...", false)
		return h.generate(ctx, chatID, key)
	case "reset":
		reset, err := sessions.Reset(key)
		if err != nil {
			return err
		}
		st = reset
		notice = "Reset to defaults"
	case "close":
		_ = h.tg.AnswerCallback(q.ID, "", false)
		return h.tg.DeleteMessage(chatID, msgID)
	default:
		return h.tg.AnswerCallback(q.ID, "", false)
	}

	_ = h.tg.AnswerCallback(q.ID, notice, false)

	text := menuText(st, view)
	kb := menuKeyboard(c.Owner, st, view)
	if err := h.tg.EditMenu(chatID, msgID, text, kb); err == nil {
		return nil
	}
	_, err := h.tg.SendMenu(chatID, text, kb)
	return err
}

func menuText(st session.State, view string) string {
	var b strings.Builder

	if view != viewMain {
		fmt.Fprintf(&b, "%s\n\nCurrent: %s", persona.AxisTitle(view), persona.Label(view, st.Config.Get(view)))
		return b.String()
	}

	b.WriteString("👔 Professional Persona\n\n")
	for _, axis := range persona.Axes() {
		fmt.Fprintf(&b, "%s: %s\n", persona.AxisTitle(axis), persona.Label(axis, st.Config.Get(axis)))
	}

	b.WriteString("\n")
	if st.Original.IsZero() {
		b.WriteString("📷 No photo yet. Send a portrait to begin.")
	} else {
		b.WriteString("📷 Photo ready.")
	}

	switch st.Phase {
	case session.PhaseLoading:
		b.WriteString("\n⏳ Generating...")
	case session.PhaseError:
		if st.Error != "" {
			b.WriteString("\n❌ " + st.Error)
		}
	}
	return b.String()
}

func menuKeyboard(ownerID int64, st session.State, view string) telegram.Keyboard {
	if view != viewMain {
		return axisKeyboard(ownerID, st, view)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, axis := range persona.Axes() {
		label := persona.AxisTitle(axis) + ": " + persona.Label(axis, st.Config.Get(axis))
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "menu", axis)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows,
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📄 Prompt", cb(ownerID, "prompt")),
			tgbotapi.NewInlineKeyboardButtonData("🎨 Generate", cb(ownerID, "generate")),
		},
		[]tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("Reset", cb(ownerID, "reset")),
			tgbotapi.NewInlineKeyboardButtonData("Close", cb(ownerID, "close")),
		},
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func axisKeyboard(ownerID int64, st session.State, axis string) telegram.Keyboard {
	opts, _ := persona.OptionsFor(axis)
	current := st.Config.Get(axis)

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, opt := range opts.Options {
		label := opt.Label
		if opt.Key == current {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, cb(ownerID, "set", axis, opt.Key)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("⬅ Back", cb(ownerID, "menu", viewMain)),
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
