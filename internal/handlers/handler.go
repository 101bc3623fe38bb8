package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/mediagroup"
	"professional-persona-ai/internal/persona"
	"professional-persona-ai/internal/session"
	"professional-persona-ai/internal/studio"
	"professional-persona-ai/internal/telegram"
)

// Messenger is the part of the Telegram client the bot flow uses.
type Messenger interface {
	SendTyping(chatID int64)
	SendText(chatID int64, text string) error
	SendMenu(chatID int64, text string, kb telegram.Keyboard) (int, error)
	EditMenu(chatID int64, messageID int, text string, kb telegram.Keyboard) error
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string, alert bool) error
	SendPhoto(chatID int64, img asset.Image, caption string) error
	SendDocument(chatID int64, img asset.Image, filename, caption string) error
	DownloadImage(ctx context.Context, fileID string) (asset.Image, error)
}

var _ Messenger = (*telegram.Client)(nil)

type Options struct {
	Telegram Messenger
	Studio   *studio.Service
	Logger   *slog.Logger
}

type Handler struct {
	tg     Messenger
	studio *studio.Service
	logger *slog.Logger
	albums *mediagroup.Collector
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svc := opts.Studio
	if svc == nil {
		svc = studio.New(studio.Options{Logger: logger})
	}

	return &Handler{
		tg:     opts.Telegram,
		studio: svc,
		logger: logger,
	}
}

// SetAlbumCollector routes album photos through c; see HandleAlbum.
func (h *Handler) SetAlbumCollector(c *mediagroup.Collector) {
	h.albums = c
}

// sessionKey scopes a session to one user in one chat.
func sessionKey(chatID, userID int64) string {
	return fmt.Sprintf("tg:%d:%d", chatID, userID)
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}

	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch {
	case msg.IsCommand():
		return h.handleCommand(ctx, chatID, userID, msg)
	case len(msg.Photo) > 0:
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		if h.albums != nil && h.albums.Add(mediagroup.Item{
			ChatID:       chatID,
			UserID:       userID,
			MediaGroupID: msg.MediaGroupID,
			FileID:       fileID,
		}) {
			return nil
		}
		return h.handlePhoto(ctx, chatID, userID, fileID)
	case msg.Document != nil:
		return h.handlePhoto(ctx, chatID, userID, msg.Document.FileID)
	case strings.TrimSpace(msg.Text) != "":
		return h.tg.SendText(chatID, "Send a portrait photo, then pick your style with /start.")
	}
	return nil
}

func (h *Handler) handleCommand(ctx context.Context, chatID, userID int64, msg *tgbotapi.Message) error {
	key := sessionKey(chatID, userID)

	switch msg.Command() {
	case "start", "menu":
		st := h.studio.Sessions().GetOrCreate(key)
		_, err := h.tg.SendMenu(chatID, menuText(st, viewMain), menuKeyboard(userID, st, viewMain))
		return err
	case "help":
		return h.tg.SendText(chatID,
			"Professional Persona\n\n"+
				"1. Send a portrait photo.\n"+
				"2. Pick outfit, hairstyle, background, camera angle, palette and expression.\n"+
				"3. Press Generate.\n\n"+
				"Commands:\n"+
				"/start - open the style menu\n"+
				"/prompt - show the current prompt\n"+
				"/generate - transform the last photo\n"+
				"/reset - clear the photo and restore defaults",
		)
	case "prompt":
		st := h.studio.Sessions().GetOrCreate(key)
		return h.tg.SendText(chatID, st.Prompt)
	case "generate":
		h.studio.Sessions().GetOrCreate(key)
		return h.generate(ctx, chatID, key)
	case "reset":
		h.studio.Sessions().GetOrCreate(key)
		st, err := h.studio.Sessions().Reset(key)
		if err != nil {
			return err
		}
		_, err = h.tg.SendMenu(chatID, "Reset to defaults.\n\n"+menuText(st, viewMain), menuKeyboard(userID, st, viewMain))
		return err
	default:
		return h.tg.SendText(chatID, "Unknown command. Use /help.")
	}
}

func (h *Handler) handlePhoto(ctx context.Context, chatID, userID int64, fileID string) error {
	key := sessionKey(chatID, userID)
	sessions := h.studio.Sessions()
	sessions.GetOrCreate(key)

	img, err := h.tg.DownloadImage(ctx, fileID)
	if err != nil {
		var invalid *asset.ValidationError
		if errors.As(err, &invalid) {
			_, _ = sessions.Reject(key, err.Error())
			return h.tg.SendText(chatID, "❌ "+err.Error())
		}
		h.logger.Error("photo download failed", "session", key, "err", err)
		return h.tg.SendText(chatID, "❌ Could not download the photo. Please send it again.")
	}

	st, err := sessions.Upload(key, img)
	if err != nil {
		return err
	}
	h.logger.Info("original uploaded", "session", key, "mime", img.MimeType)

	_, err = h.tg.SendMenu(chatID, "📷 Photo received.\n\n"+menuText(st, viewMain), menuKeyboard(userID, st, viewMain))
	return err
}

// HandleAlbum uses the first photo of an album as the original.
func (h *Handler) HandleAlbum(ctx context.Context, album mediagroup.Album) error {
	if album.First() == "" {
		return nil
	}
	if n := len(album.FileIDs); n > 1 {
		_ = h.tg.SendText(album.ChatID, fmt.Sprintf("One portrait at a time: using the first of %d photos.", n))
	}
	return h.handlePhoto(ctx, album.ChatID, album.UserID, album.First())
}

func (h *Handler) generate(ctx context.Context, chatID int64, key string) error {
	h.tg.SendTyping(chatID)
	_ = h.tg.SendText(chatID, "🎨 Creating your professional persona, please wait...")

	st, err := h.studio.Transform(ctx, key)
	switch {
	case errors.Is(err, session.ErrNoOriginal):
		return h.tg.SendText(chatID, "📷 Send a portrait photo first.")
	case errors.Is(err, session.ErrBusy):
		return h.tg.SendText(chatID, "⏳ A transformation is already running.")
	case errors.Is(err, session.ErrStale):
		return h.tg.SendText(chatID, "The photo was replaced or reset while generating. Press Generate again.")
	case err != nil:
		return h.tg.SendText(chatID, "❌ "+err.Error())
	}

	caption := fmt.Sprintf("✅ %s · %s · %s",
		persona.Label(persona.AxisOutfit, string(st.Config.Outfit)),
		persona.Label(persona.AxisBackground, string(st.Config.Background)),
		persona.Label(persona.AxisExpression, string(st.Config.Expression)),
	)
	if err := h.tg.SendPhoto(chatID, st.Transformed, caption); err != nil {
		return err
	}
	return h.tg.SendDocument(chatID, st.Transformed, persona.DownloadFilename(st.Config, st.Transformed.MimeType), "")
}
