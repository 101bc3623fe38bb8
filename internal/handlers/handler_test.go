package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/mediagroup"
	"professional-persona-ai/internal/persona"
	"professional-persona-ai/internal/session"
	"professional-persona-ai/internal/studio"
	"professional-persona-ai/internal/telegram"
)

type sentDocument struct {
	img      asset.Image
	filename string
}

type fakeMessenger struct {
	texts     []string
	menus     []string
	edits     []string
	answers   []string
	photos    []asset.Image
	documents []sentDocument
	deleted   []int
	download  asset.Image
	dlErr     error
	lastKB    telegram.Keyboard
}

func (f *fakeMessenger) SendTyping(int64) {}

func (f *fakeMessenger) SendText(_ int64, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendMenu(_ int64, text string, kb telegram.Keyboard) (int, error) {
	f.menus = append(f.menus, text)
	f.lastKB = kb
	return len(f.menus), nil
}

func (f *fakeMessenger) EditMenu(_ int64, _ int, text string, kb telegram.Keyboard) error {
	f.edits = append(f.edits, text)
	f.lastKB = kb
	return nil
}

func (f *fakeMessenger) DeleteMessage(_ int64, messageID int) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeMessenger) AnswerCallback(_ string, text string, _ bool) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMessenger) SendPhoto(_ int64, img asset.Image, _ string) error {
	f.photos = append(f.photos, img)
	return nil
}

func (f *fakeMessenger) SendDocument(_ int64, img asset.Image, filename, _ string) error {
	f.documents = append(f.documents, sentDocument{img: img, filename: filename})
	return nil
}

func (f *fakeMessenger) DownloadImage(context.Context, string) (asset.Image, error) {
	return f.download, f.dlErr
}

type stubTransformer struct {
	img   asset.Image
	err   error
	calls int
}

func (s *stubTransformer) Transform(context.Context, string, string) (asset.Image, error) {
	s.calls++
	return s.img, s.err
}

const (
	testChat = int64(100)
	testUser = int64(42)
)

func newTestHandler(tr studio.Transformer) (*Handler, *fakeMessenger) {
	tg := &fakeMessenger{download: asset.New("image/jpeg", "AAAA")}
	svc := studio.New(studio.Options{Sessions: session.NewStore(session.Options{}), Transformer: tr})
	return New(Options{Telegram: tg, Studio: svc}), tg
}

func commandUpdate(text string) telegram.Update {
	cmd := strings.Fields(text)[0]
	return telegram.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: testUser},
		Chat:     &tgbotapi.Chat{ID: testChat},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func photoUpdate() telegram.Update {
	return telegram.Update{Message: &tgbotapi.Message{
		From:  &tgbotapi.User{ID: testUser},
		Chat:  &tgbotapi.Chat{ID: testChat},
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}}
}

func callbackUpdate(from int64, data string) telegram.Update {
	return telegram.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: from},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: testChat}},
		Data:    data,
	}}
}

func TestCallbackRoundTrip(t *testing.T) {
	data := cb(42, "set", persona.AxisColorPalette, "complementary")
	if data != "ps:42:set:colorPalette:complementary" {
		t.Fatalf("data = %q", data)
	}
	if len(data) > 64 {
		t.Fatalf("callback data too long: %d", len(data))
	}

	c, ok := parseCallback(data)
	if !ok || c.Owner != 42 || c.Action != "set" || len(c.Args) != 2 || c.Args[1] != "complementary" {
		t.Fatalf("parsed = %+v %v", c, ok)
	}

	for _, bad := range []string{"", "pv:1:menu", "ps:x:menu", "ps:1", "ps:1:"} {
		if _, ok := parseCallback(bad); ok {
			t.Fatalf("parseCallback(%q) accepted", bad)
		}
	}
}

func TestStartShowsMenu(t *testing.T) {
	h, tg := newTestHandler(&stubTransformer{})

	if err := h.HandleUpdate(context.Background(), commandUpdate("/start")); err != nil {
		t.Fatalf("HandleUpdate: %v", err)
	}
	if len(tg.menus) != 1 || !strings.Contains(tg.menus[0], "Global Attire: Business Suit") {
		t.Fatalf("menus = %q", tg.menus)
	}
	if len(tg.lastKB.InlineKeyboard) != 5 {
		t.Fatalf("keyboard rows = %d", len(tg.lastKB.InlineKeyboard))
	}
}

func TestPhotoThenGenerate(t *testing.T) {
	tr := &stubTransformer{img: asset.New("image/png", "QkJCQg==")}
	h, tg := newTestHandler(tr)
	ctx := context.Background()

	if err := h.HandleUpdate(ctx, photoUpdate()); err != nil {
		t.Fatalf("photo: %v", err)
	}
	if len(tg.menus) != 1 || !strings.Contains(tg.menus[0], "Photo ready") {
		t.Fatalf("menus = %q", tg.menus)
	}

	if err := h.HandleUpdate(ctx, callbackUpdate(testUser, cb(testUser, "set", persona.AxisBackground, "paris"))); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(tg.edits) != 1 || !strings.Contains(tg.edits[0], "Paris") {
		t.Fatalf("edits = %q", tg.edits)
	}

	if err := h.HandleUpdate(ctx, callbackUpdate(testUser, cb(testUser, "generate"))); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tr.calls != 1 || len(tg.photos) != 1 || len(tg.documents) != 1 {
		t.Fatalf("calls=%d photos=%d docs=%d", tr.calls, len(tg.photos), len(tg.documents))
	}
	if tg.documents[0].filename != "persona-paris-natural.png" {
		t.Fatalf("filename = %q", tg.documents[0].filename)
	}
}

func TestGenerateWithoutPhoto(t *testing.T) {
	tr := &stubTransformer{}
	h, tg := newTestHandler(tr)

	if err := h.HandleUpdate(context.Background(), commandUpdate("/generate")); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tr.calls != 0 || !strings.Contains(tg.texts[len(tg.texts)-1], "Send a portrait photo first") {
		t.Fatalf("calls=%d texts=%q", tr.calls, tg.texts)
	}
}

func TestCallbackFromOtherUserIsRefused(t *testing.T) {
	h, tg := newTestHandler(&stubTransformer{})

	if err := h.HandleUpdate(context.Background(), callbackUpdate(99, cb(testUser, "reset"))); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if len(tg.answers) != 1 || !strings.Contains(tg.answers[0], "someone else") || len(tg.edits) != 0 {
		t.Fatalf("answers=%q edits=%q", tg.answers, tg.edits)
	}
}

func TestUnknownOptionIsRejected(t *testing.T) {
	h, tg := newTestHandler(&stubTransformer{})

	if err := h.HandleUpdate(context.Background(), callbackUpdate(testUser, cb(testUser, "set", persona.AxisOutfit, "tuxedo"))); err != nil {
		t.Fatalf("callback: %v", err)
	}
	st, _ := h.studio.Sessions().Get(sessionKey(testChat, testUser))
	if st.Config.Outfit != persona.OutfitSuit {
		t.Fatalf("outfit = %q", st.Config.Outfit)
	}
	if len(tg.answers) != 1 || tg.answers[0] != "Unknown option." {
		t.Fatalf("answers = %q", tg.answers)
	}
}

func TestAxisKeyboardMarksCurrent(t *testing.T) {
	st := session.NewState("k")
	kb := axisKeyboard(testUser, st, persona.AxisBackground)

	var marked []string
	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if strings.HasPrefix(btn.Text, "✅") {
				marked = append(marked, btn.Text)
			}
		}
	}
	if len(marked) != 1 || !strings.Contains(marked[0], persona.Label(persona.AxisBackground, "berlin")) {
		t.Fatalf("marked = %q", marked)
	}
}

func TestResetCommandRestoresDefaults(t *testing.T) {
	h, tg := newTestHandler(&stubTransformer{})
	ctx := context.Background()
	_ = h.HandleUpdate(ctx, photoUpdate())

	if err := h.HandleUpdate(ctx, commandUpdate("/reset")); err != nil {
		t.Fatalf("reset: %v", err)
	}
	st, _ := h.studio.Sessions().Get(sessionKey(testChat, testUser))
	if !st.Original.IsZero() || st.Config != persona.DefaultConfig() {
		t.Fatalf("state = %+v", st)
	}
	if !strings.HasPrefix(tg.menus[len(tg.menus)-1], "Reset to defaults.") {
		t.Fatalf("menus = %q", tg.menus)
	}
}

func TestAlbumUsesFirstPhoto(t *testing.T) {
	h, tg := newTestHandler(&stubTransformer{})
	flushed := make(chan mediagroup.Album, 1)
	h.SetAlbumCollector(mediagroup.New(mediagroup.Options{
		Debounce: 10 * time.Millisecond,
		OnFlush:  func(a mediagroup.Album) { flushed <- a },
	}))

	for _, id := range []string{"first", "second"} {
		update := photoUpdate()
		update.Message.MediaGroupID = "album-1"
		update.Message.Photo = []tgbotapi.PhotoSize{{FileID: id}}
		if err := h.HandleUpdate(context.Background(), update); err != nil {
			t.Fatalf("HandleUpdate: %v", err)
		}
	}
	if len(tg.menus) != 0 {
		t.Fatalf("album photo handled before flush")
	}

	var album mediagroup.Album
	select {
	case album = <-flushed:
	case <-time.After(2 * time.Second):
		t.Fatalf("album not flushed")
	}

	if err := h.HandleAlbum(context.Background(), album); err != nil {
		t.Fatalf("HandleAlbum: %v", err)
	}
	if len(tg.texts) != 1 || !strings.Contains(tg.texts[0], "first of 2 photos") {
		t.Fatalf("texts = %q", tg.texts)
	}
	st, _ := h.studio.Sessions().Get(sessionKey(testChat, testUser))
	if st.Original.IsZero() {
		t.Fatalf("original not set")
	}
}
