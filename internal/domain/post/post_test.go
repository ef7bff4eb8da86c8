package post

import (
	"testing"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
)

const lobby = "https://lobby.test"

func TestAssembleButtonOrder(t *testing.T) {
	id := account.Identity{Language: account.LanguageEN, ExternalKey: "KEY1"}
	msg := Assemble(WelcomeName, Content{Text: "hi", Layout: "Docs+docs.io"}, id, lobby)

	if len(msg.Keyboard) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(msg.Keyboard))
	}
	game := msg.Keyboard[0][0]
	if game.URL != lobby+"/?userkey=KEY1" || game.Label != "🎮 Start Game 🎮" {
		t.Errorf("unexpected game button: %+v", game)
	}
	if msg.Keyboard[1][0].URL != "https://docs.io" {
		t.Errorf("expected layout row second, got %+v", msg.Keyboard[1])
	}
	lang := msg.Keyboard[2]
	if len(lang) != 2 || lang[0].Data != "set_lang_zh" || lang[1].Data != "set_lang_en" {
		t.Errorf("unexpected language row: %+v", lang)
	}
}

func TestAssembleLocalizedGameLabel(t *testing.T) {
	id := account.Identity{Language: account.LanguageZH, ExternalKey: "K"}
	msg := Assemble("help", Content{Text: "x"}, id, lobby)
	if msg.Keyboard[0][0].Label != "🎮 点击开始游戏 🎮" {
		t.Errorf("expected zh label, got %q", msg.Keyboard[0][0].Label)
	}
}

func TestAssembleNoButtonsOmitsKeyboard(t *testing.T) {
	msg := Assemble("help", Content{PhotoID: "p1"}, account.Identity{Language: account.LanguageZH}, lobby)
	if msg.Keyboard != nil {
		t.Errorf("expected nil keyboard, got %+v", msg.Keyboard)
	}
	if msg.Text != "..." {
		t.Errorf("expected placeholder text, got %q", msg.Text)
	}
	if msg.PhotoID != "p1" {
		t.Errorf("expected photo kept, got %q", msg.PhotoID)
	}
}
