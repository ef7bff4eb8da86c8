// Package post defines tenant-scoped content posts, the drafts that replace
// them and the message rendered from them.
package post

import (
	"errors"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
)

// ErrNoPost is returned when a post does not exist and has no default.
var ErrNoPost = errors.New("post: not found")

// WelcomeName is the reserved post shown on /start. It is the only post with
// a built-in default.
const WelcomeName = "welcome"

const (
	defaultWelcomeText = "Welcome!"
	placeholderText    = "..."
)

// Content is one language projection of a stored post. Empty strings stand
// for NULL columns.
type Content struct {
	PhotoID string
	Text    string
	Layout  string
}

// DefaultWelcome is served when the tenant has not authored a welcome post.
func DefaultWelcome() Content {
	return Content{Text: defaultWelcomeText}
}

// Draft holds every content field of a post. A save writes all of them; a nil
// field clears the stored column.
type Draft struct {
	Name      string
	PhotoID   *string
	TextZH    *string
	ButtonsZH *string
	TextEN    *string
	ButtonsEN *string
}

// Button is one inline button. Exactly one of URL or Data is set.
type Button struct {
	Label string
	URL   string
	Data  string
	// Internal marks links authored with the in-app scheme; URL holds the
	// target with the scheme stripped.
	Internal bool
}

// Keyboard is a list of button rows.
type Keyboard [][]Button

// Message is a rendered post ready for delivery.
type Message struct {
	PhotoID  string
	Text     string
	Keyboard Keyboard // nil when the message has no buttons
}

// Recipient is the minimal context needed to render and deliver a post: the
// user whose identity personalizes it and the chat it goes to.
type Recipient struct {
	UserID int64
	ChatID int64
}

// DirectRecipient addresses a user in their private chat, where the chat id
// equals the user id.
func DirectRecipient(userID int64) Recipient {
	return Recipient{UserID: userID, ChatID: userID}
}

// Labels for the injected buttons.
const (
	gameLabelZH = "🎮 点击开始游戏 🎮"
	gameLabelEN = "🎮 Start Game 🎮"
)

// LanguageCallbackPrefix prefixes callback data of the language switch.
const LanguageCallbackPrefix = "set_lang_"

// GameButton returns the entry button carrying the user's external key.
func GameButton(lobbyURL, externalKey string, lang account.Language) Button {
	label := gameLabelEN
	if lang == account.LanguageZH {
		label = gameLabelZH
	}
	return Button{Label: label, URL: lobbyURL + "/?userkey=" + externalKey}
}

// LanguageRow returns the fixed language switch appended to the welcome post.
func LanguageRow() []Button {
	return []Button{
		{Label: "🇨🇳 中文", Data: LanguageCallbackPrefix + string(account.LanguageZH)},
		{Label: "🇺🇸 English", Data: LanguageCallbackPrefix + string(account.LanguageEN)},
	}
}

// Assemble builds the message for a resolved post. Buttons come in a fixed
// order: game entry (when linked), authored layout, then the language switch
// for the welcome post.
func Assemble(name string, c Content, id account.Identity, lobbyURL string) Message {
	var kb Keyboard
	if id.Linked() {
		kb = append(kb, []Button{GameButton(lobbyURL, id.ExternalKey, id.Language)})
	}
	kb = append(kb, ParseLayout(c.Layout)...)
	if name == WelcomeName {
		kb = append(kb, LanguageRow())
	}

	text := c.Text
	if text == "" {
		text = placeholderText
	}
	return Message{PhotoID: c.PhotoID, Text: text, Keyboard: kb}
}
