// Package chat defines the transport-agnostic inbound event handled by the
// command router.
package chat

import "github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"

// Kind classifies an inbound event.
type Kind int

const (
	KindText Kind = iota
	KindCommand
	KindPhoto
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCommand:
		return "command"
	case KindPhoto:
		return "photo"
	case KindCallback:
		return "callback"
	}
	return "unknown"
}

// Commands understood by the router.
const (
	CmdStart       = "start"
	CmdHelp        = "help"
	CmdSupport     = "support"
	CmdAdmin       = "admin"
	CmdNewPost     = "newpost"
	CmdEditWelcome = "editwelcome"
	CmdBroadcast   = "broadcast"
	CmdStats       = "stats"
	CmdExitAdmin   = "exit_admin"
	CmdCancel      = "cancel"
	CmdSkip        = "skip"
)

// Event is one inbound update.
type Event struct {
	Kind      Kind
	ChatID    int64
	User      account.User
	MessageID int

	Command string // without the leading "/" or bot mention
	Text    string
	PhotoID string

	CallbackID   string
	CallbackData string
}
