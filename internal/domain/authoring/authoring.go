// Package authoring implements the admin conversation as an explicit finite
// state machine: a table maps (state, input kind) to the next state and the
// side effect the caller must perform.
package authoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/post"
)

var (
	// ErrUnauthorized is returned when a gated flow is started without the
	// admin flag. The session is left untouched.
	ErrUnauthorized = errors.New("authoring: admin login required")

	// ErrUnexpectedInput is returned when the current state does not accept
	// the input kind. The session is left untouched.
	ErrUnexpectedInput = errors.New("authoring: unexpected input")

	// ErrIdle is returned when input arrives while no flow is active.
	ErrIdle = errors.New("authoring: no active flow")
)

// State is the position in the admin conversation.
type State int

const (
	Idle State = iota
	AwaitPassword
	AwaitPhoto
	AwaitTextZH
	AwaitButtonsZH
	AwaitTextEN
	AwaitButtonsEN
	AwaitTargetPost
)

var stateNames = map[State]string{
	Idle:            "idle",
	AwaitPassword:   "await_password",
	AwaitPhoto:      "await_photo",
	AwaitTextZH:     "await_text_zh",
	AwaitButtonsZH:  "await_buttons_zh",
	AwaitTextEN:     "await_text_en",
	AwaitButtonsEN:  "await_buttons_en",
	AwaitTargetPost: "await_target_post",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var prompts = map[State]string{
	AwaitPassword:   "输入密码:",
	AwaitPhoto:      "发图或 /skip:",
	AwaitTextZH:     "中文:",
	AwaitButtonsZH:  "按钮:",
	AwaitTextEN:     "英文:",
	AwaitButtonsEN:  "英文按钮:",
	AwaitTargetPost: "输入帖子ID:",
}

// Prompt returns the message asking for this state's input, or "" for Idle.
func (s State) Prompt() string { return prompts[s] }

// Flow is an entry point into the conversation.
type Flow int

const (
	FlowLogin Flow = iota
	FlowContent
	FlowBroadcast
)

// InputKind classifies an answer.
type InputKind int

const (
	InputText InputKind = iota
	InputPhoto
	InputSkip
	InputCancel
)

// Input is one answer from the admin. Value carries the text or photo id.
type Input struct {
	Kind  InputKind
	Value string
}

// Effect is the work the caller performs after a transition.
type Effect int

const (
	EffectNone Effect = iota
	EffectCheckPassword
	EffectSave
	EffectDispatch
	EffectCancelled
)

type transition struct {
	next   State
	effect Effect
}

// table lists every accepted (state, input) pair. Cancel is handled for all
// non-idle states before the table is consulted.
var table = map[State]map[InputKind]transition{
	AwaitPassword: {
		InputText: {AwaitPassword, EffectCheckPassword},
	},
	AwaitPhoto: {
		InputPhoto: {AwaitTextZH, EffectNone},
		InputSkip:  {AwaitTextZH, EffectNone},
	},
	AwaitTextZH: {
		InputText: {AwaitButtonsZH, EffectNone},
		InputSkip: {AwaitButtonsZH, EffectNone},
	},
	AwaitButtonsZH: {
		InputText: {AwaitTextEN, EffectNone},
		InputSkip: {AwaitTextEN, EffectNone},
	},
	AwaitTextEN: {
		InputText: {AwaitButtonsEN, EffectNone},
		InputSkip: {AwaitButtonsEN, EffectNone},
	},
	AwaitButtonsEN: {
		InputText: {Idle, EffectSave},
		InputSkip: {Idle, EffectSave},
	},
	AwaitTargetPost: {
		InputText: {Idle, EffectDispatch},
	},
}

// Step reports the outcome of Apply.
type Step struct {
	From   State
	To     State
	Effect Effect
	// Value is the submitted password for EffectCheckPassword and the target
	// post name for EffectDispatch.
	Value string
	// Draft is the completed draft for EffectSave.
	Draft post.Draft
}

// Session is one admin's conversation state. Admin is the only field that
// outlives a flow.
type Session struct {
	Admin bool
	State State
	Draft post.Draft
}

// Active reports whether a flow is in progress.
func (s *Session) Active() bool { return s.State != Idle }

// Begin enters a flow. Gated flows fail with ErrUnauthorized when the admin
// flag is unset. Starting a flow discards any unfinished draft.
func (s *Session) Begin(f Flow) error {
	switch f {
	case FlowLogin:
		s.reset()
		s.State = AwaitPassword
	case FlowContent:
		if !s.Admin {
			return ErrUnauthorized
		}
		s.reset()
		s.Draft.Name = post.WelcomeName
		s.State = AwaitPhoto
	case FlowBroadcast:
		if !s.Admin {
			return ErrUnauthorized
		}
		s.reset()
		s.State = AwaitTargetPost
	default:
		return fmt.Errorf("authoring: unknown flow %d", int(f))
	}
	return nil
}

// Apply feeds one input to the machine.
func (s *Session) Apply(in Input) (Step, error) {
	from := s.State
	if from == Idle {
		return Step{}, ErrIdle
	}

	if in.Kind == InputCancel {
		s.reset()
		return Step{From: from, To: Idle, Effect: EffectCancelled}, nil
	}

	tr, ok := table[from][in.Kind]
	if !ok {
		return Step{From: from, To: from}, fmt.Errorf("%w: %v in %s", ErrUnexpectedInput, in.Kind, from)
	}

	step := Step{From: from, To: tr.next, Effect: tr.effect}
	s.record(from, in)

	switch tr.effect {
	case EffectCheckPassword:
		step.Value = in.Value
	case EffectSave:
		step.Draft = s.Draft
		s.reset()
	case EffectDispatch:
		step.Value = strings.TrimSpace(in.Value)
		s.reset()
	}
	s.State = tr.next
	return step, nil
}

// Authenticate marks the session as admin and ends the login flow.
func (s *Session) Authenticate() {
	s.Admin = true
	s.reset()
}

// Logout clears the admin flag and any flow in progress.
func (s *Session) Logout() {
	s.Admin = false
	s.reset()
}

func (s *Session) reset() {
	s.State = Idle
	s.Draft = post.Draft{}
}

// record stores the answer for the state being left. Skip stores nil.
func (s *Session) record(st State, in Input) {
	var v *string
	if in.Kind != InputSkip {
		val := in.Value
		v = &val
	}
	switch st {
	case AwaitPhoto:
		s.Draft.PhotoID = v
	case AwaitTextZH:
		s.Draft.TextZH = v
	case AwaitButtonsZH:
		s.Draft.ButtonsZH = v
	case AwaitTextEN:
		s.Draft.TextEN = v
	case AwaitButtonsEN:
		s.Draft.ButtonsEN = v
	}
}

func (k InputKind) String() string {
	switch k {
	case InputText:
		return "text"
	case InputPhoto:
		return "photo"
	case InputSkip:
		return "skip"
	case InputCancel:
		return "cancel"
	}
	return "unknown"
}
