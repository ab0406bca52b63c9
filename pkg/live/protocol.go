package live

import (
	"encoding/json"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/pkg/dom"
	"github.com/vango-dev/hermes/pkg/render"
)

// Message types.
const (
	MsgInit    = "init"
	MsgPatches = "patches"
	MsgError   = "error"
	MsgEnd     = "end"
	MsgNotify  = "notify"
)

// Patch ops, one per dom.MutationOp.
const (
	OpInsert      = "insert"
	OpRemove      = "remove"
	OpAddClass    = "addClass"
	OpRemoveClass = "removeClass"
	OpText        = "text"
	OpAttr        = "attr"
)

// Patch is a DOM mutation in wire form.
type Patch struct {
	Op      string   `json:"op"`
	ID      string   `json:"id,omitempty"`
	Parent  string   `json:"parent,omitempty"`
	Before  string   `json:"before,omitempty"`
	HTML    string   `json:"html,omitempty"`
	Classes []string `json:"classes,omitempty"`
	Key     string   `json:"key,omitempty"`
	Value   string   `json:"value,omitempty"`
}

// ServerMessage is a frame sent to the browser.
type ServerMessage struct {
	T       string  `json:"t"`
	Root    string  `json:"root,omitempty"`
	HTML    string  `json:"html,omitempty"`
	Patches []Patch `json:"patches,omitempty"`
	Code    string  `json:"code,omitempty"`
	Message string  `json:"message,omitempty"`
}

// ClientMessage is a frame received from the browser.
type ClientMessage struct {
	T       string `json:"t"`
	ID      string `json:"id,omitempty"`
	Event   string `json:"event,omitempty"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`
}

var fragmentRenderer = render.NewRenderer(render.RendererConfig{IncludeIDs: true})

// patchFromMutation converts m. Insert patches carry the node's HTML as it
// is at the time of the mutation.
func patchFromMutation(m dom.Mutation) (Patch, error) {
	switch m.Op {
	case dom.MutationInsertNode:
		html, err := fragmentRenderer.RenderToString(m.Node)
		if err != nil {
			return Patch{}, err
		}
		return Patch{Op: OpInsert, ID: m.ID, Parent: m.ParentID, Before: m.BeforeID, HTML: html}, nil
	case dom.MutationRemoveNode:
		return Patch{Op: OpRemove, ID: m.ID}, nil
	case dom.MutationAddClass:
		return Patch{Op: OpAddClass, ID: m.ID, Classes: m.Classes}, nil
	case dom.MutationRemoveClass:
		return Patch{Op: OpRemoveClass, ID: m.ID, Classes: m.Classes}, nil
	case dom.MutationSetText:
		return Patch{Op: OpText, ID: m.ID, Value: m.Value}, nil
	case dom.MutationSetAttr:
		return Patch{Op: OpAttr, ID: m.ID, Key: m.Key, Value: m.Value}, nil
	}
	return Patch{}, errors.Newf(errors.CategoryProtocol, "unknown mutation op %s", m.Op)
}

// decodeClientMessage parses and checks a client frame.
func decodeClientMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, errors.New("H060").Wrap(err)
	}
	switch msg.T {
	case MsgEnd:
		if msg.ID == "" || msg.Event == "" {
			return msg, errors.New("H060").WithDetail("end needs an id and an event")
		}
	case MsgNotify:
		if msg.Type == "" {
			return msg, errors.New("H060").WithDetail("notify needs a type")
		}
	default:
		return msg, errors.New("H060").WithDetailf("unknown message type %q", msg.T)
	}
	return msg, nil
}

func errorMessage(err error) ServerMessage {
	msg := ServerMessage{T: MsgError, Message: err.Error()}
	if he, ok := err.(*errors.HermesError); ok {
		msg.Code = he.Code
		msg.Message = he.FormatCompact()
		if he.Detail != "" {
			msg.Message += " (" + he.Detail + ")"
		}
	}
	return msg
}
