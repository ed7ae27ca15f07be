// Package dialog handles the conversational front end's code hooks: slot
// validation while the conversation is in progress, and fulfilment once
// every slot is filled.
package dialog

import (
	"encoding/json"
	"strings"
)

// Invocation sources sent by the front end.
const (
	SourceDialogCodeHook      = "DialogCodeHook"
	SourceFulfillmentCodeHook = "FulfillmentCodeHook"
)

// Fulfillment states of a Close action.
const (
	Fulfilled = "Fulfilled"
	Failed    = "Failed"
)

// ContentTypePlainText is the only message content type this handler emits.
const ContentTypePlainText = "PlainText"

// Event is one code hook invocation.
type Event struct {
	CurrentIntent     Intent            `json:"currentIntent"`
	InvocationSource  string            `json:"invocationSource"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
	UserID            string            `json:"userId,omitempty"`
	InputTranscript   string            `json:"inputTranscript,omitempty"`
}

// Intent is the intent the front end resolved, with its slots so far.
type Intent struct {
	Name               string `json:"name"`
	Slots              Slots  `json:"slots"`
	ConfirmationStatus string `json:"confirmationStatus,omitempty"`
}

// Slots maps slot names to values. A nil value means the slot is not filled yet.
type Slots map[string]*string

// Get returns the trimmed value of a slot and whether it is filled.
func (s Slots) Get(name string) (string, bool) {
	v, ok := s[name]
	if !ok || v == nil {
		return "", false
	}
	return strings.TrimSpace(*v), true
}

// Raw returns the slot value exactly as sent and whether it is filled.
func (s Slots) Raw(name string) (string, bool) {
	v, ok := s[name]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}

// Clone returns a shallow copy safe to modify.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Message is a text shown to the user.
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// PlainText wraps content in a plain-text Message.
func PlainText(content string) *Message {
	return &Message{ContentType: ContentTypePlainText, Content: content}
}

// Response is what the code hook returns to the front end.
type Response struct {
	SessionAttributes map[string]string `json:"sessionAttributes"`
	DialogAction      DialogAction      `json:"dialogAction"`
}

// DialogAction is one of ElicitSlot, Delegate or Close. The set is closed:
// only types in this package implement it.
type DialogAction interface {
	Type() string
	isDialogAction()
}

// ElicitSlot asks the user for the value of one slot.
type ElicitSlot struct {
	IntentName   string   `json:"intentName"`
	Slots        Slots    `json:"slots"`
	SlotToElicit string   `json:"slotToElicit"`
	Message      *Message `json:"message,omitempty"`
}

// Delegate hands control back to the front end to pick the next step.
type Delegate struct {
	Slots Slots `json:"slots"`
}

// Close ends the conversation.
type Close struct {
	FulfillmentState string   `json:"fulfillmentState"`
	Message          *Message `json:"message,omitempty"`
}

func (ElicitSlot) Type() string { return "ElicitSlot" }
func (Delegate) Type() string   { return "Delegate" }
func (Close) Type() string      { return "Close" }

func (ElicitSlot) isDialogAction() {}
func (Delegate) isDialogAction()   {}
func (Close) isDialogAction()      {}

func (a ElicitSlot) MarshalJSON() ([]byte, error) {
	type fields ElicitSlot
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{a.Type(), fields(a)})
}

func (a Delegate) MarshalJSON() ([]byte, error) {
	type fields Delegate
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{a.Type(), fields(a)})
}

func (a Close) MarshalJSON() ([]byte, error) {
	type fields Close
	return json.Marshal(struct {
		Type string `json:"type"`
		fields
	}{a.Type(), fields(a)})
}

// NewElicitSlot re-prompts for slot, keeping the other slots.
func NewElicitSlot(session map[string]string, intentName string, slots Slots, slot string, msg *Message) Response {
	return Response{
		SessionAttributes: session,
		DialogAction: ElicitSlot{
			IntentName:   intentName,
			Slots:        slots,
			SlotToElicit: slot,
			Message:      msg,
		},
	}
}

// NewDelegate lets the front end continue the conversation.
func NewDelegate(session map[string]string, slots Slots) Response {
	return Response{
		SessionAttributes: session,
		DialogAction:      Delegate{Slots: slots},
	}
}

// NewClose ends the conversation with a final state and message.
func NewClose(session map[string]string, state string, msg *Message) Response {
	return Response{
		SessionAttributes: session,
		DialogAction: Close{
			FulfillmentState: state,
			Message:          msg,
		},
	}
}
