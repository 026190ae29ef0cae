package selection

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/matsen/citegraph/internal/paper"
)

// Event is a user interaction fed into Reduce.
type Event interface {
	// Type returns the wire name of the event.
	Type() string
}

// Select shows the ego graph of ID.
type Select struct{ ID paper.ID }

// SearchInput replaces the search term.
type SearchInput struct{ Term string }

// SubmitSearch selects the first result, if there is one.
type SubmitSearch struct{}

// PickFromList selects a paper from the popular papers list.
type PickFromList struct{ ID paper.ID }

// ClickOutside hides the dropdown, keeping the term.
type ClickOutside struct{}

// NodeClick is a click on a graph node.
type NodeClick struct{ ID paper.ID }

// Focus is the search box receiving focus.
type Focus struct{}

// BlurAfterDelay is the search box losing focus, delivered after the renderer's
// grace period so that a click on a dropdown item lands first.
type BlurAfterDelay struct{}

// ItemActivated is a click on a dropdown result.
type ItemActivated struct{ ID paper.ID }

// NodeHover reports the node under the pointer, or nil when the pointer leaves.
type NodeHover struct{ ID *paper.ID }

func (Select) Type() string         { return "select" }
func (SearchInput) Type() string    { return "search_input" }
func (SubmitSearch) Type() string   { return "submit" }
func (PickFromList) Type() string   { return "pick" }
func (ClickOutside) Type() string   { return "click_outside" }
func (NodeClick) Type() string      { return "node_click" }
func (Focus) Type() string          { return "focus" }
func (BlurAfterDelay) Type() string { return "blur_after_delay" }
func (ItemActivated) Type() string  { return "item_activated" }
func (NodeHover) Type() string      { return "node_hover" }

// ErrUnknownEvent is returned when decoding a message with an unrecognized type.
var ErrUnknownEvent = errors.New("unknown event type")

// Message is the JSON form of an event, as exchanged with renderers.
type Message struct {
	Type string            `json:"type"`
	Term string            `json:"term,omitempty"`
	ID   *paper.FlexibleID `json:"id,omitempty"`
}

// DecodeEvent parses a JSON message into an Event.
func DecodeEvent(data []byte) (Event, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decoding event: %w", err)
	}
	return msg.Event()
}

// Event converts the message to an Event.
func (m Message) Event() (Event, error) {
	needID := func() (paper.ID, error) {
		if m.ID == nil {
			return 0, fmt.Errorf("%s event requires an id: %w", m.Type, paper.ErrInvalidID)
		}
		return paper.ID(*m.ID), nil
	}

	switch m.Type {
	case "select", "pick", "node_click", "item_activated":
		id, err := needID()
		if err != nil {
			return nil, err
		}
		switch m.Type {
		case "select":
			return Select{ID: id}, nil
		case "pick":
			return PickFromList{ID: id}, nil
		case "node_click":
			return NodeClick{ID: id}, nil
		default:
			return ItemActivated{ID: id}, nil
		}
	case "search_input":
		return SearchInput{Term: m.Term}, nil
	case "submit":
		return SubmitSearch{}, nil
	case "click_outside":
		return ClickOutside{}, nil
	case "focus":
		return Focus{}, nil
	case "blur_after_delay":
		return BlurAfterDelay{}, nil
	case "node_hover":
		if m.ID == nil {
			return NodeHover{}, nil
		}
		return NodeHover{ID: idPtr(paper.ID(*m.ID))}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, m.Type)
	}
}
