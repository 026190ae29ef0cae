package selection

import (
	"errors"
	"reflect"
	"testing"

	"github.com/matsen/citegraph/internal/paper"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		input   string
		want    Event
		wantErr bool
	}{
		{`{"type": "search_input", "term": "attention"}`, SearchInput{Term: "attention"}, false},
		{`{"type": "submit"}`, SubmitSearch{}, false},
		{`{"type": "pick", "id": 3}`, PickFromList{ID: 3}, false},
		{`{"type": "select", "id": "42"}`, Select{ID: 42}, false},
		{`{"type": "node_click", "id": 7}`, NodeClick{ID: 7}, false},
		{`{"type": "item_activated", "id": 7}`, ItemActivated{ID: 7}, false},
		{`{"type": "focus"}`, Focus{}, false},
		{`{"type": "blur_after_delay"}`, BlurAfterDelay{}, false},
		{`{"type": "click_outside"}`, ClickOutside{}, false},
		{`{"type": "node_hover", "id": 5}`, NodeHover{ID: idPtr(5)}, false},
		{`{"type": "node_hover", "id": null}`, NodeHover{}, false},
		{`{"type": "pick"}`, nil, true},
		{`{"type": "explode"}`, nil, true},
		{`not json`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeEvent() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeEvent() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeEvent_ErrorKinds(t *testing.T) {
	if _, err := DecodeEvent([]byte(`{"type": "explode"}`)); !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("unknown type error = %v, want ErrUnknownEvent", err)
	}
	if _, err := DecodeEvent([]byte(`{"type": "node_click"}`)); !errors.Is(err, paper.ErrInvalidID) {
		t.Errorf("missing id error = %v, want ErrInvalidID", err)
	}
}
