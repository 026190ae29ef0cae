package main

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/selection"
)

func idRef(id paper.ID) *paper.ID {
	return &id
}

func TestParseScriptLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want selection.Event
	}{
		{"blank", "   ", nil},
		{"comment", "# pick the first paper", nil},
		{"search", "search attention", selection.SearchInput{Term: "attention"}},
		{"search keeps inner spaces", "search neural  nets", selection.SearchInput{Term: "neural  nets"}},
		{"search empty", "search", selection.SearchInput{Term: ""}},
		{"submit", "submit", selection.SubmitSearch{}},
		{"pick", "pick 3", selection.PickFromList{ID: 3}},
		{"select", "select 12", selection.Select{ID: 12}},
		{"click", "click 2", selection.NodeClick{ID: 2}},
		{"activate", "activate 7", selection.ItemActivated{ID: 7}},
		{"hover", "hover 2", selection.NodeHover{ID: idRef(2)}},
		{"hover leave", "hover", selection.NodeHover{}},
		{"focus", "focus", selection.Focus{}},
		{"blur", "blur", selection.BlurAfterDelay{}},
		{"outside", "  outside  ", selection.ClickOutside{}},
		{"json", `{"type":"pick","id":"5"}`, selection.PickFromList{ID: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScriptLine(tt.line)
			if err != nil {
				t.Fatalf("parseScriptLine(%q) error = %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseScriptLine(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseScriptLine_Errors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"unknown verb", "zoom 3", selection.ErrUnknownEvent},
		{"pick without id", "pick", paper.ErrInvalidID},
		{"click with bad id", "click two", paper.ErrInvalidID},
		{"hover with bad id", "hover x", paper.ErrInvalidID},
		{"json unknown type", `{"type":"scroll"}`, selection.ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScriptLine(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseScriptLine(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
		})
	}
}

func TestReadScript(t *testing.T) {
	script := `# find a paper
search deep

submit
hover 2
`
	var lines []int
	var types []string
	err := readScript(strings.NewReader(script), func(line int, ev selection.Event) {
		lines = append(lines, line)
		types = append(types, ev.Type())
	})
	if err != nil {
		t.Fatalf("readScript() error = %v", err)
	}

	if want := []int{2, 4, 5}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if want := []string{"search_input", "submit", "node_hover"}; !reflect.DeepEqual(types, want) {
		t.Errorf("types = %v, want %v", types, want)
	}
}

func TestReadScript_StopsAtMalformedLine(t *testing.T) {
	script := "search deep\npick one\nsubmit\n"
	calls := 0
	err := readScript(strings.NewReader(script), func(int, selection.Event) { calls++ })
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("readScript() error = %v, want error mentioning line 2", err)
	}
	if calls != 1 {
		t.Errorf("got %d events before the error, want 1", calls)
	}
}
