// Package paper defines the core domain types for papers in the citation graph.
package paper

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID is the integer identifier of a paper in the citation graph.
type ID int64

// ErrInvalidID is returned when a value cannot be interpreted as a paper ID.
var ErrInvalidID = errors.New("invalid paper id")

// ParseID parses a string-encoded integer paper ID. Surrounding whitespace is ignored.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(n), nil
}

// String returns the decimal form of the ID, as used for document keys.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// FlexibleID decodes a paper ID written either as a JSON number or a JSON string.
// The adjacency document mixes both forms.
type FlexibleID ID

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		id, err := ParseID(n.String())
		if err != nil {
			return err
		}
		*f = FlexibleID(id)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, string(data))
	}
	id, err := ParseID(s)
	if err != nil {
		return err
	}
	*f = FlexibleID(id)
	return nil
}

// Paper represents a paper with its display title.
type Paper struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// SearchEntry is one row of the flattened search index.
type SearchEntry struct {
	ID    ID     `json:"int_id"`
	Title string `json:"title"`
}

// DisplayTitle returns the title for list display, or "Untitled (<id>)" when empty.
func (e SearchEntry) DisplayTitle() string {
	if e.Title == "" {
		return fmt.Sprintf("Untitled (%d)", e.ID)
	}
	return e.Title
}

// TitleIndex maps a paper ID to its display title. Read-only once loaded.
type TitleIndex map[ID]string

// AdjacencyIndex maps a paper ID to its direct citation neighbors, in document order.
// A missing key means the paper has no known neighbors.
type AdjacencyIndex map[ID][]ID
