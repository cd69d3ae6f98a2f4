// Package catalogue loads the election source catalogue: a JSON mapping of
// election id to source groups, mirroring the scraper_sources.json layout the
// dashboard has always used.
package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// Source describes one downloadable group inside an election.
type Source struct {
	Type          string `json:"type" validate:"required"`
	URL           string `json:"url"`
	Table         string `json:"table"`
	ContestScope  string `json:"contest_scope,omitempty"`
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	WorksheetID   int    `json:"worksheet_id,omitempty"`
}

// Meta is the free-form election-level metadata block.
type Meta map[string]any

func (m Meta) Primary() bool {
	b, _ := m["primary"].(bool)
	return b
}

func (m Meta) BaseURL() string {
	s, _ := m["base_url"].(string)
	return s
}

type Election struct {
	Groups map[string]Source
	Meta   Meta
}

func (e *Election) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}

	e.Groups = make(map[string]Source, len(raw))
	for key, val := range raw {
		if key == "meta" {
			if err := sonic.Unmarshal(val, &e.Meta); err != nil {
				return fmt.Errorf("meta: %w", err)
			}
			continue
		}

		var src Source
		if err := sonic.Unmarshal(val, &src); err != nil {
			return fmt.Errorf("group %s: %w", key, err)
		}
		e.Groups[key] = src
	}

	return nil
}

// GroupNames returns group labels in a stable order so scrape runs are
// deterministic.
func (e *Election) GroupNames() []string {
	names := make([]string, 0, len(e.Groups))
	for name := range e.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Catalogue map[string]Election

// Load reads and validates a catalogue file.
func Load(path string) (Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	var cat Catalogue
	if err = sonic.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("sonic.Unmarshal: %w", err)
	}

	if err = cat.Validate(); err != nil {
		return nil, err
	}

	return cat, nil
}

func (c Catalogue) Validate() error {
	v := validator.New()
	for id, election := range c {
		if _, err := strconv.Atoi(id); err != nil {
			return fmt.Errorf("election id %q is not numeric", id)
		}
		for group, src := range election.Groups {
			if err := v.Struct(src); err != nil {
				return fmt.Errorf("election %s group %s: %w", id, group, err)
			}
		}
	}
	return nil
}

// IDs returns the election ids in ascending order.
func (c Catalogue) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
	return ids
}

// Newest picks the most recent election by treating ids as integers.
func (c Catalogue) Newest() (string, error) {
	newest := 0
	for id := range c {
		n, err := strconv.Atoi(id)
		if err != nil {
			return "", fmt.Errorf("election id %q is not numeric", id)
		}
		if n > newest {
			newest = n
		}
	}

	if newest == 0 {
		return "", fmt.Errorf("catalogue is empty")
	}

	return strconv.Itoa(newest), nil
}

// Election returns the requested election, or the newest one when id is empty.
func (c Catalogue) Election(id string) (Election, error) {
	if id == "" {
		newest, err := c.Newest()
		if err != nil {
			return Election{}, err
		}
		id = newest
	}

	el, ok := c[id]
	if !ok {
		return Election{}, fmt.Errorf("election %s not in catalogue", id)
	}

	return el, nil
}
