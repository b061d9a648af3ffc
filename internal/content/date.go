package content

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// dateLayouts are the accepted pubDate/updatedDate spellings, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2 2006",
	"Jan 02 2006",
	"January 2, 2006",
}

// yamlDate accepts the date spellings that appear in real front-matter
// instead of requiring strict RFC3339.
type yamlDate struct {
	time.Time
}

func (d *yamlDate) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", raw)
}
