package imagegen

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Catalogue maps category to subcategory to prompt text.
type Catalogue struct {
	prompts map[string]map[string]string
}

// ParseCatalogue decodes a two-level YAML mapping.
func ParseCatalogue(data []byte) (*Catalogue, error) {
	var prompts map[string]map[string]string
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("imagegen: parse catalogue: %w", err)
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("imagegen: catalogue is empty")
	}
	return &Catalogue{prompts: prompts}, nil
}

var defaultCatalogue = mustParse(promptsYAML)

func mustParse(data []byte) *Catalogue {
	c, err := ParseCatalogue(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalogue returns the catalogue compiled into the binary.
func DefaultCatalogue() *Catalogue {
	return defaultCatalogue
}

// Lookup returns the prompt for category/subcategory. A miss on either level reports false.
func (c *Catalogue) Lookup(category, subcategory string) (string, bool) {
	subs, ok := c.prompts[category]
	if !ok {
		return "", false
	}
	prompt, ok := subs[subcategory]
	return prompt, ok
}

// Categories returns category names in sorted order.
func (c *Catalogue) Categories() []string {
	out := make([]string, 0, len(c.prompts))
	for k := range c.prompts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Subcategories returns the sorted subcategory names of category.
func (c *Catalogue) Subcategories(category string) []string {
	subs := c.prompts[category]
	out := make([]string, 0, len(subs))
	for k := range subs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of the full mapping.
func (c *Catalogue) All() map[string]map[string]string {
	out := make(map[string]map[string]string, len(c.prompts))
	for cat, subs := range c.prompts {
		cp := make(map[string]string, len(subs))
		for k, v := range subs {
			cp[k] = v
		}
		out[cat] = cp
	}
	return out
}
