package checklist

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/auditsheet/internal/model"
)

// Config is the YAML form of a checklist definition.
//
// Items may be given either grouped under categories or as a flat items
// list (which becomes a single unnamed category). Items without an id get
// a positional one, "<category number>.<item number>".
type Config struct {
	Name       string           `yaml:"name"`
	Title      string           `yaml:"title,omitempty"`
	Prefix     string           `yaml:"prefix,omitempty"`
	Statuses   []string         `yaml:"statuses,omitempty"`
	Categories []CategoryConfig `yaml:"categories,omitempty"`
	Items      []ItemConfig     `yaml:"items,omitempty"`
}

// CategoryConfig is the YAML form of a category.
type CategoryConfig struct {
	Name  string       `yaml:"name"`
	Items []ItemConfig `yaml:"items"`
}

// ItemConfig is the YAML form of an item.
type ItemConfig struct {
	ID          string `yaml:"id,omitempty"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
}

// File is a YAML document holding one or more checklists.
type File struct {
	Checklists []Config `yaml:"checklists"`
}

// Build converts the YAML form into a Definition.
func (c Config) Build() (*Definition, error) {
	cats := c.Categories
	if len(c.Items) > 0 {
		cats = append([]CategoryConfig{{Items: c.Items}}, cats...)
	}

	categories := make([]Category, 0, len(cats))
	for ci, cc := range cats {
		cat := Category{Name: cc.Name, Items: make([]Item, 0, len(cc.Items))}
		for ii, ic := range cc.Items {
			id := strings.TrimSpace(ic.ID)
			if id == "" {
				id = fmt.Sprintf("%d.%d", ci+1, ii+1)
			}
			cat.Items = append(cat.Items, Item{
				ID:          id,
				Title:       ic.Title,
				Description: ic.Description,
			})
		}
		categories = append(categories, cat)
	}

	opts := []Option{WithPrefix(c.Prefix)}
	if len(c.Statuses) > 0 {
		statuses := make([]model.Status, len(c.Statuses))
		for i, s := range c.Statuses {
			statuses[i] = model.Status(s)
		}
		opts = append(opts, WithStatuses(statuses...))
	}

	return New(c.Name, c.Title, categories, opts...)
}

// BuildAll converts each config in order, stopping at the first error.
func BuildAll(configs []Config) ([]*Definition, error) {
	defs := make([]*Definition, 0, len(configs))
	for _, c := range configs {
		d, err := c.Build()
		if err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// Parse reads checklists from YAML.
func Parse(data []byte) ([]*Definition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse checklist file: %w", err)
	}
	return BuildAll(f.Checklists)
}

// LoadFile reads checklists from a YAML file.
func LoadFile(path string) ([]*Definition, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided checklist path is intentional
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
