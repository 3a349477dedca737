// Package catalog holds the reference tree of systems → categories →
// subcategories → activity names used to populate selection screens
// and to resolve select-all scopes. It is trusted reference data; the
// sync core never validates selections against it.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"fieldops/internal/model"
)

type Catalog struct {
	Systems []System `yaml:"systems" json:"systems"`
}

type System struct {
	Name       string     `yaml:"name" json:"name"`
	Categories []Category `yaml:"categories" json:"categories"`
}

type Category struct {
	Name          string        `yaml:"name" json:"name"`
	Subcategories []Subcategory `yaml:"subcategories" json:"subcategories"`
}

type Subcategory struct {
	Name       string   `yaml:"name" json:"name"`
	Activities []string `yaml:"activities" json:"activities"`
}

// LoadFile parses a catalog override file.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(c.Systems) == 0 {
		return nil, fmt.Errorf("catalog %s has no systems", path)
	}
	return &c, nil
}

func (c *Catalog) System(name string) (System, bool) {
	for _, s := range c.Systems {
		if s.Name == name {
			return s, true
		}
	}
	return System{}, false
}

// Activities returns every activity tuple inside the given scope.
// Empty category/subcategory widen the scope to the whole level, so
// Activities("MV SWGR", "", "") is every leaf under that system.
func (c *Catalog) Activities(system, category, subcategory string) []model.Activity {
	out := []model.Activity{}
	for _, s := range c.Systems {
		if system != "" && s.Name != system {
			continue
		}
		for _, cat := range s.Categories {
			if category != "" && cat.Name != category {
				continue
			}
			for _, sub := range cat.Subcategories {
				if subcategory != "" && sub.Name != subcategory {
					continue
				}
				for _, a := range sub.Activities {
					out = append(out, model.Activity{
						System:      s.Name,
						Category:    cat.Name,
						Subcategory: sub.Name,
						Activity:    a,
					})
				}
			}
		}
	}
	return out
}

func (c *Catalog) validate() error {
	var problems []string
	for _, s := range c.Systems {
		if strings.TrimSpace(s.Name) == "" {
			problems = append(problems, "system with empty name")
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}
