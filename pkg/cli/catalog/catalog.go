/* Copyright 2026 gtrack Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package catalog provides the read-only item metadata used to resolve keys and labels
package catalog

import (
	"os"
	"sort"

	"github.com/gtrack/gtrack/pkg/cli/keycodec"
	"github.com/gtrack/gtrack/pkg/cli/tracking"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Item is a catalog entry
type Item struct {
	Brand    string `yaml:"brand"`
	Model    string `yaml:"model"`
	MaxStars int    `yaml:"maxStars"`
	KeyItem  bool   `yaml:"keyItem"`
}

// Label returns the human readable label of the item
func (i Item) Label() string {
	return i.Brand + " " + i.Model
}

// Key returns the normalized key of the item
func (i Item) Key() string {
	return keycodec.FromParts(i.Brand, i.Model)
}

type file struct {
	Items []Item `yaml:"items"`
}

// Catalog is an index of items by normalized key
type Catalog struct {
	items map[string]Item
}

// New builds a catalog from the given items. Items without a brand or a model
// are rejected. A missing max rank defaults to the highest rank.
func New(items []Item) (*Catalog, error) {
	c := &Catalog{items: map[string]Item{}}

	for idx, item := range items {
		if item.Brand == "" || item.Model == "" {
			return nil, errors.Errorf("item %d: brand and model are required", idx)
		}
		if item.MaxStars <= 0 {
			item.MaxStars = tracking.MaxStars
		}
		item.MaxStars = tracking.ClampStars(item.MaxStars)

		key := item.Key()
		if key == "" {
			return nil, errors.Errorf("item %d: '%s' has an empty key", idx, item.Label())
		}
		if existing, ok := c.items[key]; ok {
			return nil, errors.Errorf("'%s' and '%s' share the key %s", existing.Label(), item.Label(), key)
		}

		c.items[key] = item
	}

	return c, nil
}

// Parse parses a YAML catalog
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrap(err, "unmarshalling catalog")
	}

	return New(f.Items)
}

// Load reads the catalog file at the path. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Catalog{items: map[string]Item{}}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "reading catalog file")
	}

	c, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	return c, nil
}

// Find returns the item with the key
func (c *Catalog) Find(key string) (Item, bool) {
	item, ok := c.items[key]
	return item, ok
}

// Lookup returns the item with the given brand and model
func (c *Catalog) Lookup(brand, model string) (Item, bool) {
	return c.Find(keycodec.FromParts(brand, model))
}

// Labels returns the exact key to label table of the catalog
func (c *Catalog) Labels() keycodec.Labels {
	ret := keycodec.Labels{}
	for key, item := range c.items {
		ret[key] = item.Label()
	}

	return ret
}

// Items returns all items sorted by key
func (c *Catalog) Items() []Item {
	keys := make([]string, 0, len(c.items))
	for key := range c.items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	ret := make([]Item, 0, len(keys))
	for _, key := range keys {
		ret = append(ret, c.items[key])
	}

	return ret
}

// Len returns the number of items
func (c *Catalog) Len() int {
	return len(c.items)
}
