// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

// Item holds the display attributes of an item. They are never used to
// compute recommendations.
type Item struct {
	ItemId      int64
	Title       string
	Image       string
	Description string
}

// Catalog maps item ids to their display attributes.
type Catalog struct {
	items map[int64]Item
}

func NewCatalog() *Catalog {
	return &Catalog{items: make(map[int64]Item)}
}

// Add stores an item unless the item id is already present.
func (c *Catalog) Add(item Item) {
	if _, exist := c.items[item.ItemId]; !exist {
		c.items[item.ItemId] = item
	}
}

func (c *Catalog) Get(itemId int64) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	item, ok := c.items[itemId]
	return item, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}
