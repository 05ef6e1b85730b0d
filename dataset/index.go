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

// NotId represents a position that doesn't exist.
const NotId = -1

// Index manages the map between sparse ids and dense positions. A sparse id is
// a user id or item id as it appears in the input. The dense position is the
// row (or column) of the id in a RatingMatrix. Positions are assigned in
// insertion order and never reused.
type Index struct {
	positions map[int64]int // sparse id -> dense position
	ids       []int64       // dense position -> sparse id
}

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{
		positions: make(map[int64]int),
		ids:       make([]int64, 0),
	}
}

// Len returns the number of indexed ids.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.ids)
}

// Add adds a new id to the index and returns its position. Adding an existing
// id returns the position it already has.
func (idx *Index) Add(id int64) int {
	if pos, exist := idx.positions[id]; exist {
		return pos
	}
	pos := len(idx.ids)
	idx.positions[id] = pos
	idx.ids = append(idx.ids, id)
	return pos
}

// Position converts a sparse id to a dense position, or NotId.
func (idx *Index) Position(id int64) int {
	if pos, exist := idx.positions[id]; exist {
		return pos
	}
	return NotId
}

// Contains reports whether the id has been indexed.
func (idx *Index) Contains(id int64) bool {
	_, exist := idx.positions[id]
	return exist
}

// Id converts a dense position to a sparse id.
func (idx *Index) Id(pos int) (int64, bool) {
	if pos < 0 || pos >= len(idx.ids) {
		return 0, false
	}
	return idx.ids[pos], true
}

// Ids returns all ids in position order.
func (idx *Index) Ids() []int64 {
	return idx.ids
}
