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

import (
	"github.com/chewxy/math32"
	"github.com/juju/errors"
)

// ErrData is the cause of every error caused by malformed input data: missing
// columns, unparsable values or inconsistent matrix shapes.
const ErrData = errors.ConstError("malformed rating data")

// RatingMatrix is a dense user-by-item table of explicit ratings. Rows are users
// and columns are items, both addressed by position. A zero cell means the user
// has not rated the item. A RatingMatrix is never modified after construction,
// so it is safe to share between goroutines.
type RatingMatrix struct {
	users *Index
	items *Index
	rows  [][]float32
}

// NewRatingMatrix creates a RatingMatrix. Row i holds the ratings of userIds[i]
// and column j holds the ratings of itemIds[j]. Ratings are copied.
func NewRatingMatrix(userIds, itemIds []int64, rows [][]float32) (*RatingMatrix, error) {
	if len(rows) != len(userIds) {
		return nil, errors.Annotatef(ErrData, "%d rows for %d users", len(rows), len(userIds))
	}
	m := &RatingMatrix{
		users: NewIndex(),
		items: NewIndex(),
		rows:  make([][]float32, len(rows)),
	}
	for _, itemId := range itemIds {
		if m.items.Contains(itemId) {
			return nil, errors.Annotatef(ErrData, "duplicate item id %d", itemId)
		}
		m.items.Add(itemId)
	}
	for i, userId := range userIds {
		if m.users.Contains(userId) {
			return nil, errors.Annotatef(ErrData, "duplicate user id %d", userId)
		}
		m.users.Add(userId)
		if len(rows[i]) != len(itemIds) {
			return nil, errors.Annotatef(ErrData, "user %d has %d ratings but there are %d items",
				userId, len(rows[i]), len(itemIds))
		}
		for j, rating := range rows[i] {
			if rating < 0 || math32.IsNaN(rating) || math32.IsInf(rating, 0) {
				return nil, errors.Annotatef(ErrData, "invalid rating %v from user %d to item %d",
					rating, userId, itemIds[j])
			}
		}
		m.rows[i] = append([]float32(nil), rows[i]...)
	}
	return m, nil
}

// IsRated reports whether a cell value is a rating rather than the unrated sentinel.
func IsRated(rating float32) bool {
	return rating > 0
}

// CountUsers returns the number of rows.
func (m *RatingMatrix) CountUsers() int {
	return len(m.rows)
}

// CountItems returns the number of columns.
func (m *RatingMatrix) CountItems() int {
	return m.items.Len()
}

// Users returns the mapping between user ids and row positions.
func (m *RatingMatrix) Users() *Index {
	return m.users
}

// Items returns the mapping between item ids and column positions.
func (m *RatingMatrix) Items() *Index {
	return m.items
}

// Row returns the ratings of the user at a position. The returned slice must
// not be modified.
func (m *RatingMatrix) Row(pos int) []float32 {
	return m.rows[pos]
}

// Get returns the rating of a user to an item by ids. Unknown ids read as unrated.
func (m *RatingMatrix) Get(userId, itemId int64) float32 {
	u, i := m.users.Position(userId), m.items.Position(itemId)
	if u == NotId || i == NotId {
		return 0
	}
	return m.rows[u][i]
}

// RatedItems returns the column positions rated by the user at a position.
func (m *RatingMatrix) RatedItems(pos int) []int {
	var rated []int
	for j, rating := range m.rows[pos] {
		if IsRated(rating) {
			rated = append(rated, j)
		}
	}
	return rated
}
