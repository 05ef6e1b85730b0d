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
	"testing"

	"github.com/chewxy/math32"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func TestNewRatingMatrix(t *testing.T) {
	rows := [][]float32{
		{5, 0, 3},
		{4, 0, 0},
	}
	m, err := NewRatingMatrix([]int64{7, 3}, []int64{100, 200, 300}, rows)
	assert.NoError(t, err)
	assert.Equal(t, 2, m.CountUsers())
	assert.Equal(t, 3, m.CountItems())
	assert.Equal(t, 1, m.Users().Position(3))
	assert.Equal(t, 2, m.Items().Position(300))
	assert.Equal(t, []float32{4, 0, 0}, m.Row(1))
	assert.Equal(t, float32(3), m.Get(7, 300))
	assert.Equal(t, float32(0), m.Get(7, 200))
	assert.Equal(t, float32(0), m.Get(8, 300))
	assert.Equal(t, []int{0, 2}, m.RatedItems(0))
	assert.Equal(t, []int{0}, m.RatedItems(1))

	// ratings are copied
	rows[0][0] = 1
	assert.Equal(t, float32(5), m.Get(7, 100))
}

func TestNewRatingMatrixErrors(t *testing.T) {
	_, err := NewRatingMatrix([]int64{1}, []int64{1}, [][]float32{{1}, {2}})
	assert.True(t, errors.Is(err, ErrData))
	_, err = NewRatingMatrix([]int64{1, 1}, []int64{1}, [][]float32{{1}, {2}})
	assert.True(t, errors.Is(err, ErrData))
	_, err = NewRatingMatrix([]int64{1}, []int64{1, 1}, [][]float32{{1, 2}})
	assert.True(t, errors.Is(err, ErrData))
	_, err = NewRatingMatrix([]int64{1, 2}, []int64{1, 2}, [][]float32{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrData))
	_, err = NewRatingMatrix([]int64{1}, []int64{1}, [][]float32{{-1}})
	assert.True(t, errors.Is(err, ErrData))
	_, err = NewRatingMatrix([]int64{1}, []int64{1}, [][]float32{{math32.NaN()}})
	assert.True(t, errors.Is(err, ErrData))
}

func TestEmptyRatingMatrix(t *testing.T) {
	m, err := NewRatingMatrix(nil, nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, m.CountUsers())
	assert.Equal(t, 0, m.CountItems())
}

func TestIsRated(t *testing.T) {
	assert.True(t, IsRated(0.5))
	assert.False(t, IsRated(0))
}
