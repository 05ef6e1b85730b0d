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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

const books = `user_id,book_id,title,image,description,rating
1,10,Dune,dune.png,Desert planet,5
1,30,Emma,emma.png,A novel of manners,3
2,10,Dune (2nd),dune2.png,Duplicate title,4
3,20,Ulysses,ulysses.png,One day in Dublin,5
3,30,Emma,emma.png,A novel of manners,4
4,30,Emma,emma.png,A novel of manners,5
1,30,Emma,emma.png,A novel of manners,2
`

func TestReadCSV(t *testing.T) {
	ratings, catalog, err := ReadCSV(strings.NewReader(books), DefaultLoaderOptions())
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, ratings.Users().Ids())
	assert.Equal(t, []int64{10, 20, 30}, ratings.Items().Ids())
	assert.Equal(t, []float32{5, 0, 2}, ratings.Row(0))
	assert.Equal(t, []float32{4, 0, 0}, ratings.Row(1))
	assert.Equal(t, []float32{0, 5, 4}, ratings.Row(2))
	assert.Equal(t, []float32{0, 0, 5}, ratings.Row(3))

	assert.Equal(t, 3, catalog.Len())
	dune, ok := catalog.Get(10)
	assert.True(t, ok)
	assert.Equal(t, Item{ItemId: 10, Title: "Dune", Image: "dune.png", Description: "Desert planet"}, dune)
	// the first surviving record of item 30 is user 3, since user 1 was rewritten later
	emma, ok := catalog.Get(30)
	assert.True(t, ok)
	assert.Equal(t, "Emma", emma.Title)
	_, ok = catalog.Get(40)
	assert.False(t, ok)
}

func TestReadCSVCustomColumns(t *testing.T) {
	text := "uid,iid,score\n5,1,2\n9,1,0\n9,2,\n"
	ratings, catalog, err := ReadCSV(strings.NewReader(text), LoaderOptions{
		UserColumn:   "uid",
		ItemColumn:   "iid",
		RatingColumn: "score",
	})
	assert.NoError(t, err)
	assert.Equal(t, []int64{5, 9}, ratings.Users().Ids())
	assert.Equal(t, []float32{2, 0}, ratings.Row(0))
	assert.Equal(t, []float32{0, 0}, ratings.Row(1))
	item, ok := catalog.Get(2)
	assert.True(t, ok)
	assert.Equal(t, Item{ItemId: 2}, item)
}

func TestReadCSVErrors(t *testing.T) {
	cases := []string{
		"",
		"user_id,book_id\n1,2\n",
		"user_id,book_id,rating\n",
		"user_id,book_id,rating\nx,2,3\n",
		"user_id,book_id,rating\n1,y,3\n",
		"user_id,book_id,rating\n1,2,z\n",
		"user_id,book_id,rating\n1,2,-1\n",
		"user_id,book_id,rating\n1,2\n",
	}
	for _, text := range cases {
		_, _, err := ReadCSV(strings.NewReader(text), DefaultLoaderOptions())
		assert.True(t, errors.Is(err, ErrData), text)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	assert.NoError(t, os.WriteFile(path, []byte(books), 0644))
	ratings, catalog, err := LoadCSV(path, DefaultLoaderOptions())
	assert.NoError(t, err)
	assert.Equal(t, 4, ratings.CountUsers())
	assert.Equal(t, 3, catalog.Len())

	_, _, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), DefaultLoaderOptions())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrData))
}
