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
	"encoding/csv"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// LoaderOptions names the columns of a rating file.
type LoaderOptions struct {
	UserColumn        string
	ItemColumn        string
	RatingColumn      string
	TitleColumn       string
	ImageColumn       string
	DescriptionColumn string
}

// DefaultLoaderOptions returns the column names of the book rating dataset.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		UserColumn:        "user_id",
		ItemColumn:        "book_id",
		RatingColumn:      "rating",
		TitleColumn:       "title",
		ImageColumn:       "image",
		DescriptionColumn: "description",
	}
}

type ratingKey struct {
	userId int64
	itemId int64
}

type ratingRecord struct {
	line   int
	rating float32
	item   Item
}

// LoadCSV loads a rating matrix and an item catalog from a CSV file with a header row.
func LoadCSV(path string, opts LoaderOptions) (*RatingMatrix, *Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	defer file.Close()
	return ReadCSV(file, opts)
}

// ReadCSV parses rating records and pivots them into a dense RatingMatrix:
//   - duplicated (user, item) records are resolved by the last one,
//   - users and items are sorted by id in ascending order,
//   - missing ratings (and empty rating fields) are filled by zero.
//
// The catalog entry of an item comes from the first surviving record of the item.
func ReadCSV(r io.Reader, opts LoaderOptions) (*RatingMatrix, *Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.Annotate(ErrData, "empty file")
	} else if err != nil {
		return nil, nil, errors.Annotatef(ErrData, "failed to read header: %v", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[name] = i
	}
	required := mapset.NewSet(opts.UserColumn, opts.ItemColumn, opts.RatingColumn)
	if missing := required.Difference(mapset.NewSet(lo.Keys(columns)...)); missing.Cardinality() > 0 {
		names := missing.ToSlice()
		slices.Sort(names)
		return nil, nil, errors.Annotatef(ErrData, "missing columns %v", names)
	}
	field := func(record []string, name string) string {
		if i, ok := columns[name]; ok && name != "" && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	records := make(map[ratingKey]ratingRecord)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, nil, errors.Annotatef(ErrData, "%v", err)
		}
		line, _ := reader.FieldPos(0)
		userId, err := strconv.ParseInt(field(record, opts.UserColumn), 10, 64)
		if err != nil {
			return nil, nil, errors.Annotatef(ErrData, "line %d: invalid user id", line)
		}
		itemId, err := strconv.ParseInt(field(record, opts.ItemColumn), 10, 64)
		if err != nil {
			return nil, nil, errors.Annotatef(ErrData, "line %d: invalid item id", line)
		}
		var rating float32
		if text := field(record, opts.RatingColumn); text != "" {
			value, err := strconv.ParseFloat(text, 32)
			if err != nil {
				return nil, nil, errors.Annotatef(ErrData, "line %d: invalid rating %q", line, text)
			}
			if value < 0 {
				return nil, nil, errors.Annotatef(ErrData, "line %d: negative rating %v", line, value)
			}
			rating = float32(value)
		}
		records[ratingKey{userId: userId, itemId: itemId}] = ratingRecord{
			line:   line,
			rating: rating,
			item: Item{
				ItemId:      itemId,
				Title:       field(record, opts.TitleColumn),
				Image:       field(record, opts.ImageColumn),
				Description: field(record, opts.DescriptionColumn),
			},
		}
	}
	if len(records) == 0 {
		return nil, nil, errors.Annotate(ErrData, "no ratings")
	}

	// pivot
	userSet, itemSet := mapset.NewThreadUnsafeSet[int64](), mapset.NewThreadUnsafeSet[int64]()
	for key := range records {
		userSet.Add(key.userId)
		itemSet.Add(key.itemId)
	}
	userIds, itemIds := userSet.ToSlice(), itemSet.ToSlice()
	slices.Sort(userIds)
	slices.Sort(itemIds)
	userPos := make(map[int64]int, len(userIds))
	for i, id := range userIds {
		userPos[id] = i
	}
	itemPos := make(map[int64]int, len(itemIds))
	for j, id := range itemIds {
		itemPos[id] = j
	}
	rows := make([][]float32, len(userIds))
	for i := range rows {
		rows[i] = make([]float32, len(itemIds))
	}
	for key, record := range records {
		rows[userPos[key.userId]][itemPos[key.itemId]] = record.rating
	}
	matrix, err := NewRatingMatrix(userIds, itemIds, rows)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}

	// catalog
	surviving := lo.Values(records)
	sort.Slice(surviving, func(i, j int) bool {
		return surviving[i].line < surviving[j].line
	})
	catalog := NewCatalog()
	for _, record := range surviving {
		catalog.Add(record.item)
	}
	return matrix, catalog, nil
}
