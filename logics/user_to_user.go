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

package logics

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/neighbor/base/log"
	"github.com/gorse-io/neighbor/common/heap"
	"github.com/gorse-io/neighbor/dataset"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"modernc.org/sortutil"
)

// Score is a neighbor and its similarity to the target user.
type Score struct {
	Id    int64
	Score float32
}

// UserToUser recommends items rated by the most similar users.
type UserToUser struct {
	similarity *SimilarityMatrix
	ratings    *dataset.RatingMatrix
}

// NewUserToUser creates a recommender from a similarity matrix and the rating
// matrix it was computed from.
func NewUserToUser(similarity *SimilarityMatrix, ratings *dataset.RatingMatrix) (*UserToUser, error) {
	if similarity == nil {
		return nil, errors.Trace(ErrNoMatrix)
	}
	if ratings == nil {
		return nil, errors.Annotate(dataset.ErrData, "no rating matrix")
	}
	if similarity.Len() != ratings.CountUsers() || similarity.items != ratings.CountItems() {
		return nil, errors.Annotatef(dataset.ErrData,
			"similarity matrix of %d users and %d items does not match rating matrix of %d users and %d items",
			similarity.Len(), similarity.items, ratings.CountUsers(), ratings.CountItems())
	}
	return &UserToUser{similarity: similarity, ratings: ratings}, nil
}

// position resolves a user id to its row through the user index of the rating matrix.
func (u *UserToUser) position(userId int64) (int, error) {
	pos := u.ratings.Users().Position(userId)
	if pos == dataset.NotId {
		return dataset.NotId, errors.Annotatef(ErrInvalidUser, "user %d not found", userId)
	}
	return pos, nil
}

// neighbors returns the positions of at most n users most similar to the user at
// pos, excluding the user itself. Ties are broken by position.
func (u *UserToUser) neighbors(pos, n int) []int {
	filter := heap.NewTopKFilter[int, float32](n)
	for i, score := range u.similarity.Row(pos) {
		if i != pos {
			filter.Push(i, score)
		}
	}
	return filter.PopAllValues()
}

// Neighbors returns at most n users most similar to a user, in descending order of similarity.
func (u *UserToUser) Neighbors(userId int64, n int) (scores []Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Logger().Error("failed to search neighbors", zap.Int64("user_id", userId), zap.Any("panic", r))
			scores, err = []Score{}, errors.Annotatef(ErrInternal, "%v", r)
		}
	}()
	pos, err := u.position(userId)
	if err != nil {
		return []Score{}, err
	}
	if n <= 0 {
		return []Score{}, nil
	}
	row := u.similarity.Row(pos)
	return lo.Map(u.neighbors(pos, n), func(neighbor int, _ int) Score {
		id, _ := u.ratings.Users().Id(neighbor)
		return Score{Id: id, Score: row[neighbor]}
	}), nil
}

// Recommend returns at most n items for a user:
//  1. take the n users most similar to the user as the neighborhood,
//  2. collect items rated by any neighbor but not rated by the user,
//  3. deduplicate the items and sort them by item id in ascending order,
//  4. keep the first n items.
//
// Items are not ranked by similarity. An empty list is returned on error.
func (u *UserToUser) Recommend(userId int64, n int) (items []int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Logger().Error("failed to recommend", zap.Int64("user_id", userId), zap.Any("panic", r))
			items, err = []int64{}, errors.Annotatef(ErrInternal, "%v", r)
		}
	}()
	pos, err := u.position(userId)
	if err != nil {
		return []int64{}, err
	}
	if n <= 0 {
		return []int64{}, nil
	}
	rated := mapset.NewThreadUnsafeSet(u.ratings.RatedItems(pos)...)
	candidates := make(sortutil.Int64Slice, 0)
	for _, neighbor := range u.neighbors(pos, n) {
		for j, rating := range u.ratings.Row(neighbor) {
			if dataset.IsRated(rating) && !rated.Contains(j) {
				itemId, _ := u.ratings.Items().Id(j)
				candidates = append(candidates, itemId)
			}
		}
	}
	distinct := sortutil.Dedupe(candidates)
	return candidates[:min(distinct, n)], nil
}
