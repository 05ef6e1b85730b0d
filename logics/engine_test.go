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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gorse-io/neighbor/dataset"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEngine(t *testing.T) {
	ratings := newRatings(t, [][]float32{
		{5, 0, 3},
		{4, 0, 0},
		{0, 5, 4},
		{0, 0, 5},
	})
	var mu sync.Mutex
	progress := make(map[Metric]int)
	engine, err := NewEngine(ratings, nil, EngineOptions{
		Jobs: 2,
		Progress: func(metric Metric, rows int) {
			mu.Lock()
			defer mu.Unlock()
			progress[metric] += rows
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, engine.Catalog().Len())
	assert.Same(t, ratings, engine.Ratings())

	hits := testutil.ToFloat64(SimilarityCacheHitsTotal.WithLabelValues("hamming"))
	misses := testutil.ToFloat64(SimilarityCacheMissesTotal.WithLabelValues("hamming"))
	items, err := engine.Recommend(context.Background(), 1, 3, MetricHamming)
	assert.NoError(t, err)
	assert.Equal(t, []int64{2}, items)
	items, err = engine.Recommend(context.Background(), 4, 2, MetricHamming)
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, items)
	assert.Equal(t, misses+1, testutil.ToFloat64(SimilarityCacheMissesTotal.WithLabelValues("hamming")))
	assert.Equal(t, hits+1, testutil.ToFloat64(SimilarityCacheHitsTotal.WithLabelValues("hamming")))
	assert.Equal(t, 4, progress[MetricHamming])

	scores, err := engine.Neighbors(context.Background(), 2, 1, MetricHamming)
	assert.NoError(t, err)
	assert.Equal(t, []Score{{Id: 1, Score: scores[0].Score}}, scores)

	_, err = engine.Recommend(context.Background(), 9, 3, MetricHamming)
	assert.True(t, errors.Is(err, ErrInvalidUser))
	items, err = engine.Recommend(context.Background(), 1, 3, Metric(42))
	assert.True(t, errors.Is(err, ErrInvalidMetric))
	assert.Empty(t, items)
	_, err = engine.Neighbors(context.Background(), 1, 3, Metric(42))
	assert.True(t, errors.Is(err, ErrInvalidMetric))
}

func TestEngineCache(t *testing.T) {
	ratings := sparseRatings(t, 10, 6)
	engine, err := NewEngine(ratings, dataset.NewCatalog(), EngineOptions{})
	assert.NoError(t, err)
	a, err := engine.Similarity(context.Background(), MetricCosine)
	assert.NoError(t, err)
	b, err := engine.Similarity(context.Background(), MetricCosine)
	assert.NoError(t, err)
	assert.Same(t, a, b)
	c, err := engine.Similarity(context.Background(), MetricJaccard)
	assert.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, MetricJaccard, c.Metric())
}

func TestEngineCacheExpire(t *testing.T) {
	ratings := sparseRatings(t, 10, 6)
	engine, err := NewEngine(ratings, nil, EngineOptions{CacheTTL: time.Millisecond})
	assert.NoError(t, err)
	a, err := engine.Similarity(context.Background(), MetricEuclidean)
	assert.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	b, err := engine.Similarity(context.Background(), MetricEuclidean)
	assert.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, a.values, b.values)
}

func TestEngineCancel(t *testing.T) {
	ratings := sparseRatings(t, 10, 6)
	engine, err := NewEngine(ratings, nil, EngineOptions{})
	assert.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Similarity(ctx, MetricManhattan)
	assert.ErrorIs(t, err, context.Canceled)
	// failures are not cached
	similarity, err := engine.Similarity(context.Background(), MetricManhattan)
	assert.NoError(t, err)
	assert.NotNil(t, similarity)
}

func TestNewEngine(t *testing.T) {
	_, err := NewEngine(nil, nil, EngineOptions{})
	assert.True(t, errors.Is(err, dataset.ErrData))
}
