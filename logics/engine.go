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
	"time"

	"github.com/gorse-io/neighbor/dataset"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
)

type EngineOptions struct {
	// Jobs is the number of goroutines used to compute a similarity matrix.
	Jobs int
	// CacheTTL is the lifetime of a cached similarity matrix. Zero means forever.
	CacheTTL time.Duration
	// Progress is called once per finished row of a similarity matrix.
	Progress func(metric Metric, rows int)
}

// Engine serves recommendations over one snapshot of ratings. Similarity
// matrices are computed on first use and cached per metric. It is safe for
// concurrent use.
type Engine struct {
	ratings *dataset.RatingMatrix
	catalog *dataset.Catalog
	options EngineOptions
	cache   *ttlcache.Cache[Metric, *SimilarityMatrix]
}

func NewEngine(ratings *dataset.RatingMatrix, catalog *dataset.Catalog, options EngineOptions) (*Engine, error) {
	if ratings == nil {
		return nil, errors.Annotate(dataset.ErrData, "no rating matrix")
	}
	if catalog == nil {
		catalog = dataset.NewCatalog()
	}
	var cacheOptions []ttlcache.Option[Metric, *SimilarityMatrix]
	if options.CacheTTL > 0 {
		cacheOptions = append(cacheOptions, ttlcache.WithTTL[Metric, *SimilarityMatrix](options.CacheTTL))
	}
	return &Engine{
		ratings: ratings,
		catalog: catalog,
		options: options,
		cache:   ttlcache.New(cacheOptions...),
	}, nil
}

func (e *Engine) Ratings() *dataset.RatingMatrix {
	return e.ratings
}

func (e *Engine) Catalog() *dataset.Catalog {
	return e.catalog
}

// Similarity returns the similarity matrix of a metric. Failed computations are not cached.
func (e *Engine) Similarity(ctx context.Context, metric Metric) (*SimilarityMatrix, error) {
	if item := e.cache.Get(metric); item != nil {
		SimilarityCacheHitsTotal.WithLabelValues(metric.String()).Inc()
		return item.Value(), nil
	}
	SimilarityCacheMissesTotal.WithLabelValues(metric.String()).Inc()
	opts := &SimilarityOptions{Jobs: e.options.Jobs}
	if e.options.Progress != nil {
		opts.Progress = func(rows int) {
			e.options.Progress(metric, rows)
		}
	}
	start := time.Now()
	similarity, err := ComputeSimilarity(ctx, e.ratings, metric, opts)
	if err != nil {
		return nil, errors.Trace(err)
	}
	ComputeSimilaritySeconds.WithLabelValues(metric.String()).Observe(time.Since(start).Seconds())
	e.cache.Set(metric, similarity, ttlcache.DefaultTTL)
	return similarity, nil
}

// Recommend returns at most n items for a user from the neighborhood under a metric.
func (e *Engine) Recommend(ctx context.Context, userId int64, n int, metric Metric) ([]int64, error) {
	recommender, err := e.recommender(ctx, metric)
	if err != nil {
		return []int64{}, errors.Trace(err)
	}
	items, err := recommender.Recommend(userId, n)
	if err != nil {
		return []int64{}, errors.Trace(err)
	}
	return items, nil
}

// Neighbors returns at most n users most similar to a user under a metric.
func (e *Engine) Neighbors(ctx context.Context, userId int64, n int, metric Metric) ([]Score, error) {
	recommender, err := e.recommender(ctx, metric)
	if err != nil {
		return []Score{}, errors.Trace(err)
	}
	scores, err := recommender.Neighbors(userId, n)
	if err != nil {
		return []Score{}, errors.Trace(err)
	}
	return scores, nil
}

func (e *Engine) recommender(ctx context.Context, metric Metric) (*UserToUser, error) {
	similarity, err := e.Similarity(ctx, metric)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return NewUserToUser(similarity, e.ratings)
}
