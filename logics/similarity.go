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
	"strings"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/chewxy/math32"
	"github.com/gorse-io/neighbor/base/log"
	"github.com/gorse-io/neighbor/common/floats"
	"github.com/gorse-io/neighbor/common/parallel"
	"github.com/gorse-io/neighbor/dataset"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

// Metric is a user similarity metric. The set of metrics is closed: a Metric
// can only be obtained from the constants below or from ParseMetric.
type Metric int

const (
	MetricCosine Metric = iota
	MetricEuclidean
	MetricManhattan
	MetricHamming
	MetricJaccard
)

var metricNames = [...]string{
	MetricCosine:    "cosine",
	MetricEuclidean: "euclidean",
	MetricManhattan: "manhattan",
	MetricHamming:   "hamming",
	MetricJaccard:   "jaccard",
}

// Metrics returns all supported metrics.
func Metrics() []Metric {
	return []Metric{MetricCosine, MetricEuclidean, MetricManhattan, MetricHamming, MetricJaccard}
}

// MetricNames returns the names of all supported metrics.
func MetricNames() []string {
	return metricNames[:]
}

// ParseMetric converts a metric name to a Metric.
func ParseMetric(name string) (Metric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, metricName := range metricNames {
		if metricName == name {
			return Metric(m), nil
		}
	}
	return 0, errors.Annotatef(ErrInvalidMetric, "unknown metric %q", name)
}

func (m Metric) valid() bool {
	return m >= 0 && int(m) < len(metricNames)
}

func (m Metric) String() string {
	if !m.valid() {
		return "unknown"
	}
	return metricNames[m]
}

// SimilarityMatrix is a square user-by-user similarity table. Row i and column i
// correspond to the user at position i of the rating matrix it was computed from.
// It is symmetric and its diagonal is 1.
type SimilarityMatrix struct {
	metric Metric
	items  int
	values [][]float32
}

// Metric returns the metric used to compute the matrix.
func (s *SimilarityMatrix) Metric() Metric {
	return s.metric
}

// Len returns the number of users.
func (s *SimilarityMatrix) Len() int {
	return len(s.values)
}

// At returns the similarity between the users at position i and j.
func (s *SimilarityMatrix) At(i, j int) float32 {
	return s.values[i][j]
}

// Row returns the similarities between the user at position i and all users.
// The returned slice must not be modified.
func (s *SimilarityMatrix) Row(i int) []float32 {
	return s.values[i]
}

// BinaryProjection maps every rating to 1 if rated else 0. One bitset per user.
type BinaryProjection []*bitset.BitSet

func NewBinaryProjection(ratings *dataset.RatingMatrix) BinaryProjection {
	projection := make(BinaryProjection, ratings.CountUsers())
	for i := range projection {
		projection[i] = bitset.New(uint(ratings.CountItems()))
		for _, j := range ratings.RatedItems(i) {
			projection[i].Set(uint(j))
		}
	}
	return projection
}

type SimilarityOptions struct {
	// Jobs is the number of goroutines computing rows. Rows are computed
	// sequentially if Jobs <= 1.
	Jobs int
	// Progress is called once per finished row. It might be called concurrently.
	Progress func(rows int)
}

// ComputeSimilarity computes the similarity between every pair of users:
//
//	cosine:    dot(a, b) / (|a| |b|), 0 if either vector is zero
//	euclidean: 1 / (1 + |a - b|_2)
//	manhattan: 1 / (1 + |a - b|_1)
//	hamming:   1 - (number of differing rated flags) / (number of items), 1 if there is no item
//	jaccard:   |rated(a) ∩ rated(b)| / |rated(a) ∪ rated(b)|, 1 if both are empty
//
// Hamming and jaccard are computed on the binary projection of ratings. The diagonal
// is always 1, even for users without ratings. Every metric visits all pairs, so
// the cost is O(n^2 m) for n users and m items.
//
// No matrix is returned on error.
func ComputeSimilarity(ctx context.Context, ratings *dataset.RatingMatrix, metric Metric, opts *SimilarityOptions) (_ *SimilarityMatrix, err error) {
	if !metric.valid() {
		return nil, errors.Annotatef(ErrInvalidMetric, "unknown metric %d", int(metric))
	}
	if ratings == nil {
		return nil, errors.Annotate(dataset.ErrData, "no rating matrix")
	}
	if opts == nil {
		opts = &SimilarityOptions{}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Logger().Error("failed to compute similarity", zap.Stringer("metric", metric), zap.Any("panic", r))
			err = errors.Annotatef(ErrInternal, "%v", r)
		}
	}()

	start := time.Now()
	pair := pairSimilarity(ratings, metric)
	n := ratings.CountUsers()
	values := make([][]float32, n)
	for i := range values {
		values[i] = make([]float32, n)
	}
	// Each job fills the upper triangle of row i and mirrors it into column i,
	// so no cell is written by two jobs.
	err = parallel.Parallel(ctx, n, opts.Jobs, func(_, i int) error {
		values[i][i] = 1
		for j := i + 1; j < n; j++ {
			s := pair(i, j)
			values[i][j] = s
			values[j][i] = s
		}
		if opts.Progress != nil {
			opts.Progress(1)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Trace(ctxErr)
		}
		log.Logger().Error("failed to compute similarity", zap.Stringer("metric", metric), zap.Error(err))
		return nil, errors.Annotate(ErrInternal, err.Error())
	}
	log.Logger().Debug("complete computing similarity",
		zap.Stringer("metric", metric),
		zap.Int("n_users", n),
		zap.Int("n_items", ratings.CountItems()),
		zap.Duration("used_time", time.Since(start)))
	return &SimilarityMatrix{
		metric: metric,
		items:  ratings.CountItems(),
		values: values,
	}, nil
}

func pairSimilarity(ratings *dataset.RatingMatrix, metric Metric) func(i, j int) float32 {
	switch metric {
	case MetricCosine:
		norms := make([]float32, ratings.CountUsers())
		for i := range norms {
			norms[i] = floats.Norm(ratings.Row(i))
		}
		return func(i, j int) float32 {
			if norms[i] == 0 || norms[j] == 0 {
				return 0
			}
			s := floats.Dot(ratings.Row(i), ratings.Row(j)) / (norms[i] * norms[j])
			// clamp rounding errors
			return math32.Max(0, math32.Min(1, s))
		}
	case MetricEuclidean:
		return func(i, j int) float32 {
			return 1 / (1 + floats.Euclidean(ratings.Row(i), ratings.Row(j)))
		}
	case MetricManhattan:
		return func(i, j int) float32 {
			return 1 / (1 + floats.Manhattan(ratings.Row(i), ratings.Row(j)))
		}
	case MetricHamming:
		projection := NewBinaryProjection(ratings)
		numItems := float32(ratings.CountItems())
		return func(i, j int) float32 {
			if numItems == 0 {
				return 1
			}
			return 1 - float32(projection[i].SymmetricDifferenceCardinality(projection[j]))/numItems
		}
	case MetricJaccard:
		projection := NewBinaryProjection(ratings)
		return func(i, j int) float32 {
			union := projection[i].UnionCardinality(projection[j])
			if union == 0 {
				return 1
			}
			return float32(projection[i].IntersectionCardinality(projection[j])) / float32(union)
		}
	}
	panic("unreachable")
}
