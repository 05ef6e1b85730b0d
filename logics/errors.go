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

import "github.com/juju/errors"

const (
	// ErrInvalidMetric is returned for a similarity metric that is not supported.
	ErrInvalidMetric = errors.ConstError("invalid similarity metric")
	// ErrInvalidUser is returned for a user id that is not in the rating matrix.
	ErrInvalidUser = errors.ConstError("invalid user")
	// ErrNoMatrix is returned when a recommender has no usable similarity matrix.
	ErrNoMatrix = errors.ConstError("no usable similarity matrix")
	// ErrInternal is returned when a computation fails unexpectedly.
	ErrInternal = errors.ConstError("internal error")
)
