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

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gorse-io/neighbor/logics"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var similarityCommand = &cobra.Command{
	Use:   "similarity",
	Short: "Compute the similarity between users",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		metric, err := logics.ParseMetric(conf.Recommend.Metric)
		if err != nil {
			return errors.Trace(err)
		}
		var bar *progressbar.ProgressBar
		engine, err := loadEngine(conf, func(_ logics.Metric, rows int) {
			_ = bar.Add(rows)
		})
		if err != nil {
			return errors.Trace(err)
		}
		bar = progressbar.NewOptions(engine.Ratings().CountUsers(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(fmt.Sprintf("compute %s similarity", metric)))
		similarity, err := engine.Similarity(cmd.Context(), metric)
		if err != nil {
			return errors.Trace(err)
		}
		_ = bar.Finish()
		return renderSimilarity(cmd.OutOrStdout(), similarity, engine.Ratings().Users().Ids())
	},
}

func init() {
	rootCommand.AddCommand(similarityCommand)
	addDataFlags(similarityCommand)
}

// renderSimilarity writes a similarity matrix as a table labeled by user ids.
func renderSimilarity(w io.Writer, similarity *logics.SimilarityMatrix, userIds []int64) error {
	labels := lo.Map(userIds, func(userId int64, _ int) string {
		return strconv.FormatInt(userId, 10)
	})
	table := tablewriter.NewWriter(w)
	table.Header(append([]string{similarity.Metric().String()}, labels...))
	for i := 0; i < similarity.Len(); i++ {
		row := []string{labels[i]}
		for _, s := range similarity.Row(i) {
			row = append(row, strconv.FormatFloat(float64(s), 'f', 4, 32))
		}
		if err := table.Append(row); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
