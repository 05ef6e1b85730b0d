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
	"io"
	"strconv"

	"github.com/gorse-io/neighbor/base/log"
	"github.com/gorse-io/neighbor/dataset"
	"github.com/gorse-io/neighbor/logics"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var recommendCommand = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend items for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		metric, err := logics.ParseMetric(conf.Recommend.Metric)
		if err != nil {
			return errors.Trace(err)
		}
		userId, _ := cmd.Flags().GetInt64("user")
		engine, err := loadEngine(conf, nil)
		if err != nil {
			return errors.Trace(err)
		}
		items, err := engine.Recommend(cmd.Context(), userId, conf.Recommend.TopN, metric)
		if err != nil {
			return errors.Trace(err)
		}
		return renderRecommendation(cmd.OutOrStdout(), items, engine.Catalog())
	},
}

func init() {
	rootCommand.AddCommand(recommendCommand)
	recommendCommand.Flags().Int64("user", 0, "identifier of the user")
	recommendCommand.Flags().IntP("n", "n", 3, "number of neighbors and recommended items")
	addDataFlags(recommendCommand)
	_ = recommendCommand.MarkFlagRequired("user")
}

// renderRecommendation writes recommended items as a table. Items missing from the
// catalog are shown by id only.
func renderRecommendation(w io.Writer, items []int64, catalog *dataset.Catalog) error {
	table := tablewriter.NewWriter(w)
	table.Header("Item ID", "Title", "Description")
	for _, itemId := range items {
		item, ok := catalog.Get(itemId)
		if !ok {
			log.Logger().Warn("item not found in catalog", zap.Int64("item_id", itemId))
		}
		if err := table.Append([]string{strconv.FormatInt(itemId, 10), item.Title, item.Description}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
