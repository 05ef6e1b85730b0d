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

	"github.com/gorse-io/neighbor/base/log"
	"github.com/gorse-io/neighbor/cmd/version"
	"github.com/gorse-io/neighbor/config"
	"github.com/gorse-io/neighbor/dataset"
	"github.com/gorse-io/neighbor/logics"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCommand = &cobra.Command{
	Use:   "gorse-neighbor",
	Short: "User-based collaborative filtering recommender.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.SetLogger(cmd.Flags(), debug)
	},
	SilenceUsage: true,
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Show build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
	},
}

func init() {
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	rootCommand.AddCommand(versionCommand)
}

// loadConfig loads the configuration file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		log.Logger().Info("load config", zap.String("config", configPath))
	}
	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if cmd.Flags().Changed("data") {
		conf.Data.Path, _ = cmd.Flags().GetString("data")
	}
	if cmd.Flags().Changed("metric") {
		conf.Recommend.Metric, _ = cmd.Flags().GetString("metric")
	}
	if cmd.Flags().Changed("n") {
		conf.Recommend.TopN, _ = cmd.Flags().GetInt("n")
	}
	if cmd.Flags().Changed("jobs") {
		conf.Recommend.Jobs, _ = cmd.Flags().GetInt("jobs")
	}
	if err = conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return conf, nil
}

// loadEngine loads ratings and creates an engine.
func loadEngine(conf *config.Config, progress func(metric logics.Metric, rows int)) (*logics.Engine, error) {
	ratings, catalog, err := dataset.LoadCSV(conf.Data.Path, conf.Data.LoaderOptions())
	if err != nil {
		return nil, errors.Annotatef(err, "failed to load %s", conf.Data.Path)
	}
	log.Logger().Info("load ratings",
		zap.String("path", conf.Data.Path),
		zap.Int("n_users", ratings.CountUsers()),
		zap.Int("n_items", ratings.CountItems()),
		zap.Int("n_catalog", catalog.Len()))
	return logics.NewEngine(ratings, catalog, logics.EngineOptions{
		Jobs:     conf.Recommend.Jobs,
		CacheTTL: conf.Recommend.CacheTTL,
		Progress: progress,
	})
}

func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("data", "", "path of the rating file")
	cmd.Flags().String("metric", "", "similarity metric (cosine, euclidean, manhattan, hamming or jaccard)")
	cmd.Flags().Int("jobs", 1, "number of jobs computing similarity")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
