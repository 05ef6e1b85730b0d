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
	"os"
	"os/signal"
	"syscall"

	"github.com/gorse-io/neighbor/base/log"
	"github.com/gorse-io/neighbor/logics"
	"github.com/gorse-io/neighbor/server"
	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig(cmd)
		if err != nil {
			return errors.Trace(err)
		}
		if cmd.Flags().Changed("port") {
			conf.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		engine, err := loadEngine(conf, nil)
		if err != nil {
			return errors.Trace(err)
		}
		// warm up the default metric
		if warmUp, _ := cmd.Flags().GetBool("warm-up"); warmUp {
			metric, err := logics.ParseMetric(conf.Recommend.Metric)
			if err != nil {
				return errors.Trace(err)
			}
			if _, err = engine.Similarity(cmd.Context(), metric); err != nil {
				return errors.Trace(err)
			}
			log.Logger().Info("warm up similarity", zap.Stringer("metric", metric))
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err = server.NewServer(engine, conf).Serve(ctx); err != nil {
			return errors.Trace(err)
		}
		log.Logger().Info("stop gorse-neighbor successfully")
		return nil
	},
}

func init() {
	rootCommand.AddCommand(serveCommand)
	serveCommand.Flags().String("data", "", "path of the rating file")
	serveCommand.Flags().String("metric", "", "default similarity metric")
	serveCommand.Flags().Int("jobs", 1, "number of jobs computing similarity")
	serveCommand.Flags().Int("port", 8088, "port of the HTTP server")
	serveCommand.Flags().Bool("warm-up", false, "compute the similarity of the default metric before serving")
}
