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

package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/neighbor/dataset"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

const envPrefix = "GORSE_NEIGHBOR"

// Config is the configuration for the recommender.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DataConfig locates the rating file and its columns.
type DataConfig struct {
	Path              string `mapstructure:"path" validate:"required"`
	UserColumn        string `mapstructure:"user_column" validate:"required"`
	ItemColumn        string `mapstructure:"item_column" validate:"required"`
	RatingColumn      string `mapstructure:"rating_column" validate:"required"`
	TitleColumn       string `mapstructure:"title_column"`
	ImageColumn       string `mapstructure:"image_column"`
	DescriptionColumn string `mapstructure:"description_column"`
}

func (c *DataConfig) LoaderOptions() dataset.LoaderOptions {
	return dataset.LoaderOptions{
		UserColumn:        c.UserColumn,
		ItemColumn:        c.ItemColumn,
		RatingColumn:      c.RatingColumn,
		TitleColumn:       c.TitleColumn,
		ImageColumn:       c.ImageColumn,
		DescriptionColumn: c.DescriptionColumn,
	}
}

type RecommendConfig struct {
	Metric   string        `mapstructure:"metric" validate:"oneof=cosine euclidean manhattan hamming jaccard"`
	TopN     int           `mapstructure:"top_n" validate:"gte=1"`
	Jobs     int           `mapstructure:"jobs" validate:"gte=1"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host" validate:"required"`
	Port   int    `mapstructure:"port" validate:"gte=1,lte=65535"`
	APIKey string `mapstructure:"api_key"`
}

func GetDefaultConfig() *Config {
	loader := dataset.DefaultLoaderOptions()
	return &Config{
		Data: DataConfig{
			Path:              "books.csv",
			UserColumn:        loader.UserColumn,
			ItemColumn:        loader.ItemColumn,
			RatingColumn:      loader.RatingColumn,
			TitleColumn:       loader.TitleColumn,
			ImageColumn:       loader.ImageColumn,
			DescriptionColumn: loader.DescriptionColumn,
		},
		Recommend: RecommendConfig{
			Metric: "hamming",
			TopN:   3,
			Jobs:   1,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8088,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [data]
	v.SetDefault("data.path", defaultConfig.Data.Path)
	v.SetDefault("data.user_column", defaultConfig.Data.UserColumn)
	v.SetDefault("data.item_column", defaultConfig.Data.ItemColumn)
	v.SetDefault("data.rating_column", defaultConfig.Data.RatingColumn)
	v.SetDefault("data.title_column", defaultConfig.Data.TitleColumn)
	v.SetDefault("data.image_column", defaultConfig.Data.ImageColumn)
	v.SetDefault("data.description_column", defaultConfig.Data.DescriptionColumn)
	// [recommend]
	v.SetDefault("recommend.metric", defaultConfig.Recommend.Metric)
	v.SetDefault("recommend.top_n", defaultConfig.Recommend.TopN)
	v.SetDefault("recommend.jobs", defaultConfig.Recommend.Jobs)
	v.SetDefault("recommend.cache_ttl", defaultConfig.Recommend.CacheTTL)
	// [server]
	v.SetDefault("server.host", defaultConfig.Server.Host)
	v.SetDefault("server.port", defaultConfig.Server.Port)
	v.SetDefault("server.api_key", defaultConfig.Server.APIKey)
}

// LoadConfig loads configuration from a TOML file. Every key can be overridden by
// an environment variable, e.g. GORSE_NEIGHBOR_DATA_PATH overrides data.path.
// Only defaults and environment variables are used if path is empty.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "failed to read config %s", path)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	conf.Recommend.Metric = strings.ToLower(strings.TrimSpace(conf.Recommend.Metric))
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Annotate(err, "invalid config")
	}
	return nil
}
