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

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/juju/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding configuration, e.g.
// RECSYSEVAL_INPUT_SEPARATOR overrides input.separator.
const EnvPrefix = "RECSYSEVAL"

// Config is the configuration for the command line tool.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Segment  SegmentConfig  `mapstructure:"segment"`
	Fairness FairnessConfig `mapstructure:"fairness"`
	Accuracy AccuracyConfig `mapstructure:"accuracy"`
	Beyond   BeyondConfig   `mapstructure:"beyond"`
}

// InputConfig is the configuration of CSV files.
type InputConfig struct {
	Separator string `mapstructure:"separator" validate:"required"`
}

// SegmentConfig is the configuration of segmentations. Empty proportions fall back to
// the default of each segmentation.
type SegmentConfig struct {
	Proportions    []float64 `mapstructure:"proportions" validate:"omitempty,min=1,max=3,dive,gte=0,lte=1"`
	MinInteraction int       `mapstructure:"min_interaction" validate:"gte=0"`
	GroupBy        string    `mapstructure:"group_by" validate:"oneof=user item"`
	Seed           int64     `mapstructure:"seed"`
	FillValue      string    `mapstructure:"fill_value" validate:"required"`
}

type FairnessConfig struct {
	Flag      string `mapstructure:"flag" validate:"oneof=user item"`
	StrictLog bool   `mapstructure:"strict_log"`
}

type AccuracyConfig struct {
	Ats     []int    `mapstructure:"ats" validate:"min=1,dive,gte=1"`
	Metrics []string `mapstructure:"metrics" validate:"min=1,dive,oneof=NDCG Precision Recall HR MAP MRR"`
}

type BeyondConfig struct {
	Popularity string `mapstructure:"popularity" validate:"oneof=group percentage"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			Separator: ",",
		},
		Segment: SegmentConfig{
			GroupBy:   "item",
			FillValue: "-1",
		},
		Fairness: FairnessConfig{
			Flag: "item",
		},
		Accuracy: AccuracyConfig{
			Ats:     []int{5, 10},
			Metrics: []string{"NDCG"},
		},
		Beyond: BeyondConfig{
			Popularity: "group",
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [input]
	v.SetDefault("input.separator", defaultConfig.Input.Separator)
	// [segment]
	v.SetDefault("segment.proportions", defaultConfig.Segment.Proportions)
	v.SetDefault("segment.min_interaction", defaultConfig.Segment.MinInteraction)
	v.SetDefault("segment.group_by", defaultConfig.Segment.GroupBy)
	v.SetDefault("segment.seed", defaultConfig.Segment.Seed)
	v.SetDefault("segment.fill_value", defaultConfig.Segment.FillValue)
	// [fairness]
	v.SetDefault("fairness.flag", defaultConfig.Fairness.Flag)
	v.SetDefault("fairness.strict_log", defaultConfig.Fairness.StrictLog)
	// [accuracy]
	v.SetDefault("accuracy.ats", defaultConfig.Accuracy.Ats)
	v.SetDefault("accuracy.metrics", defaultConfig.Accuracy.Metrics)
	// [beyond]
	v.SetDefault("beyond.popularity", defaultConfig.Beyond.Popularity)
}

// LoadConfig loads configuration from a TOML file. An empty path loads defaults only.
// Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefault(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "failed to read config file %s", path)
		}
	}

	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}

// Validate checks values against their constraints.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.NewNotValid(err, "invalid config")
	}
	return nil
}
