// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/lucsoft/web-bson-sub000/bson/bsonoptions"
)

// Config is the contents of a bsondump configuration file.
type Config struct {
	LogLevel    string            `toml:"log-level"`
	Workers     int               `toml:"workers"`
	Color       bool              `toml:"color"`
	Deserialize DeserializeConfig `toml:"deserialize"`
}

// DeserializeConfig mirrors bsonoptions.DeserializeOptions. Unset entries
// keep the library defaults.
type DeserializeConfig struct {
	PromoteLongs   *bool           `toml:"promote-longs"`
	PromoteValues  *bool           `toml:"promote-values"`
	PromoteBuffers *bool           `toml:"promote-buffers"`
	BSONRegExp     *bool           `toml:"bson-regexp"`
	ValidateUTF8   *bool           `toml:"validate-utf8"`
	UTF8Fields     map[string]bool `toml:"utf8-fields"`
}

func defaultConfig() *Config {
	return &Config{LogLevel: "info", Workers: 4}
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config %s", path)
	}
	if err := tree.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	if cfg.Workers < 1 {
		return nil, errors.Errorf("config %s: workers must be positive, got %d", path, cfg.Workers)
	}
	return cfg, nil
}

// applyFlags overrides cfg with the flags set on the command line.
func (cfg *Config) applyFlags(flags *pflag.FlagSet) error {
	var err error
	setBool := func(name string, dst **bool) {
		if err != nil || !flags.Changed(name) {
			return
		}
		var v bool
		if v, err = flags.GetBool(name); err == nil {
			*dst = &v
		}
	}
	setBool("promote-longs", &cfg.Deserialize.PromoteLongs)
	setBool("promote-values", &cfg.Deserialize.PromoteValues)
	setBool("promote-buffers", &cfg.Deserialize.PromoteBuffers)
	setBool("bson-regexp", &cfg.Deserialize.BSONRegExp)
	setBool("validate-utf8", &cfg.Deserialize.ValidateUTF8)
	if err != nil {
		return err
	}

	if flags.Changed("skip-utf8") {
		names, err := flags.GetStringSlice("skip-utf8")
		if err != nil {
			return err
		}
		cfg.Deserialize.UTF8Fields = make(map[string]bool, len(names))
		for _, name := range names {
			cfg.Deserialize.UTF8Fields[name] = false
		}
	}
	if flags.Changed("log-level") {
		if cfg.LogLevel, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
		if cfg.Workers < 1 {
			return errors.Errorf("--workers must be positive, got %d", cfg.Workers)
		}
	}
	if flags.Changed("color") {
		if cfg.Color, err = flags.GetBool("color"); err != nil {
			return err
		}
	}
	return nil
}

// options converts the deserialize table into library options.
func (c DeserializeConfig) options() *bsonoptions.DeserializeOptions {
	opts := bsonoptions.Deserialize()
	if c.PromoteLongs != nil {
		opts.SetPromoteLongs(*c.PromoteLongs)
	}
	if c.PromoteValues != nil {
		opts.SetPromoteValues(*c.PromoteValues)
	}
	if c.PromoteBuffers != nil {
		opts.SetPromoteBuffers(*c.PromoteBuffers)
	}
	if c.BSONRegExp != nil {
		opts.SetBSONRegExp(*c.BSONRegExp)
	}
	if c.ValidateUTF8 != nil || c.UTF8Fields != nil {
		v := bsonoptions.Validation()
		if c.ValidateUTF8 != nil {
			v.SetUTF8(*c.ValidateUTF8)
		}
		if c.UTF8Fields != nil {
			v.SetUTF8Fields(c.UTF8Fields)
		}
		opts.SetValidation(v)
	}
	return opts
}
