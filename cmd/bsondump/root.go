// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	cfg        *Config
	log        *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{log: logrus.New()}

	cmd := &cobra.Command{
		Use:           "bsondump",
		Short:         "Inspect BSON documents, Decimal128 and Int64 values",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	a.log.SetOutput(cmd.ErrOrStderr())

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "TOML configuration file")
	flags.String("log-level", "info", "log level (panic, fatal, error, warn, info, debug, trace)")
	flags.Int("workers", 4, "files decoded concurrently")
	flags.Bool("color", false, "colorize dumped documents")
	flags.Bool("promote-longs", true, "decode int64 values that fit in 53 bits as integers")
	flags.Bool("promote-values", true, "decode int32, double and symbol values as Go primitives")
	flags.Bool("promote-buffers", false, "decode binary values as plain bytes")
	flags.Bool("bson-regexp", false, "decode regular expressions as BSON values instead of compiling them")
	flags.Bool("validate-utf8", true, "reject strings that are not UTF-8")
	flags.StringSlice("skip-utf8", nil, "field names whose strings are not validated")

	cmd.AddCommand(
		newDumpCommand(a),
		newCheckCommand(a),
		newSizeCommand(a),
		newDecimalCommand(a),
		newLongCommand(a),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.applyFlags(cmd.Flags()); err != nil {
		return err
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	a.log.SetLevel(level)
	a.log.SetOutput(cmd.ErrOrStderr())
	a.cfg = cfg
	a.log.WithFields(logrus.Fields{"config": a.configPath, "workers": cfg.Workers}).Debug("configuration loaded")
	return nil
}
