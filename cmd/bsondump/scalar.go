// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/lucsoft/web-bson-sub000/bson/primitive"
)

func newDecimalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decimal STRING...",
		Short: "Print the canonical form and wire bytes of Decimal128 strings",
		Long: "Print the canonical form and wire bytes of Decimal128 strings.\n\n" +
			"Negative operands look like flags, so put them after --.",
		Example: "  bsondump decimal -- 1.50 -Infinity",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, s := range args {
				d, err := primitive.ParseDecimal128(s)
				if err != nil {
					return errors.WithMessagef(err, "%q", s)
				}
				a.log.WithField("input", s).Debug("parsed decimal")
				if _, err := fmt.Fprintf(w, "%s\t%s\n", d, hex.EncodeToString(d.Bytes())); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newLongCommand(a *app) *cobra.Command {
	var radix int
	var unsigned bool

	cmd := &cobra.Command{
		Use:   "long STRING...",
		Short: "Parse Int64 strings and print them in radix 10, 16 and 2",
		Long: "Parse Int64 strings and print them in radix 10, 16 and 2.\n\n" +
			"Negative operands look like flags, so put them after --.",
		Example: "  bsondump long --radix 16 -- -ff",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, s := range args {
				i, err := primitive.ParseInt64(s, unsigned, radix)
				if err != nil {
					return errors.WithMessagef(err, "%q", s)
				}
				a.log.WithField("input", s).Debug("parsed long")
				if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", i.Text(10), i.Text(16), i.Text(2)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&radix, "radix", 10, "radix of the input, between 2 and 36")
	cmd.Flags().BoolVar(&unsigned, "unsigned", false, "treat the values as unsigned")
	return cmd
}
