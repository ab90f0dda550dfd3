// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"golang.org/x/sync/errgroup"

	"github.com/lucsoft/web-bson-sub000/bson"
	"github.com/lucsoft/web-bson-sub000/bson/bsonoptions"
)

// documentFunc is called for each document of a file with its offset and
// size.
type documentFunc func(w io.Writer, doc bson.D, offset, size int) error

func newDumpCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE...",
		Short: "Print every document of each file as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.cfg.Deserialize.options()
			return a.eachFile(cmd.Context(), cmd.OutOrStdout(), args, opts, func(w io.Writer, doc bson.D, _, _ int) error {
				out := pretty.Pretty(appendDocument(nil, doc))
				if a.cfg.Color {
					out = pretty.Color(out, nil)
				}
				_, err := w.Write(out)
				return err
			})
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate each file and count its documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eachFile(cmd.Context(), cmd.OutOrStdout(), args, a.cfg.Deserialize.options(), nil)
		},
	}
}

func newSizeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "size FILE...",
		Short: "Compare each document's stored size with its re-encoded size",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Promotion changes wire types, so documents are decoded as stored.
			opts := bsonoptions.MergeDeserializeOptions(
				a.cfg.Deserialize.options(),
				bsonoptions.Deserialize().
					SetPromoteValues(false).
					SetPromoteLongs(false).
					SetPromoteBuffers(false).
					SetBSONRegExp(true),
			)
			return a.eachFile(cmd.Context(), cmd.OutOrStdout(), args, opts, func(w io.Writer, doc bson.D, offset, size int) error {
				n, err := bson.CalculateObjectSize(doc, bsonoptions.Serialize().SetIgnoreUndefined(false))
				if err != nil {
					return errors.WithMessagef(err, "document at offset %d", offset)
				}
				_, err = fmt.Fprintf(w, "%d\t%d\t%d\n", offset, size, n)
				return err
			})
		},
	}
}

// eachFile decodes the files concurrently and writes their output in
// argument order, followed by a summary line per file.
func (a *app) eachFile(ctx context.Context, w io.Writer, paths []string, opts *bsonoptions.DeserializeOptions, fn documentFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]bytes.Buffer, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.walkFile(path, &results[i], opts, fn)
		})
	}
	err := g.Wait()

	for i := range results {
		if _, werr := results[i].WriteTo(w); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// walkFile decodes every document in path, calling fn for each, and ends
// with a summary line.
func (a *app) walkFile(path string, out *bytes.Buffer, opts *bsonoptions.DeserializeOptions, fn documentFunc) error {
	log := a.log.WithField("file", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	docs := make([]bson.D, 1)
	count := 0
	for offset := 0; offset < len(data); count++ {
		next, err := bson.DeserializeStream(data, offset, 1, docs, 0, opts)
		if err != nil {
			log.WithFields(logrus.Fields{"offset": offset, "document": count}).WithError(err).Warn("corrupt document")
			return errors.WithMessagef(err, "%s: offset %d", path, offset)
		}
		log.WithFields(logrus.Fields{"offset": offset, "document": count, "size": next - offset}).Trace("decoded document")
		if fn != nil {
			if err := fn(out, docs[0], offset, next-offset); err != nil {
				return errors.WithMessage(err, path)
			}
		}
		offset = next
	}

	log.WithField("documents", count).Debug("file decoded")
	_, err = fmt.Fprintf(out, "%s: %d documents, %d bytes\n", path, count, len(data))
	return err
}
