// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucsoft/web-bson-sub000/bson"
	"github.com/lucsoft/web-bson-sub000/bson/primitive"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDocuments(t *testing.T, name string, docs ...bson.D) string {
	t.Helper()
	var data []byte
	for _, doc := range docs {
		b, err := bson.Serialize(doc)
		require.NoError(t, err)
		data = append(data, b...)
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDump(t *testing.T) {
	first := writeDocuments(t, "first.bson", bson.D{{"hello", "world"}}, bson.D{{"n", 1.5}})
	second := writeDocuments(t, "second.bson", bson.D{{"id", primitive.ObjectID{0x01}}})

	out, err := run(t, "dump", first, second)
	require.NoError(t, err)

	assert.Contains(t, out, `"hello": "world"`)
	assert.Contains(t, out, `"n": 1.5`)
	assert.Contains(t, out, `"$oid": "010000000000000000000000"`)
	assert.Less(t, strings.Index(out, "first.bson: 2 documents"), strings.Index(out, "second.bson: 1 documents"))
	assert.Less(t, strings.Index(out, `"hello"`), strings.Index(out, `"$oid"`))
}

func TestCheck(t *testing.T) {
	good := writeDocuments(t, "good.bson", bson.D{{"a", int32(1)}}, bson.D{{"b", "x"}})

	out, err := run(t, "check", good)
	require.NoError(t, err)
	assert.Equal(t, good+": 2 documents, 26 bytes\n", out)

	data, err := os.ReadFile(good)
	require.NoError(t, err)
	data[12+4] = 0x14
	bad := filepath.Join(t.TempDir(), "bad.bson")
	require.NoError(t, os.WriteFile(bad, data, 0o600))

	_, err = run(t, "check", good, bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, bson.ErrUnknownType), "got %v", err)
	assert.Contains(t, err.Error(), "offset 12")
}

func TestSize(t *testing.T) {
	testCases := []struct {
		name  string
		doc   bson.D
		flags []string
		want  string
	}{
		{"string", bson.D{{"hello", "world"}}, nil, "0\t22\t22\n"},
		{"int64 and double", bson.D{{"n", primitive.NewInt64(5)}, {"d", primitive.Double(2)}}, nil, "0\t27\t27\n"},
		{
			"old binary with promoted buffers",
			bson.D{{"b", primitive.Binary{Subtype: 0x02, Data: []byte{1}}}},
			[]string{"--promote-buffers"},
			"0\t18\t18\n",
		},
		{"regex options without a Go flag", bson.D{{"r", primitive.Regex{Pattern: "a", Options: "ix"}}}, nil, "0\t13\t13\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeDocuments(t, "sizes.bson", tc.doc)
			out, err := run(t, append(append([]string{"size"}, tc.flags...), path)...)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(out, tc.want), out)
		})
	}
}

func TestDecimal(t *testing.T) {
	out, err := run(t, "decimal", "--", "1.50", "-nan")
	require.NoError(t, err)
	assert.Equal(t,
		"1.50\t96000000000000000000000000003c30\n"+
			"NaN\t0000000000000000000000000000007c\n",
		out)

	_, err = run(t, "decimal", "abc")
	assert.True(t, errors.Is(err, primitive.ErrParseDecimal128), "got %v", err)
}

func TestLong(t *testing.T) {
	out, err := run(t, "long", "--radix", "16", "--", "-ff")
	require.NoError(t, err)
	assert.Equal(t, "-255\t-ff\t-11111111\n", out)

	out, err = run(t, "long", "13835058055282163712", "--unsigned")
	require.NoError(t, err)
	assert.Equal(t, "13835058055282163712\tc000000000000000\t11"+strings.Repeat("0", 62)+"\n", out)

	_, err = run(t, "long", "1", "--radix", "37")
	assert.True(t, errors.Is(err, primitive.ErrInvalidRadix), "got %v", err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "bsondump.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log-level = "debug"
workers = 2

[deserialize]
promote-values = false

[deserialize.utf8-fields]
raw = false
`), 0o600))

	cfg, err := loadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Workers)
	require.NotNil(t, cfg.Deserialize.PromoteValues)
	assert.False(t, *cfg.Deserialize.PromoteValues)
	assert.Nil(t, cfg.Deserialize.PromoteLongs)
	assert.Equal(t, map[string]bool{"raw": false}, cfg.Deserialize.UTF8Fields)

	opts := cfg.Deserialize.options()
	require.NotNil(t, opts.PromoteValues)
	assert.False(t, *opts.PromoteValues)
	assert.Nil(t, opts.PromoteLongs)
	require.NotNil(t, opts.Validation)
	assert.Equal(t, map[string]bool{"raw": false}, opts.Validation.UTF8Fields)

	path := writeDocuments(t, "typed.bson", bson.D{{"n", int32(3)}})
	out, err := run(t, "--config", cfgPath, "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"$numberInt": "3"`)

	out, err = run(t, "--config", cfgPath, "--promote-values=true", "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"n": 3`)
}

func TestConfigErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "workers.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 0\n"), 0o600))
	_, err = loadConfig(path)
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "decimal", "1")
	assert.Error(t, err)
}

func TestSkipUTF8Flag(t *testing.T) {
	var data []byte
	doc := []byte{0x13, 0x00, 0x00, 0x00, 0x02, 'r', 'a', 'w', 0x00, 0x03, 0x00, 0x00, 0x00, 0xFF, 'x', 0x00, 0x00}
	doc[0] = byte(len(doc))
	data = append(data, doc...)
	path := filepath.Join(t.TempDir(), "utf8.bson")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	_, err := run(t, "check", path)
	assert.True(t, errors.Is(err, bson.ErrInvalidUTF8), "got %v", err)

	_, err = run(t, "check", "--skip-utf8", "raw", path)
	assert.NoError(t, err)
}

func TestRender(t *testing.T) {
	doc := bson.D{
		{"i", int32(1)},
		{"f", 2.0},
		{"big", 1e300},
		{"d", primitive.Double(0)},
		{"bin", primitive.Binary{Subtype: 0x04, Data: []byte{0xAB}}},
		{"re", primitive.Regex{Pattern: "a", Options: "i"}},
		{"arr", bson.A{nil, true}},
		{"ref", primitive.DBRef{Collection: "c", ID: int32(1)}},
		{"min", primitive.MinKey{}},
	}
	got := string(appendDocument(nil, doc))
	assert.Equal(t, `{"i":1,"f":2.0,"big":1e+300,"d":{"$numberDouble":"0"},`+
		`"bin":{"$binary":{"base64":"qw==","subType":"04"}},`+
		`"re":{"$regularExpression":{"pattern":"a","options":"i"}},`+
		`"arr":[null,true],"ref":{"$ref":"c","$id":1},"min":{"$minKey":1}}`, got)
}
