/* Copyright (C) 2019, 2020, 2021, 2022, 2023, 2024, 2025 Dnote contributors
 *
 * This file is part of QRepair.
 *
 * QRepair is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * QRepair is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with QRepair.  If not, see <https://www.gnu.org/licenses/>.
 */

package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/qrepair/qrepair/pkg/assert"
	"github.com/qrepair/qrepair/pkg/cli/config"
	"github.com/qrepair/qrepair/pkg/cli/context"
)

func testPaths(t *testing.T) context.Paths {
	tmpDir := t.TempDir()

	return context.Paths{
		Home:   tmpDir,
		Config: filepath.Join(tmpDir, "config"),
		Cache:  filepath.Join(tmpDir, "cache"),
	}
}

func TestInitCtx_newConfig(t *testing.T) {
	t.Setenv(envAPIEndpoint, "")
	t.Setenv("EDITOR", "nano")
	paths := testPaths(t)

	ctx, err := initCtx(paths, "test-version", "")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, ctx.APIEndpoint, DefaultAPIEndpoint, "endpoint mismatch")
	assert.Equal(t, ctx.Editor, "nano", "editor mismatch")
	assert.Equal(t, ctx.Version, "test-version", "version mismatch")
	assert.Equal(t, ctx.SessionKey, "", "session key mismatch")
	assert.NotEqual(t, ctx.HTTPClient, nil, "http client should be set")

	_, statErr := os.Stat(config.GetPath(ctx))
	assert.Equal(t, statErr, nil, "config file should exist")
}

func TestInitCtx_existingConfig(t *testing.T) {
	t.Setenv(envAPIEndpoint, "")
	paths := testPaths(t)

	base := context.QRepairCtx{Paths: paths}
	if err := context.InitQRepairDirs(paths); err != nil {
		t.Fatal(errors.Wrap(err, "creating dirs"))
	}
	if err := config.Write(base, config.Config{Editor: "vim", APIEndpoint: "https://officina.example.com/api", SessionKey: "signed"}); err != nil {
		t.Fatal(errors.Wrap(err, "writing config"))
	}

	ctx, err := initCtx(paths, "test-version", "")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	assert.Equal(t, ctx.APIEndpoint, "https://officina.example.com/api", "endpoint mismatch")
	assert.Equal(t, ctx.SessionKey, "signed", "session key mismatch")
	assert.Equal(t, ctx.Editor, "vim", "editor mismatch")
}

func TestInitCtx_APIEndpointChange(t *testing.T) {
	t.Setenv(envAPIEndpoint, "")
	paths := testPaths(t)

	endpoint1 := "http://127.0.0.1:3001/api"
	ctx, err := initCtx(paths, "test-version", endpoint1)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing"))
	}
	assert.Equal(t, ctx.APIEndpoint, endpoint1, "should use endpoint1 API endpoint")

	endpoint2 := "http://127.0.0.1:3002/api"
	ctx2, err := initCtx(paths, "test-version", endpoint2)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing with override"))
	}
	assert.Equal(t, ctx2.APIEndpoint, endpoint2, "should use endpoint2 API endpoint")

	// the config file keeps the endpoint it was created with
	cf, err := config.Read(ctx2)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading config"))
	}
	assert.Equal(t, cf.APIEndpoint, endpoint1, "config endpoint should not change")

	t.Setenv(envAPIEndpoint, "http://env.example.com/api")
	ctx3, err := initCtx(paths, "test-version", endpoint2)
	if err != nil {
		t.Fatal(errors.Wrap(err, "initializing with env"))
	}
	assert.Equal(t, ctx3.APIEndpoint, "http://env.example.com/api", "environment should take precedence")
}

func TestGetEditorCommand(t *testing.T) {
	testCases := []struct {
		editor   string
		expected string
	}{
		{editor: "code", expected: "code -n -w"},
		{editor: "subl", expected: "subl -n -w"},
		{editor: "vim", expected: "vim"},
		{editor: "", expected: "vi"},
		{editor: "unknown-editor", expected: "vi"},
	}

	for _, tc := range testCases {
		t.Run(tc.editor, func(t *testing.T) {
			t.Setenv("EDITOR", tc.editor)

			assert.Equal(t, getEditorCommand(), tc.expected, "editor mismatch")
		})
	}
}
