// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowrail/shadowrail/pkg/types"
)

func TestCollectFindings_FlattensAllMethodSlots(t *testing.T) {
	doc := &types.OpenAPI{
		Paths: map[string]types.PathItem{
			"/posts": {
				Get:  &types.Operation{XAuthStatus: "UNPROTECTED", XController: "PostsController", XAction: "index"},
				Post: &types.Operation{XAuthStatus: "authenticated", XController: "PostsController", XAction: "create"},
			},
			"/sidekiq": {
				Any: &types.Operation{XAuthStatus: "unknown", XController: "Sidekiq::Web", XAction: "(engine)"},
			},
		},
	}

	findings := collectFindings(doc)
	require.Len(t, findings, 3)

	byMethod := map[string]finding{}
	for _, f := range findings {
		byMethod[f.Method+" "+f.Path] = f
	}

	index := byMethod["GET /posts"]
	assert.Equal(t, "UNPROTECTED", index.AuthStatus)
	assert.Equal(t, "PostsController", index.Controller)

	engine := byMethod["* /sidekiq"]
	assert.Equal(t, "unknown", engine.AuthStatus)
	assert.Equal(t, "Sidekiq::Web", engine.Controller)
}

func TestCollectFindings_EmptyDocument(t *testing.T) {
	doc := &types.OpenAPI{Paths: map[string]types.PathItem{}}
	assert.Empty(t, collectFindings(doc))
}

func TestDiffCommand_TwoNonExistentFiles(t *testing.T) {
	err := runDiff(diffCmd, []string{"nonexistent1.yaml", "nonexistent2.yaml"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read spec file")
}

func TestDiffCommand_TooManyArguments(t *testing.T) {
	err := runDiff(diffCmd, []string{"a.yaml", "b.yaml", "c.yaml"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many arguments")
}

func TestAuditExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitCodeClean)
	assert.Equal(t, 1, ExitCodeFindings)
	assert.Equal(t, 2, ExitCodeAuditError)
}

func TestDiffExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitCodeDiffClean)
	assert.Equal(t, 1, ExitCodeDiffRegressed)
	assert.Equal(t, 2, ExitCodeDiffError)
}
