// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package routedsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowrail/shadowrail/internal/vfs"
	"github.com/shadowrail/shadowrail/pkg/types"
)

func findEndpoint(t *testing.T, recs []types.EndpointRecord, verb types.Verb, path string) types.EndpointRecord {
	t.Helper()
	for _, r := range recs {
		if r.Verb == verb && r.Path == path {
			return r
		}
	}
	require.Failf(t, "endpoint not found", "%s %s in %+v", verb, path, recs)
	return types.EndpointRecord{}
}

func TestEvaluate_ResourcesExpandsSevenActions(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": "Rails.application.routes.draw do\n  resources :posts\nend\n",
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 7)

	show := findEndpoint(t, recs, types.GET, "/posts/:id")
	assert.Equal(t, "PostsController", show.ControllerClass)
	assert.Equal(t, "show", show.Action)

	index := findEndpoint(t, recs, types.GET, "/posts")
	assert.Equal(t, "index", index.Action)

	create := findEndpoint(t, recs, types.POST, "/posts")
	assert.Equal(t, "create", create.Action)
}

func TestEvaluate_NestedNamespaceWithOnlyFilter(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": `Rails.application.routes.draw do
  namespace :api do
    namespace :v1 do
      resources :users, only: [:index, :show]
    end
  end
end
`,
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 2)

	index := findEndpoint(t, recs, types.GET, "/api/v1/users")
	assert.Equal(t, "Api::V1::UsersController", index.ControllerClass)
	assert.Equal(t, "index", index.Action)

	show := findEndpoint(t, recs, types.GET, "/api/v1/users/:id")
	assert.Equal(t, "show", show.Action)
}

func TestEvaluate_MountHashRocket(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": "Rails.application.routes.draw do\n  mount Sidekiq::Web => '/sidekiq'\nend\n",
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, types.AnyVerb, rec.Verb)
	assert.Equal(t, "/sidekiq", rec.Path)
	assert.Equal(t, "Sidekiq::Web", rec.ControllerClass)
	assert.True(t, rec.HasFlag(types.FlagEngineMount))
}

func TestEvaluate_ConditionalIfMarksFlag(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": `Rails.application.routes.draw do
  if Rails.env.development?
    get '/debug', to: 'debug#index'
  end
end
`,
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].HasFlag(types.FlagConditional))
	assert.Equal(t, "DebugController", recs[0].ControllerClass)
}

func TestEvaluate_MissingRoutesFileIsFatal(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, recs)
	require.Len(t, diags, 1)
	assert.Equal(t, types.SeverityFatal, diags[0].Severity)
}

func TestEvaluate_MemberAndCollectionBlocks(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": `Rails.application.routes.draw do
  resources :posts, only: [] do
    member do
      post :publish
    end
    collection do
      get :search
    end
  end
end
`,
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 2)

	publish := findEndpoint(t, recs, types.POST, "/posts/:id/publish")
	assert.Equal(t, "publish", publish.Action)
	assert.Equal(t, "PostsController", publish.ControllerClass)

	search := findEndpoint(t, recs, types.GET, "/posts/search")
	assert.Equal(t, "search", search.Action)
	assert.Equal(t, "PostsController", search.ControllerClass)
}

func TestEvaluate_RootRoute(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": "Rails.application.routes.draw do\n  root 'welcome#index'\nend\n",
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 1)
	assert.Equal(t, types.GET, recs[0].Verb)
	assert.Equal(t, "/", recs[0].Path)
	assert.Equal(t, "WelcomeController", recs[0].ControllerClass)
	assert.Equal(t, "index", recs[0].Action)
}

func TestEvaluate_ConcernsExpandInDeclarationOrder(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": `Rails.application.routes.draw do
  concern :commentable do
    get :comments
  end
  concern :taggable do
    get :tags
  end
  resources :posts, only: [], concerns: [:taggable, :commentable]
end
`,
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 2)
	assert.Equal(t, "/posts/tags", recs[0].Path)
	assert.Equal(t, "/posts/comments", recs[1].Path)
	assert.Equal(t, "PostsController", recs[0].ControllerClass)
}

func TestEvaluate_ScopeControllerDoesNotLeakIntoResources(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb": `Rails.application.routes.draw do
  scope controller: :pages do
    get :about
    resources :articles, only: [:index]
  end
end
`,
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 2)

	about := findEndpoint(t, recs, types.GET, "/about")
	assert.Equal(t, "PagesController", about.ControllerClass)
	assert.Equal(t, "about", about.Action)

	index := findEndpoint(t, recs, types.GET, "/articles")
	assert.Equal(t, "ArticlesController", index.ControllerClass)
}

func TestEvaluate_DrawFragment(t *testing.T) {
	fs := vfs.NewMemFS(map[string]string{
		"config/routes.rb":       "Rails.application.routes.draw do\n  draw :admin\nend\n",
		"config/routes/admin.rb": "namespace :admin do\n  resources :reports, only: [:index]\nend\n",
	})
	recs, diags := New(fs).Evaluate()
	assert.Empty(t, diags)
	require.Len(t, recs, 1)
	assert.Equal(t, "/admin/reports", recs[0].Path)
	assert.Equal(t, "Admin::ReportsController", recs[0].ControllerClass)
}
