// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package rast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleResourcesCall(t *testing.T) {
	src := "Rails.application.routes.draw do\n  resources :posts\nend\n"
	nodes, diags := Parse("config/routes.rb", src)
	require.Empty(t, diags)
	require.Len(t, nodes, 1)

	drawCall := nodes[0]
	require.Equal(t, KindCall, drawCall.Kind)
	require.Equal(t, "draw", drawCall.Method)
	require.NotNil(t, drawCall.Block)
	require.Len(t, drawCall.Block.Body, 1)

	resources := drawCall.Block.Body[0]
	assert.Equal(t, KindCall, resources.Kind)
	assert.Equal(t, "resources", resources.Method)
	require.Len(t, resources.Args, 1)
	assert.Equal(t, KindSymbol, resources.Args[0].Kind)
	assert.Equal(t, "posts", resources.Args[0].Name)
}

func TestParse_NamespaceWithKeywordArgs(t *testing.T) {
	src := `get '/login', to: 'sessions#new', as: :login
`
	nodes, diags := Parse("routes.rb", src)
	require.Empty(t, diags)
	require.Len(t, nodes, 1)
	call := nodes[0]
	assert.Equal(t, "get", call.Method)
	require.Len(t, call.Args, 1)
	assert.Equal(t, KindStringLit, call.Args[0].Kind)
	assert.Equal(t, "/login", call.Args[0].Str)

	to, ok := call.Kw("to")
	require.True(t, ok)
	assert.Equal(t, "sessions#new", to.Str)

	as, ok := call.Kw("as")
	require.True(t, ok)
	assert.Equal(t, "login", as.Name)
}

func TestParse_ClassWithBeforeAction(t *testing.T) {
	src := `class PostsController < ApplicationController
  before_action :set_post, only: [:show, :update]
  skip_before_action :authenticate_user!, only: [:index]

  def index
    render json: @posts
  end
end
`
	nodes, diags := Parse("posts_controller.rb", src)
	require.Empty(t, diags)
	require.Len(t, nodes, 1)

	class := nodes[0]
	require.Equal(t, KindClassDef, class.Kind)
	assert.Equal(t, "PostsController", class.ClassName)
	assert.Equal(t, "ApplicationController", class.ParentName)
	require.Len(t, class.Body, 3)

	before := class.Body[0]
	assert.Equal(t, "before_action", before.Method)
	require.Len(t, before.Args, 1)
	assert.Equal(t, "set_post", before.Args[0].Name)
	only, ok := before.Kw("only")
	require.True(t, ok)
	require.Len(t, only.Items, 2)
	assert.Equal(t, "show", only.Items[0].Name)

	def := class.Body[2]
	assert.Equal(t, KindMethodDef, def.Kind)
	assert.Equal(t, "index", def.MethodName)
}

func TestParse_IfStaticTrue(t *testing.T) {
	src := "if true\n  get '/a', to: 'a#a'\nend\n"
	nodes, _ := Parse("routes.rb", src)
	require.Len(t, nodes, 1)
	ifNode := nodes[0]
	require.Equal(t, KindIfExpr, ifNode.Kind)
	require.NotNil(t, ifNode.Cond)
	assert.Equal(t, "true", ifNode.Cond.Name)
	require.Len(t, ifNode.Then, 1)
}

func TestParse_IfElseNonStatic(t *testing.T) {
	src := "if Rails.env.development?\n  get '/debug', to: 'debug#index'\nelse\n  get '/prod', to: 'prod#index'\nend\n"
	nodes, _ := Parse("routes.rb", src)
	require.Len(t, nodes, 1)
	ifNode := nodes[0]
	require.Equal(t, KindIfExpr, ifNode.Kind)
	require.NotNil(t, ifNode.Cond)
	assert.NotEqual(t, "true", ifNode.Cond.Name)
	require.Len(t, ifNode.Then, 1)
	require.Len(t, ifNode.Else, 1)
}

func TestParse_MountHashRocket(t *testing.T) {
	src := "mount Sidekiq::Web => '/sidekiq'\n"
	nodes, diags := Parse("routes.rb", src)
	require.Empty(t, diags)
	require.Len(t, nodes, 1)
	mount := nodes[0]
	assert.Equal(t, "mount", mount.Method)
	require.Len(t, mount.Args, 1)
	require.Equal(t, KindHashLit, mount.Args[0].Kind)
	require.Len(t, mount.Args[0].Pairs, 1)
	assert.Equal(t, "/sidekiq", mount.Args[0].Pairs[0].Value.Str)
}

func TestParse_UnknownFallbackDoesNotAbortFile(t *testing.T) {
	src := "resources :posts\n%&*garbage line\nresources :comments\n"
	nodes, diags := Parse("routes.rb", src)
	require.Len(t, nodes, 3)
	assert.Equal(t, KindCall, nodes[0].Kind)
	assert.Equal(t, KindUnknown, nodes[1].Kind)
	assert.Equal(t, KindCall, nodes[2].Kind)
	require.NotEmpty(t, diags)
}

func TestParse_EmptyFileYieldsWarningDiagnostic(t *testing.T) {
	nodes, diags := Parse("empty.rb", "\n\n")
	assert.Empty(t, nodes)
	require.Len(t, diags, 1)
}

func TestParse_HeredocDoesNotDesyncParsing(t *testing.T) {
	src := "X = <<~SQL\n  select * from users\nSQL\nresources :posts\n"
	nodes, _ := Parse("routes.rb", src)
	require.Len(t, nodes, 2)
	assert.Equal(t, KindAssign, nodes[0].Kind)
	assert.Equal(t, KindCall, nodes[1].Kind)
	assert.Equal(t, "resources", nodes[1].Method)
}

func TestParse_NestedResourcesBlock(t *testing.T) {
	src := `namespace :api do
  namespace :v1 do
    resources :users, only: [:index, :show]
  end
end
`
	nodes, diags := Parse("routes.rb", src)
	require.Empty(t, diags)
	require.Len(t, nodes, 1)
	api := nodes[0]
	assert.Equal(t, "namespace", api.Method)
	require.Len(t, api.Args, 1)
	assert.Equal(t, "api", api.Args[0].Name)
	require.NotNil(t, api.Block)
	require.Len(t, api.Block.Body, 1)

	v1 := api.Block.Body[0]
	assert.Equal(t, "namespace", v1.Method)
	require.NotNil(t, v1.Block)
	require.Len(t, v1.Block.Body, 1)

	users := v1.Block.Body[0]
	assert.Equal(t, "resources", users.Method)
	only, ok := users.Kw("only")
	require.True(t, ok)
	require.Len(t, only.Items, 2)
}
