// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/hashicorp/capweb/auth0"
	"github.com/hashicorp/capweb/callback"
	"github.com/hashicorp/capweb/filter"
	"github.com/hashicorp/capweb/login"
	"github.com/hashicorp/capweb/session"
	"github.com/hashicorp/go-hclog"
)

const (
	homePath   = "/"
	loginPath  = "/login"
	logoutPath = "/logout"
	portalPath = "/portal/home"
)

var (
	homeTmpl = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html><head><title>Auth0 sample</title></head>
<body>
{{if .}}<p>Signed in as {{.Name}}. <a href="/portal/home">Portal</a> <a href="/logout">Log out</a></p>
{{else}}<p><a href="/login">Log in</a></p>{{end}}
</body></html>
`))

	portalTmpl = template.Must(template.New("portal").Parse(`<!DOCTYPE html>
<html><head><title>Portal</title></head>
<body>
{{if .Picture}}<img src="{{.Picture}}" alt="" width="64">{{end}}
<h1>Welcome {{.Nickname}}</h1>
<dl>
<dt>Name</dt><dd id="name">{{.Name}}</dd>
<dt>Email</dt><dd id="email">{{.Email}}{{if .EmailVerified}} (verified){{end}}</dd>
<dt>User id</dt><dd id="user_id">{{.UserId}}</dd>
</dl>
<p><a href="/logout">Log out</a></p>
</body></html>
`))
)

// newRouter mounts the login, callback, logout and portal handlers.
func newRouter(cfg *auth0.Config, p *auth0.Provider, sm *session.Manager, logger hclog.Logger) (http.Handler, error) {
	const op = "newRouter"
	loginHandler, err := login.Handler(p, sm, append(login.ConfigOptions(cfg), login.WithLogger(logger.Named("login")))...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	callbackHandler, err := callback.Handler(p, sm, cfg, callback.WithLogger(logger.Named("callback")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logoutHandler, err := login.Logout(sm, cfg.OnLogoutRedirectTo, login.WithProviderLogout(p), login.WithLogger(logger.Named("logout")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	f, err := filter.New(cfg, sm, filter.WithLogger(logger.Named("filter")))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, loginHandler)
	mux.HandleFunc(cfg.LoginCallback, callbackHandler)
	mux.HandleFunc(logoutPath, logoutHandler)
	mux.HandleFunc(homePath, homeHandler(sm, logger))
	mux.HandleFunc(portalPath, portalHandler(logger))
	return f.Handler(mux), nil
}

func homeHandler(sm *session.Manager, logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != homePath {
			http.NotFound(w, req)
			return
		}
		s, err := sm.Load(req)
		if err != nil {
			logger.Error("unable to load session", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if err := homeTmpl.Execute(w, session.User(s)); err != nil {
			logger.Error("unable to render home", "error", err)
		}
	}
}

func portalHandler(logger hclog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		u, ok := filter.UserFromContext(req.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		if err := portalTmpl.Execute(w, u); err != nil {
			logger.Error("unable to render portal", "error", err)
		}
	}
}
