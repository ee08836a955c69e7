// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// config loads the configuration of a capweb application from an optional
// YAML file and the environment.
//
// Example config.yaml:
//
//	auth0:
//	  domain: example.auth0.com
//	  client_id: your_client_id
//	  signing_algorithm: RS256
//	  public_key_path: /etc/capweb/auth0.pem
//	  use_pkce: true
//	session:
//	  ttl: 8h
//	  secure: true
//	server:
//	  addr: ":8080"
//
// The client secret is best provided by the environment: AUTH0_CLIENT_SECRET.
package config
