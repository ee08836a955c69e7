// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// capweb provides a collection of related packages which log users of a
// net/http application in with Auth0 and protect routes with the resulting
// session.
//
// See README.md
package capweb
