// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package jwt verifies the id_tokens handed out by Auth0 using a statically
configured key: either an HMAC client secret (HS256/384/512) or an RSA public
key read from a PEM file (RS256/384/512).

Example usage:

	key, err := jwt.NewHMACKey(os.Getenv("AUTH0_CLIENT_SECRET"), true)
	if err != nil {
		// handle error
	}
	v, err := jwt.NewVerifier(jwt.HS256, key, "https://example.auth0.com/", clientID)
	if err != nil {
		// handle error
	}
	claims, err := v.Verify(ctx, idToken)
	if err != nil {
		var verr *jwt.VerificationError
		if errors.As(err, &verr) && verr.Reason == jwt.ReasonExpired {
			// ask the user to login again
		}
	}
*/
package jwt
