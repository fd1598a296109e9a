// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides sign-in and session tokens for the REST API.

# OAuth

Participants sign in with an identity provider (Google by default) using
the authorization code flow:

	o := auth.NewOAuth(cfg, sessions.Secret())
	url, err := o.AuthURL(time.Now())
	email, err := o.Exchange(ctx, code, state, time.Now())

The state parameter is a random nonce and issue time authenticated with
HMAC-SHA256, so it can be verified without storing it. States expire after
StateTTL.

# Sessions

Sessions are HS256 JWTs whose subject is the participant id:

	token, expires, err := sessions.Issue(email, email, time.Now())
	claims, err := sessions.Validate(token)

Only HS256 is accepted when validating.
*/
package auth
