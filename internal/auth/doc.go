// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package auth authenticates API and WebSocket callers with HS256 JWTs.

Tokens are issued by the account service that owns user identity; this
package only verifies them. The token subject is the user ID used by every
other package. Tokens are read from, in order:

  - Authorization: Bearer <token>
  - the "token" cookie
  - the "token" query parameter (WebSocket upgrades from browsers)

Key Components:

  - JWTManager: token generation (tests and tooling) and validation
  - Middleware: chi middleware storing an AuthSubject in the request context,
    granting RoleAdmin to configured admin users
  - SecurityHeaders: CSP, HSTS, X-Frame-Options and related headers

Usage Example:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	authMW := auth.NewMiddleware(jwtManager, cfg.Security.AdminUsers)

	r.Use(auth.SecurityHeaders)
	r.Group(func(r chi.Router) {
	    r.Use(authMW.Authenticate)
	    r.Get("/api/v1/recommendations", h.Recommendations)
	})

Rejected tokens are logged through logging.SecurityLogger with the user ID
and error text masked. Outcomes are counted in tablemap_auth_attempts_total.

Thread Safety:

JWTManager and Middleware are read-only after construction and safe for
concurrent use.
*/
package auth
