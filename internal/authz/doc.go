// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

/*
Package authz provides path-based authorization using Casbin.

The model is RBAC with role inheritance. Objects are request paths matched
with keyMatch2, so policies may use ":param" segments and a trailing "/*".
Actions are derived from the HTTP method:

	GET, HEAD, OPTIONS -> read
	POST, PUT, PATCH   -> write
	DELETE             -> delete

The embedded policy (policy.csv) grants every authenticated subject the
"user" role routes and reserves /api/v1/admin/* and POST
/api/v1/notifications for "admin". Admin inherits user:

	p, admin, /api/v1/admin/*, *
	g, admin, user

Setting security.authz_policy_path loads a policy file instead.

Decisions are cached per (subject, path, action) for CacheTTL; any role
change clears the cache. Allow and deny counts are exported as
tablemap_authz_decisions_total.

Usage Example:

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
	    PolicyPath: cfg.Security.AuthzPolicyPath,
	    CacheTTL:   authz.DefaultCacheTTL,
	})
	if err != nil {
	    return err
	}
	defer enforcer.Close()

	r.Group(func(r chi.Router) {
	    r.Use(authMW.Authenticate)
	    r.Use(authz.NewMiddleware(enforcer).AuthorizeRequest)
	    r.Post("/api/v1/admin/restaurants", h.AdminUpsertRestaurant)
	})
*/
package authz
