/*
Package authware provides HTTP middleware for API key and JWT bearer
authentication with scope-based authorization.

The middleware extracts a credential from the request headers, dispatches
it to the validator matching its shape (opaque API key or JWT bearer
token), enforces the endpoint's required scopes, and attaches the
resolved identity to the request context. Every failure mode maps to a
precise, client-facing error; rejected requests never reach application
logic.

# Quick Start

	registry := scope.NewRegistry("read:orders", "write:orders")

	jwtValidator, err := validator.New(
	    validator.WithKeyFunc(jwks.StaticKeyFunc(signingKey)),
	    validator.WithAlgorithm(validator.RS256),
	    validator.WithIssuer("https://issuer.example.com/"),
	    validator.WithAudience("orders-api"),
	    validator.WithScopeRegistry(registry),
	)
	if err != nil {
	    log.Fatal(err)
	}

	keyValidator, err := apikey.New(
	    apikey.WithStore(store),
	    apikey.WithScopeRegistry(registry),
	)
	if err != nil {
	    log.Fatal(err)
	}

	m, err := authware.New(
	    authware.WithScopeRegistry(registry),
	    authware.WithBearerValidator(jwtValidator),
	    authware.WithAPIKeyValidator(keyValidator),
	)
	if err != nil {
	    log.Fatal(err)
	}

	protect := m.MustProtect(authware.Policy{
	    RequiredScopes: []scope.Scope{"read:orders"},
	})
	http.Handle("/orders", protect(ordersHandler))

# Accessing the identity

	func ordersHandler(w http.ResponseWriter, r *http.Request) {
	    ac, err := authware.GetAuthContext(r.Context())
	    if err != nil {
	        http.Error(w, "unauthorized", http.StatusUnauthorized)
	        return
	    }
	    fmt.Fprintf(w, "hello, %s", ac.Identity.ID)
	}

An AuthContext is present on the request context if and only if
authentication succeeded. Endpoints with AllowAnonymous set let
credential-less requests through without one.

# Errors

Rejections carry a *Failure with a stable Kind. The DefaultErrorHandler
maps kinds to statuses (401 for missing/invalid/expired credentials, 400
for malformed ones, 403 for insufficient scope, 503 when an external
store or key source is unreachable) and writes a JSON body of the form

	{"kind":"insufficient_scope","detail":"missing required scopes: write:orders"}

upstream_unavailable is the only kind a caller may legitimately retry.

# Thread safety

The Middleware instance is immutable after creation and safe for
concurrent use. Validation configuration (signing key material, key
store handles) is fixed at construction; key rotation happens inside the
jwks caching provider, which swaps key sets atomically.
*/
package authware
