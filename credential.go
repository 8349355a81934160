package authware

// CredentialKind discriminates the shape of a raw credential.
type CredentialKind string

const (
	// CredentialKindAPIKey is an opaque API key taken from the configured
	// API-key header.
	CredentialKindAPIKey = CredentialKind("api-key")

	// CredentialKindBearer is a bearer token taken from the Authorization
	// header, expected to be a JWT.
	CredentialKindBearer = CredentialKind("bearer")
)

// Credential is the raw secret presented by a caller. It is transient:
// it exists only between extraction and validation and is never attached
// to the request context.
type Credential struct {
	Kind  CredentialKind
	Token string
}

// IsZero reports whether no credential was presented. A zero Credential
// is not an error by itself; the middleware decides whether the endpoint
// permits anonymous access.
func (c Credential) IsZero() bool {
	return c.Kind == "" && c.Token == ""
}
