package authware

// IdentityKind distinguishes how an identity was authenticated.
type IdentityKind string

const (
	// IdentityKindAPIKey marks an identity resolved from an API key record.
	IdentityKindAPIKey = IdentityKind("api-key")

	// IdentityKindJWTSubject marks an identity resolved from a JWT
	// subject claim.
	IdentityKindJWTSubject = IdentityKind("jwt-subject")
)

// Identity is the authenticated principal resolved from a credential.
// It is immutable once constructed and lives only for the duration of
// one request.
type Identity struct {
	// ID is the stable identifier of the principal: the key record's
	// identity for API keys, the subject claim for JWTs.
	ID string

	// Kind records the authentication path that produced this identity.
	Kind IdentityKind

	// Label is an optional display or account label.
	Label string
}
