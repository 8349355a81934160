package authware

import (
	"net/http"
	"strings"
)

// CredentialExtractor is a function that takes a request as input and
// returns either a credential or an error. An error should only be
// returned if an attempt to specify a credential was found, but the
// information was somehow incorrectly formed. In the case where a
// credential is simply not present, this should not be treated as an
// error. A zero Credential should be returned in that case.
type CredentialExtractor func(r *http.Request) (Credential, error)

// HeaderCredentialExtractor returns a CredentialExtractor that recognizes
// the standard Authorization header with the Bearer scheme and the given
// API-key header. If both are present the bearer token takes precedence;
// the tie-break is deterministic so deployments can rely on it.
func HeaderCredentialExtractor(apiKeyHeader string) CredentialExtractor {
	return func(r *http.Request) (Credential, error) {
		cred, err := BearerCredentialExtractor(r)
		if err != nil || !cred.IsZero() {
			return cred, err
		}

		if key := r.Header.Get(apiKeyHeader); key != "" {
			return Credential{Kind: CredentialKindAPIKey, Token: key}, nil
		}

		return Credential{}, nil
	}
}

// BearerCredentialExtractor is a CredentialExtractor that takes a request
// and extracts the bearer token from the Authorization header. The scheme
// comparison is case-insensitive.
func BearerCredentialExtractor(r *http.Request) (Credential, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Credential{}, nil // No error, just no bearer token.
	}

	authHeaderParts := strings.Fields(authHeader)
	if len(authHeaderParts) != 2 || !strings.EqualFold(authHeaderParts[0], "bearer") {
		return Credential{}, NewFailure(
			KindMalformedCredential,
			"Authorization header format must be Bearer {token}",
		)
	}

	return Credential{Kind: CredentialKindBearer, Token: authHeaderParts[1]}, nil
}

// APIKeyCredentialExtractor builds a CredentialExtractor that takes a
// request and extracts the API key from the header with the passed in
// name. Header name matching is case-insensitive per net/http.
func APIKeyCredentialExtractor(headerName string) CredentialExtractor {
	return func(r *http.Request) (Credential, error) {
		key := r.Header.Get(headerName)
		if key == "" {
			return Credential{}, nil // No header, then no key, so no error.
		}

		return Credential{Kind: CredentialKindAPIKey, Token: key}, nil
	}
}

// MultiCredentialExtractor returns a CredentialExtractor that runs
// multiple CredentialExtractors and takes the first one that does not
// return a zero credential. If an extractor returns an error that error
// is immediately returned.
func MultiCredentialExtractor(extractors ...CredentialExtractor) CredentialExtractor {
	return func(r *http.Request) (Credential, error) {
		for _, ex := range extractors {
			cred, err := ex(r)
			if err != nil {
				return Credential{}, err
			}

			if !cred.IsZero() {
				return cred, nil
			}
		}
		return Credential{}, nil
	}
}
