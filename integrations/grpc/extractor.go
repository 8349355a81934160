package grpc

import (
	"context"
	"strings"

	"google.golang.org/grpc/metadata"

	"github.com/authware/authware"
)

// DefaultAPIKeyMetadataKey is the incoming metadata key consulted for
// API key credentials. gRPC normalizes metadata keys to lowercase.
const DefaultAPIKeyMetadataKey = "x-api-key"

// CredentialExtractor extracts a credential from incoming gRPC
// metadata. A zero Credential with a nil error means the request
// carries no credential.
type CredentialExtractor func(ctx context.Context) (authware.Credential, error)

// MetadataCredentialExtractor extracts a bearer token from the
// "authorization" metadata key or an API key from the given metadata
// key. When both are present the bearer token wins and the API key is
// ignored.
func MetadataCredentialExtractor(apiKeyMetadataKey string) CredentialExtractor {
	return func(ctx context.Context) (authware.Credential, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return authware.Credential{}, nil
		}

		if values := md.Get("authorization"); len(values) > 0 {
			if len(values) > 1 {
				return authware.Credential{}, authware.NewFailure(
					authware.KindMalformedCredential,
					"multiple authorization metadata entries are not allowed",
				)
			}
			return parseBearer(values[0])
		}

		if values := md.Get(apiKeyMetadataKey); len(values) > 0 {
			if len(values) > 1 {
				return authware.Credential{}, authware.NewFailure(
					authware.KindMalformedCredential,
					"multiple API key metadata entries are not allowed",
				)
			}
			return authware.Credential{Kind: authware.CredentialKindAPIKey, Token: values[0]}, nil
		}

		return authware.Credential{}, nil
	}
}

func parseBearer(value string) (authware.Credential, error) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return authware.Credential{}, authware.NewFailure(
			authware.KindMalformedCredential,
			"invalid authorization metadata format, expected: Bearer <token>",
		)
	}
	if !strings.EqualFold(parts[0], "bearer") {
		return authware.Credential{}, authware.NewFailure(
			authware.KindMalformedCredential,
			"unsupported authorization scheme, expected: Bearer",
		)
	}
	return authware.Credential{Kind: authware.CredentialKindBearer, Token: parts[1]}, nil
}
