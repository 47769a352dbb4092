package client

import (
	"context"
	"net/http"

	apperrors "seaview/pkg/errors"
)

const RoleAdmin = "admin"

// Principal is the authenticated caller as reported by the identity service.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanActOn reports whether the principal may mutate a reservation owned by
// ownerID: the owner themselves, or an admin.
func (p Principal) CanActOn(ownerID string) bool {
	return p.UserID == ownerID || p.IsAdmin()
}

// IdentityVerifier resolves a bearer token to a principal via the external
// identity service.
type IdentityVerifier interface {
	VerifyPrincipal(ctx context.Context, token string) (*Principal, error)
}

type IdentityClient struct {
	httpClient *HttpClient
}

func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *IdentityClient) VerifyPrincipal(ctx context.Context, token string) (*Principal, error) {
	resp, err := c.httpClient.POSTWithHeaders(ctx, "/api/auth/verify", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if err != nil {
		return nil, apperrors.Unavailable("identity service")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.Unauthorized("invalid or expired credentials")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Internal("identity service returned unexpected status", nil).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	var principal Principal
	if err := resp.DecodeJSON(&principal); err != nil {
		return nil, apperrors.Internal("could not decode identity response", err)
	}
	if principal.UserID == "" {
		return nil, apperrors.Unauthorized("identity service returned no principal")
	}

	return &principal, nil
}
