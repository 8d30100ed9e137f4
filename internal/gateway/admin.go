package gateway

import (
	"context"
	"strings"
)

// SetOfficerActiveRequest activates or deactivates an officer.
type SetOfficerActiveRequest struct {
	SessionToken string
	OfficerID    string
	Active       bool
}

// SetOfficerActive changes an officer's active flag. Only roles with ManageOfficers may call it.
// Deactivation also revokes the officer's sessions; session validation rejects an inactive officer on the
// very next request regardless.
func (g *Gateway) SetOfficerActive(ctx context.Context, req SetOfficerActiveRequest) error {
	ident, err := g.authenticate(ctx, req.SessionToken)
	if err != nil {
		return err
	}
	decision, err := g.policy.Evaluate(ctx, ident.Role)
	if err != nil {
		g.log.Error().Err(err).Msg("policy evaluation for officer status")
		return newError(KindInternal, msgInternal, false)
	}
	if !decision.ManageOfficers {
		return newError(KindPermissionDenied, "only administrators can change officer status", true)
	}
	target := strings.TrimSpace(req.OfficerID)
	if target == "" {
		return newError(KindInvalidArgument, "officer id is required", false)
	}
	if target == ident.OfficerID && !req.Active {
		return newError(KindInvalidArgument, "administrators cannot deactivate themselves", false)
	}

	found, err := g.officers.SetActive(ctx, target, req.Active)
	if err != nil {
		g.log.Error().Err(err).Str("officer_id", target).Msg("set officer active")
		return newError(KindInternal, msgInternal, false)
	}
	if !found {
		return newError(KindNotFound, "officer not found", false)
	}
	if !req.Active {
		if err := g.sessions.RevokeAll(ctx, target); err != nil {
			// The officer is already inactive, which Validate enforces on its own.
			g.log.Warn().Err(err).Str("officer_id", target).Msg("revoke sessions after deactivation")
		}
	}
	g.log.Info().
		Str("admin_id", ident.OfficerID).
		Str("officer_id", target).
		Bool("active", req.Active).
		Msg("officer status changed")
	return nil
}

// Logout invalidates the caller's session. Unknown or already invalid tokens succeed.
func (g *Gateway) Logout(ctx context.Context, token string) error {
	if err := g.sessions.Logout(ctx, token); err != nil {
		g.log.Error().Err(err).Msg("logout")
		return newError(KindInternal, msgInternal, false)
	}
	return nil
}
