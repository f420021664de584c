// Package authz holds the access-control core: the static role matrix, the
// access resolver, and the permission gateway every mutating request passes
// through.
package authz

import "calltimes/internal/domain"

// Verdict is a role matrix cell.
type Verdict int

const (
	// VerdictDeny rejects the operation regardless of the target.
	VerdictDeny Verdict = iota
	// VerdictAllow permits the operation unconditionally.
	VerdictAllow
	// VerdictAllowIfOwner permits the operation only on targets the acting
	// identity owns.
	VerdictAllowIfOwner
)

// matrix is the full (role, operation) permission table. Roles and
// operations are closed sets, so the policy lives here and nowhere else;
// call sites must never re-decide it. Editors cannot invite: invite_others
// is owner-only.
var matrix = map[domain.Role]map[domain.Operation]Verdict{
	domain.RoleViewer: {
		domain.OpView:     VerdictAllow,
		domain.OpDownload: VerdictAllow,
	},
	domain.RoleEditor: {
		domain.OpView:         VerdictAllow,
		domain.OpDownload:     VerdictAllow,
		domain.OpUpload:       VerdictAllow,
		domain.OpCreateFolder: VerdictAllow,
		domain.OpRename:       VerdictAllowIfOwner,
		domain.OpDelete:       VerdictAllowIfOwner,
	},
	domain.RoleOwner: {
		domain.OpView:         VerdictAllow,
		domain.OpDownload:     VerdictAllow,
		domain.OpUpload:       VerdictAllow,
		domain.OpCreateFolder: VerdictAllow,
		domain.OpRename:       VerdictAllow,
		domain.OpDelete:       VerdictAllow,
		domain.OpInviteOthers: VerdictAllow,
	},
}

// Lookup returns the matrix verdict for the given role and operation.
// Unknown roles and operations deny; the table is total by construction.
func Lookup(role domain.Role, op domain.Operation) Verdict {
	ops, ok := matrix[role]
	if !ok {
		return VerdictDeny
	}
	return ops[op]
}
