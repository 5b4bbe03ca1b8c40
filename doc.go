// Package identity issues and validates identities for the registration
// platform: user signup behind an approval gate, admin accounts created by
// the single super admin, and stateless bearer tokens.
//
// Tiers:
//   - Principals live in one table with a tier discriminator (USER, ADMIN,
//     SUPER_ADMIN). Self-registered users start unapproved and inactive;
//     admins are approved on creation by the super admin; the super admin is
//     bootstrapped exactly once.
//   - Email resolution probes the tiers in a fixed order (user, admin, super
//     admin) and stops at the first hit. A global unique index on email keeps
//     an address from ever appearing in two tiers.
//
// Approval workflow:
//   - ApprovalFlow moves user-tier accounts between Approved and Rejected.
//     Both decisions are repeatable in either direction; the transition runs
//     inside a store transaction so concurrent decisions serialize.
//
// Tokens:
//   - TokenService mints HS256 bearer tokens carrying the subject email and
//     principal id. Verification is a pure computation against the
//     process-wide signing secret; no session state is kept server side.
//
// All operations return tagged failures (validation, conflict,
// authentication, authorization, not-found, invalid-token, internal) as
// values; the transport layer maps them to status codes.
package identity
