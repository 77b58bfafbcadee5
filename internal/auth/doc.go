// Package auth provides user accounts, Argon2id password hashing, and
// JWT access tokens for the dashboard API.
//
// Roles form a strict ladder: viewer < operator < admin. Handlers check
// the ladder with Role.AtLeast rather than enumerating roles.
package auth
