// Package auth provides authentication and authorization for the API.
//
// Clients authenticate with a JWT bearer token obtained from the login
// endpoint. The token carries the user ID and role; middleware resolves it
// back to a live user record on every request, so deleted users and stale
// role claims are rejected.
//
// # Configuration
//
//	JWT_SECRET=<signing-secret>  # Required for production, random if empty
//	JWT_EXPIRY=720h              # Token lifetime (30 days default)
//	BCRYPT_COST=10               # bcrypt cost factor
//
// # Usage
//
//	svc := auth.NewService(db, cfg.Auth)
//	protected.Use(auth.RequireAuth(svc))
//	adminOnly.Use(auth.RequireAuth(svc), auth.RequireRole(entities.RoleAdmin))
//
// Extract the caller in handlers:
//
//	user := auth.CurrentUser(c)
package auth
