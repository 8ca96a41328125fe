package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived database passwords from a cloud identity service.
type TokenProvider interface {
	// GetToken returns the token and its expiry.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String describes the provider for logs. It never includes secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"
