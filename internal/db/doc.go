// Package db opens PostgreSQL connection pools for the table sink.
//
// Connection strings are accepted as PostgreSQL URIs or in ADO.NET form.
// NewConnector picks the authentication flavour:
//
//	standard      user and password from the connection string
//	aws-iam       RDS IAM token signed with the default AWS credential chain
//	google-iam    Cloud SQL Go Connector with IAM database authentication
//	azure-entra   Entra ID token (service principal or default credential chain)
//
// Standard and token based connectors retry transient failures with the
// PostgreSQL classifier from internal/retry. Connection errors carry
// cimflat.ErrConnectionFailed and a short hint for the operator.
package db
