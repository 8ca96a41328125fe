package cimflat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connector opens a connection pool for the PostgreSQL sink.
type Connector interface {
	Connect(ctx context.Context) (*pgxpool.Pool, error)
}

// ConnectionConfig holds parsed PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance) used with AuthMethodGoogleIAM.
	GoogleInstance string

	// Azure Entra ID parameters. With all three set a service principal is
	// used, otherwise the default Azure credential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

var authMethodNames = map[string]AuthMethod{
	"":            AuthMethodStandard,
	"standard":    AuthMethodStandard,
	"aws-iam":     AuthMethodAWSIAM,
	"google-iam":  AuthMethodGoogleIAM,
	"azure-entra": AuthMethodAzureEntraID,
}

// ParseAuthMethod maps a configuration name to an AuthMethod.
// Names are case-insensitive; the empty name selects AuthMethodStandard.
func ParseAuthMethod(name string) (AuthMethod, error) {
	m, ok := authMethodNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return AuthMethodStandard, fmt.Errorf("unknown auth method %q (want standard, aws-iam, google-iam or azure-entra): %w", name, ErrInvalidConfig)
	}
	return m, nil
}

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
