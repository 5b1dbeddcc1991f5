// Package directory defines the domain model shared by the directory cache
// and the read-through service: user principals, groups, and the interface
// of the directory-protocol client that is the source of truth for both.
package directory

import "context"

// Membership records one group a principal belongs to. The membership
// direction is captured only on the principal side so the group graph is
// never stored twice.
type Membership struct {
	GroupName         string `json:"group_name"`
	Description       string `json:"description,omitempty"`
	DistinguishedName string `json:"distinguished_name,omitempty"`
}

// Principal is a directory user account. Username is the stable identifier.
type Principal struct {
	Username          string       `json:"username"`
	DisplayName       string       `json:"display_name,omitempty"`
	GivenName         string       `json:"given_name,omitempty"`
	Surname           string       `json:"surname,omitempty"`
	Email             string       `json:"email,omitempty"`
	PrincipalName     string       `json:"principal_name,omitempty"`
	Phone             string       `json:"phone,omitempty"`
	Mobile            string       `json:"mobile,omitempty"`
	JobTitle          string       `json:"job_title,omitempty"`
	Department        string       `json:"department,omitempty"`
	Company           string       `json:"company,omitempty"`
	Office            string       `json:"office,omitempty"`
	Description       string       `json:"description,omitempty"`
	DistinguishedName string       `json:"distinguished_name,omitempty"`
	Enabled           bool         `json:"enabled"`
	Memberships       []Membership `json:"memberships"`
}

// Group is a directory group. Name is the stable identifier.
type Group struct {
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	DistinguishedName string `json:"distinguished_name,omitempty"`
}

// Client is the directory-protocol collaborator that produces authoritative
// listings. dsadmin has no opinion on how these are obtained (LDAP, a
// platform API, ...), only on how they are cached and expired.
type Client interface {
	// ListPrincipals returns every user account in the directory.
	ListPrincipals(ctx context.Context) ([]Principal, error)

	// ListGroups returns every group in the directory.
	ListGroups(ctx context.Context) ([]Group, error)
}
