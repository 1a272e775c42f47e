package auth

import (
	"fmt"
	"strings"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Authority strings granted by the default plan table.
const (
	AuthorityUser       = "ROLE_USER"
	AuthorityPro        = "ROLE_PRO"
	AuthorityEnterprise = "ROLE_ENTERPRISE"
)

// AuthorityMapper derives the authorities granted by a subscription plan.
type AuthorityMapper interface {
	Authorities(plan domain.Plan) []string
}

// AuthorityTable is a static plan -> authorities mapping. Plans missing from the table
// receive Default.
type AuthorityTable struct {
	Plans   map[domain.Plan][]string
	Default []string
}

// DefaultAuthorityTable returns the built-in mapping.
func DefaultAuthorityTable() AuthorityTable {
	return AuthorityTable{
		Plans: map[domain.Plan][]string{
			domain.PlanFree:       {AuthorityUser},
			domain.PlanPro:        {AuthorityUser, AuthorityPro},
			domain.PlanEnterprise: {AuthorityUser, AuthorityPro, AuthorityEnterprise},
		},
		Default: []string{AuthorityUser},
	}
}

// Authorities returns a copy of the authorities for plan.
func (t AuthorityTable) Authorities(plan domain.Plan) []string {
	authorities, ok := t.Plans[domain.Plan(strings.ToUpper(string(plan)))]
	if !ok {
		authorities = t.Default
	}
	out := make([]string, len(authorities))
	copy(out, authorities)
	return out
}

// ParseAuthorityTable reads a table of the form "FREE=ROLE_USER;PRO=ROLE_USER,ROLE_PRO".
// The special plan name "*" sets the default set. An empty value yields the default table.
func ParseAuthorityTable(value string) (AuthorityTable, error) {
	if strings.TrimSpace(value) == "" {
		return DefaultAuthorityTable(), nil
	}

	table := AuthorityTable{
		Plans:   make(map[domain.Plan][]string),
		Default: []string{AuthorityUser},
	}
	for _, entry := range strings.Split(value, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		plan, list, ok := strings.Cut(entry, "=")
		plan = strings.ToUpper(strings.TrimSpace(plan))
		if !ok || plan == "" {
			return AuthorityTable{}, &ConfigError{Field: "AUTH_PLAN_AUTHORITIES", Reason: fmt.Sprintf("malformed entry %q", entry)}
		}
		authorities := splitList(list)
		if plan == "*" {
			table.Default = authorities
			continue
		}
		table.Plans[domain.Plan(plan)] = authorities
	}
	return table, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
