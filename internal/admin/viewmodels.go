package admin

import (
	"strconv"

	"signet/internal/events"
	"signet/internal/providers"
)

// overviewView is everything overview.html renders. Values are preformatted
// strings so the template stays free of logic.
type overviewView struct {
	Message string

	Version       string
	VersionLatest string
	// UpdateAvailable flags that VersionLatest is ahead of Version.
	UpdateAvailable bool

	PolicyCount   string
	UserCount     string
	ProviderCount string

	PoliciesWithoutBinding string
	CachedPolicies         string
	CachedFlows            string

	MostUsedApplications        []applicationUsageRow
	ProvidersWithoutApplication []providerRow
}

// applicationUsageRow is one line of the most-used-applications table.
type applicationUsageRow struct {
	Name        string
	TotalLogins string
	UniqueUsers string
}

// providerRow is one line of the orphaned-providers list.
type providerRow struct {
	Name string
	Kind string
}

// loginView backs login.html.
type loginView struct {
	Error string
}

// confirmView backs confirm.html, the cache-clear confirmation form.
type confirmView struct {
	Title      string
	Prompt     string
	ActionPath string
	CancelPath string
}

func buildUsageRows(usage []events.ApplicationUsage) []applicationUsageRow {
	rows := make([]applicationUsageRow, 0, len(usage))
	for _, entry := range usage {
		rows = append(rows, applicationUsageRow{
			Name:        entry.Application,
			TotalLogins: strconv.Itoa(entry.TotalLogins),
			UniqueUsers: strconv.Itoa(entry.UniqueUsers),
		})
	}
	return rows
}

func buildProviderRows(orphaned []providers.Provider) []providerRow {
	rows := make([]providerRow, 0, len(orphaned))
	for _, provider := range orphaned {
		rows = append(rows, providerRow{
			Name: provider.Name,
			Kind: string(provider.Kind),
		})
	}
	return rows
}
