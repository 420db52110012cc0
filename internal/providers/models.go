// Package providers holds authentication providers and the applications that
// front them. An application fronts at most one provider; a provider with no
// application is orphaned and surfaces on the dashboard.
package providers

import (
	"strings"
	"time"

	id "signet/pkg/domain"
	dErrors "signet/pkg/domain-errors"
)

// Kind classifies how a provider speaks to the outside world.
type Kind string

const (
	KindOAuth2 Kind = "oauth2"
	KindSAML   Kind = "saml"
	KindProxy  Kind = "proxy"
)

func (k Kind) valid() bool {
	switch k {
	case KindOAuth2, KindSAML, KindProxy:
		return true
	}
	return false
}

// Provider is a configured authentication provider.
type Provider struct {
	ID        id.ProviderID `json:"id"`
	Name      string        `json:"name"`
	Kind      Kind          `json:"kind"`
	CreatedAt time.Time     `json:"created_at"`
}

// Application is the user-facing entry that fronts a provider. ProviderID is
// nil for applications that merely link out.
type Application struct {
	ID         id.ApplicationID `json:"id"`
	Name       string           `json:"name"`
	Slug       string           `json:"slug"`
	ProviderID *id.ProviderID   `json:"provider_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// NewProvider validates and constructs a provider.
func NewProvider(name string, kind Kind) (*Provider, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "provider name cannot be empty")
	}
	if !kind.valid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown provider kind")
	}
	return &Provider{
		ID:        id.NewProviderID(),
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now(),
	}, nil
}

// NewApplication validates and constructs an application. providerID may be
// nil.
func NewApplication(name, slug string, providerID *id.ProviderID) (*Application, error) {
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "application name cannot be empty")
	}
	if slug == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "application slug cannot be empty")
	}
	return &Application{
		ID:         id.NewApplicationID(),
		Name:       name,
		Slug:       slug,
		ProviderID: providerID,
		CreatedAt:  time.Now(),
	}, nil
}
