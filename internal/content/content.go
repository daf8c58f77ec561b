// ABOUTME: Static collaborator data for the app: quick suggestions, profile, downloads.
// ABOUTME: Loaded once from an embedded YAML document.

package content

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var raw []byte

// DownloadStatus is the install state of an offline pack.
type DownloadStatus string

// Download states.
const (
	StatusAvailable   DownloadStatus = "available"
	StatusDownloading DownloadStatus = "downloading"
	StatusInstalled   DownloadStatus = "installed"
)

// Profile is the traveller identity shown on the profile screen.
type Profile struct {
	Name     string `yaml:"name" json:"name"`
	Initials string `yaml:"initials" json:"initials"`
	Email    string `yaml:"email" json:"email"`
}

// EmergencyContact is the helpline card.
type EmergencyContact struct {
	Title       string `yaml:"title" json:"title"`
	Number      string `yaml:"number" json:"number"`
	Description string `yaml:"description" json:"description"`
}

// ModelStatus is display text only. No model is loaded or run.
type ModelStatus struct {
	Name        string `yaml:"name" json:"name"`
	State       string `yaml:"state" json:"state"`
	LastUpdated string `yaml:"last_updated" json:"last_updated"`
	Size        string `yaml:"size" json:"size"`
	Offline     bool   `yaml:"offline" json:"offline"`
}

// Download is an offline content pack.
type Download struct {
	ID          string         `yaml:"id" json:"id"`
	Name        string         `yaml:"name" json:"name"`
	Size        string         `yaml:"size" json:"size"`
	Description string         `yaml:"description" json:"description"`
	Status      DownloadStatus `yaml:"status" json:"status"`
	Progress    int            `yaml:"progress" json:"progress"`
}

// Catalog is the full static document.
type Catalog struct {
	Suggestions      []string         `yaml:"suggestions" json:"suggestions"`
	Profile          Profile          `yaml:"profile" json:"profile"`
	EmergencyContact EmergencyContact `yaml:"emergency_contact" json:"emergency_contact"`
	ModelStatus      ModelStatus      `yaml:"model_status" json:"model_status"`
	Downloads        []Download       `yaml:"downloads" json:"downloads"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}
	if len(c.Suggestions) == 0 {
		return nil, fmt.Errorf("content has no suggestions")
	}
	for i, d := range c.Downloads {
		switch d.Status {
		case StatusAvailable, StatusDownloading, StatusInstalled:
		default:
			return nil, fmt.Errorf("download %d (%s): unknown status %q", i, d.ID, d.Status)
		}
		if d.Progress < 0 || d.Progress > 100 {
			return nil, fmt.Errorf("download %d (%s): progress %d out of range", i, d.ID, d.Progress)
		}
	}
	return &c, nil
}

var (
	loadOnce sync.Once
	catalog  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded document
// is invalid, which a test guards against.
func Default() *Catalog {
	loadOnce.Do(func() {
		c, err := Parse(raw)
		if err != nil {
			panic("content: " + err.Error())
		}
		catalog = c
	})
	return catalog
}

// Suggestion returns the quick suggestion at index.
func (c *Catalog) Suggestion(index int) (string, bool) {
	if index < 0 || index >= len(c.Suggestions) {
		return "", false
	}
	return c.Suggestions[index], true
}
