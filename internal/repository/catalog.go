package repository

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"propertychat/internal/model"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// CatalogVersion is the only catalog schema version this build accepts
const CatalogVersion = 1

var (
	// ErrInvalidCatalog is returned when a catalog or directory fails validation
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrUnsupportedVersion is returned for documents of another schema version
	ErrUnsupportedVersion = errors.New("unsupported catalog version")
)

//go:embed data/listings.json data/areas.yaml
var defaultData embed.FS

const (
	defaultListingsFile = "data/listings.json"
	defaultAreasFile    = "data/areas.yaml"
)

type listingsDocument struct {
	Version  int             `json:"version" yaml:"version"`
	Listings []model.Listing `json:"listings" yaml:"listings"`
}

type areasDocument struct {
	Version int          `json:"version" yaml:"version"`
	Areas   []model.Area `json:"areas" yaml:"areas"`
}

// Catalog holds the read-only listings and neighbourhood directory
type Catalog struct {
	listings []model.Listing
	byID     map[string]int
	areas    []model.Area
	byName   map[string]int
}

// LoadCatalog reads listings and areas from the given files. An empty path
// selects the data embedded in the binary.
func LoadCatalog(listingsPath, areasPath string) (*Catalog, error) {
	listingsData, listingsName, err := readSource(listingsPath, defaultListingsFile)
	if err != nil {
		return nil, err
	}
	areasData, areasName, err := readSource(areasPath, defaultAreasFile)
	if err != nil {
		return nil, err
	}

	listings, err := ParseListings(listingsName, listingsData)
	if err != nil {
		return nil, err
	}
	areas, err := ParseAreas(areasName, areasData)
	if err != nil {
		return nil, err
	}
	return NewCatalog(listings, areas), nil
}

// DefaultCatalog loads the embedded catalog
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog("", "")
}

// NewCatalog builds a catalog from already validated records
func NewCatalog(listings []model.Listing, areas []model.Area) *Catalog {
	c := &Catalog{
		listings: append([]model.Listing(nil), listings...),
		byID:     make(map[string]int, len(listings)),
		areas:    append([]model.Area(nil), areas...),
		byName:   make(map[string]int, len(areas)),
	}
	for i, l := range c.listings {
		c.byID[l.ID] = i
	}
	for i, a := range c.areas {
		c.byName[strings.ToLower(a.Name)] = i
	}
	return c
}

// Listings returns the listings in catalog order
func (c *Catalog) Listings() []model.Listing {
	return append([]model.Listing(nil), c.listings...)
}

// Listing finds a listing by id
func (c *Catalog) Listing(id string) (model.Listing, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Listing{}, false
	}
	return c.listings[i], true
}

// Areas returns the directory in file order
func (c *Catalog) Areas() []model.Area {
	return append([]model.Area(nil), c.areas...)
}

// Area finds an area by exact name, ignoring case
func (c *Catalog) Area(name string) (model.Area, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return model.Area{}, false
	}
	return c.areas[i], true
}

// AreaNames returns the directory names in order
func (c *Catalog) AreaNames() []string {
	names := make([]string, len(c.areas))
	for i, a := range c.areas {
		names[i] = a.Name
	}
	return names
}

// ParseListings decodes and validates a listings document. The format is
// chosen from the file extension (.json, .yaml, .yml).
func ParseListings(name string, data []byte) ([]model.Listing, error) {
	var doc listingsDocument
	if err := decode(name, data, &doc); err != nil {
		return nil, err
	}
	if doc.Version != CatalogVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", ErrUnsupportedVersion, name, doc.Version, CatalogVersion)
	}

	validate := validator.New()
	var errs []error
	seen := make(map[string]bool, len(doc.Listings))
	for i := range doc.Listings {
		l := &doc.Listings[i]
		if l.Price.Currency == "" {
			l.Price.Currency = "GBP"
		}
		if err := validate.Struct(l); err != nil {
			errs = append(errs, describeValidation(fmt.Sprintf("listings[%d]", i), err))
			continue
		}
		if err := l.CheckInvariants(); err != nil {
			errs = append(errs, err)
		}
		if seen[l.ID] {
			errs = append(errs, fmt.Errorf("listings[%d]: duplicate id %q", i, l.ID))
		}
		seen[l.ID] = true
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, name, errors.Join(errs...))
	}
	return doc.Listings, nil
}

// ParseAreas decodes and validates a neighbourhood directory document
func ParseAreas(name string, data []byte) ([]model.Area, error) {
	var doc areasDocument
	if err := decode(name, data, &doc); err != nil {
		return nil, err
	}
	if doc.Version != CatalogVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", ErrUnsupportedVersion, name, doc.Version, CatalogVersion)
	}

	validate := validator.New()
	var errs []error
	seen := make(map[string]bool, len(doc.Areas))
	for i := range doc.Areas {
		a := &doc.Areas[i]
		if err := validate.Struct(a); err != nil {
			errs = append(errs, describeValidation(fmt.Sprintf("areas[%d]", i), err))
			continue
		}
		key := strings.ToLower(a.Name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("areas[%d]: duplicate name %q", i, a.Name))
		}
		seen[key] = true
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidCatalog, name, errors.Join(errs...))
	}
	return doc.Areas, nil
}

func readSource(path, fallback string) ([]byte, string, error) {
	if path == "" {
		data, err := defaultData.ReadFile(fallback)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read embedded %s: %w", fallback, err)
		}
		return data, fallback, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, path, nil
}

func decode(name string, data []byte, target any) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(target); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, name, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(target); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCatalog, name, err)
		}
	default:
		return fmt.Errorf("%w: %s: unsupported file extension", ErrInvalidCatalog, name)
	}
	return nil
}

func describeValidation(prefix string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("%s: %s", prefix, strings.Join(parts, "; "))
}
