package model

// CommuteTimes are the three commute bands shown for every area
type CommuteTimes struct {
	CityCentre  string `json:"city_centre" yaml:"city_centre" validate:"required"`
	CanaryWharf string `json:"canary_wharf" yaml:"canary_wharf" validate:"required"`
	Heathrow    string `json:"heathrow" yaml:"heathrow" validate:"required"`
}

// Transport summarises public transport around an area
type Transport struct {
	Tube         []string     `json:"tube" yaml:"tube"`
	Bus          []string     `json:"bus" yaml:"bus"`
	Overground   []string     `json:"overground,omitempty" yaml:"overground,omitempty"`
	DLR          []string     `json:"dlr,omitempty" yaml:"dlr,omitempty"`
	CommuteTimes CommuteTimes `json:"commute_times" yaml:"commute_times"`
}

// Area is a neighbourhood record used to answer informational questions
type Area struct {
	Name          string    `json:"name" yaml:"name" validate:"required"`
	Description   string    `json:"description" yaml:"description" validate:"required"`
	Transport     Transport `json:"transport" yaml:"transport"`
	Entertainment []string  `json:"entertainment" yaml:"entertainment"`
	Shopping      []string  `json:"shopping" yaml:"shopping"`
	Highlights    []string  `json:"highlights" yaml:"highlights"`
}

// Angle is the facet an area reply concentrates on
type Angle string

const (
	AngleTransport     Angle = "transport"
	AngleEntertainment Angle = "entertainment"
	AngleShopping      Angle = "shopping"
	AngleComprehensive Angle = "comprehensive"
)
