package schema

// Catalog exposes the enumerated option sets a challenge form iterates.
type Catalog interface {
	ChallengeTypes() []ChallengeType
	Difficulties() []Difficulty
}

// Option is one selectable value with its display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options is the wire shape of a catalog.
type Options struct {
	Types        []Option `json:"types"`
	Difficulties []Option `json:"difficulties"`
}

type defaultCatalog struct{}

// DefaultCatalog serves the compiled-in option sets.
var DefaultCatalog Catalog = defaultCatalog{}

func (defaultCatalog) ChallengeTypes() []ChallengeType { return ChallengeTypes() }
func (defaultCatalog) Difficulties() []Difficulty      { return Difficulties() }

// StaticCatalog is a catalog backed by fixed slices, typically decoded from the API.
type StaticCatalog struct {
	Types  []ChallengeType
	Levels []Difficulty
}

func (c StaticCatalog) ChallengeTypes() []ChallengeType { return c.Types }
func (c StaticCatalog) Difficulties() []Difficulty      { return c.Levels }

// OptionsOf renders the catalog for clients.
func OptionsOf(c Catalog) Options {
	types := c.ChallengeTypes()
	levels := c.Difficulties()
	out := Options{
		Types:        make([]Option, 0, len(types)),
		Difficulties: make([]Option, 0, len(levels)),
	}
	for _, t := range types {
		out.Types = append(out.Types, Option{Value: string(t), Label: t.Label()})
	}
	for _, d := range levels {
		out.Difficulties = append(out.Difficulties, Option{Value: string(d), Label: d.Label()})
	}
	return out
}

// CatalogFromOptions rebuilds a catalog from its wire shape, skipping unknown values.
func CatalogFromOptions(opts Options) StaticCatalog {
	var c StaticCatalog
	for _, o := range opts.Types {
		if t, err := ParseChallengeType(o.Value); err == nil {
			c.Types = append(c.Types, t)
		}
	}
	for _, o := range opts.Difficulties {
		if d, err := ParseDifficulty(o.Value); err == nil {
			c.Levels = append(c.Levels, d)
		}
	}
	return c
}
