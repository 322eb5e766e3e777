package analysis

import (
	_ "embed"
	"strings"

	"gopkg.in/yaml.v3"

	"marketpulse/pkg/errors"
)

//go:embed universe.yaml
var universeYAML []byte

// IndexDef is a broad market index ETF
type IndexDef struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// SectorDef is a sector ETF and its bellwether stocks
type SectorDef struct {
	ETF     string   `yaml:"etf"`
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Leaders []string `yaml:"leaders"`
}

// ScreenRules filter the undervalued scan
type ScreenRules struct {
	MaxPE            float64  `yaml:"max_pe"`
	MinRevenueGrowth float64  `yaml:"min_revenue_growth"`
	MinROIC          float64  `yaml:"min_roic"`
	Top              int      `yaml:"top"`
	Universe         []string `yaml:"universe"`
}

// Universe is the fixed symbol set used by the market-wide commands
type Universe struct {
	Indices     []IndexDef  `yaml:"indices"`
	Sectors     []SectorDef `yaml:"sectors"`
	Undervalued ScreenRules `yaml:"undervalued"`
}

// LoadUniverse parses the embedded universe definition
func LoadUniverse() (*Universe, error) {
	return ParseUniverse(universeYAML)
}

// ParseUniverse parses a universe document
func ParseUniverse(data []byte) (*Universe, error) {
	var u Universe
	if err := yaml.Unmarshal(data, &u); err != nil {
		return nil, errors.Wrap(err, "failed to parse universe")
	}
	if len(u.Indices) == 0 || len(u.Sectors) == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "universe needs indices and sectors")
	}
	if u.Undervalued.Top <= 0 {
		u.Undervalued.Top = 5
	}
	return &u, nil
}

// IndexSymbols returns the index ETF symbols in order
func (u *Universe) IndexSymbols() []string {
	out := make([]string, 0, len(u.Indices))
	for _, i := range u.Indices {
		out = append(out, i.Symbol)
	}
	return out
}

// SectorETFs returns the sector ETF symbols in order
func (u *Universe) SectorETFs() []string {
	out := make([]string, 0, len(u.Sectors))
	for _, s := range u.Sectors {
		out = append(out, s.ETF)
	}
	return out
}

// FindSector matches an ETF symbol, a sector name or an alias, ignoring case
func (u *Universe) FindSector(query string) (SectorDef, bool) {
	q := strings.ToLower(strings.Join(strings.Fields(query), ""))
	if q == "" {
		return SectorDef{}, false
	}
	for _, s := range u.Sectors {
		if q == strings.ToLower(s.ETF) || q == strings.ToLower(strings.ReplaceAll(s.Name, " ", "")) {
			return s, true
		}
		for _, a := range s.Aliases {
			if q == a {
				return s, true
			}
		}
	}
	return SectorDef{}, false
}

// SectorNames lists the sector display names
func (u *Universe) SectorNames() []string {
	out := make([]string, 0, len(u.Sectors))
	for _, s := range u.Sectors {
		out = append(out, s.Name)
	}
	return out
}
