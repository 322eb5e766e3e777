package analysis

import (
	"context"
	"sort"
	"strings"

	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// PremarketNewsLimit is how many market headlines the briefing carries
const PremarketNewsLimit = 5

// Scanner runs the market-wide commands over the fixed universe
type Scanner struct {
	asm      *Assembler
	universe *Universe
	log      *logger.Logger
}

// NewScanner creates a scanner
func NewScanner(asm *Assembler, universe *Universe, log *logger.Logger) *Scanner {
	if log == nil {
		log = logger.Get()
	}
	return &Scanner{asm: asm, universe: universe, log: log.With("component", "scanner")}
}

// Universe returns the scan universe
func (s *Scanner) Universe() *Universe {
	return s.universe
}

// Premarket quotes the index ETFs and attaches the top market news
func (s *Scanner) Premarket(ctx context.Context, userID int64) (*CommandContext, error) {
	cc, err := s.asm.AssembleSymbols(ctx, userID, s.universe.IndexSymbols(), SectionQuote)
	if err != nil {
		return nil, errors.Wrap(err, "premarket")
	}
	cc.MarketNews = s.asm.MarketNews(ctx, PremarketNewsLimit)
	return cc, nil
}

// Sectors quotes every sector ETF, best performer first
func (s *Scanner) Sectors(ctx context.Context, userID int64) (*CommandContext, error) {
	cc, err := s.asm.AssembleSymbols(ctx, userID, s.universe.SectorETFs(), SectionQuote)
	if err != nil {
		return nil, errors.Wrap(err, "sectors")
	}

	byETF := make(map[string]SectorDef, len(s.universe.Sectors))
	for _, def := range s.universe.Sectors {
		byETF[def.ETF] = def
	}
	for _, subj := range cc.Subjects {
		def, ok := byETF[subj.Symbol()]
		if !ok {
			continue
		}
		cc.Sectors = append(cc.Sectors, Sector{Def: def, Quote: subj.Data.Quote})
	}
	sort.SliceStable(cc.Sectors, func(i, j int) bool {
		return cc.Sectors[i].Quote.ChangePercent.Or(-1e9) > cc.Sectors[j].Quote.ChangePercent.Or(-1e9)
	})
	return cc, nil
}

// Sector quotes one sector ETF and its leaders
func (s *Scanner) Sector(ctx context.Context, userID int64, name string) (*CommandContext, error) {
	def, ok := s.universe.FindSector(name)
	if !ok {
		return nil, errors.NewValidationError("sector",
			"Unknown sector. Try one of: "+strings.Join(s.universe.SectorNames(), ", "), name)
	}

	symbols := append([]string{def.ETF}, def.Leaders...)
	cc, err := s.asm.AssembleSymbols(ctx, userID, symbols, SectionsScan)
	if err != nil {
		return nil, errors.Wrap(err, "sector")
	}

	sector := Sector{Def: def}
	for _, subj := range cc.Subjects {
		if subj.Symbol() == def.ETF {
			sector.Quote = subj.Data.Quote
			continue
		}
		sector.Leaders = append(sector.Leaders, subj)
	}
	cc.Sectors = []Sector{sector}
	return cc, nil
}

// Undervalued screens the large-cap universe and keeps the cheapest matches
func (s *Scanner) Undervalued(ctx context.Context, userID int64) (*CommandContext, error) {
	rules := s.universe.Undervalued
	cc, err := s.asm.AssembleSymbols(ctx, userID, rules.Universe, SectionsScan)
	if err != nil {
		return nil, errors.Wrap(err, "undervalued")
	}

	scanned := len(cc.Subjects)
	cc.Subjects = Screen(cc.Subjects, rules)
	cc.Screen = rules
	s.log.Infow("Undervalued scan complete", "scanned", scanned, "matched", len(cc.Subjects))
	return cc, nil
}

// Screen keeps subjects with P/E below MaxPE, revenue growth above
// MinRevenueGrowth and ROIC above MinROIC, sorted by P/E ascending and cut to Top.
// Subjects with a missing metric never match.
func Screen(subjects []Subject, rules ScreenRules) []Subject {
	var out []Subject
	for _, subj := range subjects {
		f := subj.Data.Fundamentals
		if !f.PE.OK || !f.RevenueGrowth.OK || !f.ROIC.OK {
			continue
		}
		if f.PE.V <= 0 || f.PE.V >= rules.MaxPE {
			continue
		}
		if f.RevenueGrowth.V <= rules.MinRevenueGrowth || f.ROIC.V <= rules.MinROIC {
			continue
		}
		out = append(out, subj)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Data.Fundamentals.PE.V < out[j].Data.Fundamentals.PE.V
	})
	if rules.Top > 0 && len(out) > rules.Top {
		out = out[:rules.Top]
	}
	return out
}
