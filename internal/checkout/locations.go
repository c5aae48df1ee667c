package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/checkoutapi/internal/domain"
	"github.com/jafarshop/checkoutapi/pkg/errors"
)

// LocationState holds the selected entry and the loaded options per cascade level
type LocationState struct {
	Selection map[domain.LocationLevel]domain.Location   `json:"selection"`
	Options   map[domain.LocationLevel][]domain.Location `json:"options"`
}

// Selected returns the selected location for a level, or nil
func (s LocationState) Selected(level domain.LocationLevel) *domain.Location {
	loc, ok := s.Selection[level]
	if !ok {
		return nil
	}
	return &loc
}

// CityID returns the selected city id, 0 when none
func (s LocationState) CityID() int64 {
	if c := s.Selected(domain.LocationCity); c != nil {
		return c.ID
	}
	return 0
}

func (s *LocationState) init() {
	if s.Selection == nil {
		s.Selection = make(map[domain.LocationLevel]domain.Location)
	}
	if s.Options == nil {
		s.Options = make(map[domain.LocationLevel][]domain.Location)
	}
}

// clearBelow drops selections deeper than level and options deeper than its child
func (s *LocationState) clearBelow(level domain.LocationLevel) {
	depth := level.Depth()
	for _, lvl := range domain.LocationLevels {
		if lvl.Depth() > depth {
			delete(s.Selection, lvl)
			delete(s.Options, lvl)
		}
	}
}

// LocationFetcher lists the entries of one level under a parent (0 for countries)
type LocationFetcher interface {
	ListLocations(ctx context.Context, level domain.LocationLevel, parentID int64) ([]domain.Location, error)
}

// Sequencer issues per-scope monotonically increasing numbers
type Sequencer interface {
	Next(ctx context.Context, scope string) (int64, error)
	Latest(ctx context.Context, scope string) (int64, error)
}

// LocationTicket identifies one in-flight option fetch
type LocationTicket struct {
	Level    domain.LocationLevel
	ParentID int64
	Seq      int64
}

// LocationCascade drives country -> region -> city -> district selection.
// Each fetch is tagged with a sequence number per level and applied only while it is the latest.
type LocationCascade struct {
	fetcher LocationFetcher
	seq     Sequencer
	logger  *zap.Logger
}

// NewLocationCascade creates a cascade over the shipping provider's location API
func NewLocationCascade(fetcher LocationFetcher, seq Sequencer, logger *zap.Logger) *LocationCascade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocationCascade{fetcher: fetcher, seq: seq, logger: logger}
}

func sequenceScope(sessionKey string, level domain.LocationLevel) string {
	return fmt.Sprintf("%s:%s", sessionKey, level)
}

// Start opens the cascade by issuing a ticket for the country list
func (c *LocationCascade) Start(ctx context.Context, sessionKey string, state *LocationState) (*LocationTicket, error) {
	state.init()
	state.clearBelow(domain.LocationCountry)
	delete(state.Selection, domain.LocationCountry)
	delete(state.Options, domain.LocationCountry)
	return c.issue(ctx, sessionKey, domain.LocationCountry, 0)
}

// Select records the choice for level, clears everything below it and returns the
// ticket for fetching the child level. Districts have no child and return nil.
func (c *LocationCascade) Select(ctx context.Context, sessionKey string, state *LocationState, level domain.LocationLevel, id int64) (*LocationTicket, error) {
	if !level.IsValid() {
		return nil, &errors.ErrValidation{Message: fmt.Sprintf("unknown location level %q", level)}
	}
	state.init()

	loc, ok := findLocation(state.Options[level], id)
	if !ok {
		return nil, &errors.ErrNotFound{Resource: string(level), ID: fmt.Sprintf("%d", id)}
	}
	state.Selection[level] = loc
	state.clearBelow(level)

	child := level.Child()
	if child == "" {
		return nil, nil
	}
	return c.issue(ctx, sessionKey, child, id)
}

func (c *LocationCascade) issue(ctx context.Context, sessionKey string, level domain.LocationLevel, parentID int64) (*LocationTicket, error) {
	n, err := c.seq.Next(ctx, sequenceScope(sessionKey, level))
	if err != nil {
		return nil, fmt.Errorf("issue %s sequence: %w", level, err)
	}
	return &LocationTicket{Level: level, ParentID: parentID, Seq: n}, nil
}

// Fetch loads the options for a ticket. Failures degrade to an empty list.
func (c *LocationCascade) Fetch(ctx context.Context, t *LocationTicket) []domain.Location {
	options, err := c.fetcher.ListLocations(ctx, t.Level, t.ParentID)
	if err != nil {
		c.logger.Warn("Location lookup failed, showing no options",
			zap.String("level", string(t.Level)),
			zap.Int64("parent_id", t.ParentID),
			zap.Error(err),
		)
		return []domain.Location{}
	}
	if options == nil {
		options = []domain.Location{}
	}
	return options
}

// Apply stores options into state if the ticket is still the latest for its level
// and the parent selection has not moved on. It reports whether the result was applied.
func (c *LocationCascade) Apply(ctx context.Context, sessionKey string, state *LocationState, t *LocationTicket, options []domain.Location) (bool, error) {
	latest, err := c.seq.Latest(ctx, sequenceScope(sessionKey, t.Level))
	if err != nil {
		return false, fmt.Errorf("read %s sequence: %w", t.Level, err)
	}
	if t.Seq != latest {
		c.logger.Debug("Dropping stale location result",
			zap.String("level", string(t.Level)),
			zap.Int64("seq", t.Seq),
			zap.Int64("latest", latest),
		)
		return false, nil
	}

	state.init()
	if parent := parentLevel(t.Level); parent != "" {
		sel := state.Selected(parent)
		if sel == nil || sel.ID != t.ParentID {
			return false, nil
		}
	}
	state.Options[t.Level] = options
	return true, nil
}

func parentLevel(level domain.LocationLevel) domain.LocationLevel {
	d := level.Depth()
	if d <= 0 {
		return ""
	}
	return domain.LocationLevels[d-1]
}

func findLocation(options []domain.Location, id int64) (domain.Location, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Location{}, false
}
