package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/geo"
	"hub-ops-service/internal/platform/obs"
	"hub-ops-service/internal/ports"
)

// DefaultSuggestionLimit is the number of lanes suggested per request.
const DefaultSuggestionLimit = 3

// Allocator suggests the nearest staging lanes for a package or lane code.
type Allocator struct {
	reference ReferenceReader
	dwell     ports.DwellLog
	hub       domain.Coordinates
	limit     int
	loc       *time.Location
	now       func() time.Time
}

func NewAllocator(reference ReferenceReader, dwell ports.DwellLog, hub domain.Coordinates, limit int, loc *time.Location) *Allocator {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Allocator{
		reference: reference,
		dwell:     dwell,
		hub:       hub,
		limit:     limit,
		loc:       loc,
		now:       time.Now,
	}
}

// ResolveAndSuggest resolves identifier to a reference point and ranks the
// lanes around it. The returned Allocation is always usable; a non-nil
// error reports degraded input (reference data or the presence filter could
// not be read).
func (a *Allocator) ResolveAndSuggest(ctx context.Context, identifier string, presentOnly bool) (res domain.Allocation, err error) {
	defer obs.Time(ctx, "allocation.suggest")(&err)

	identifier = strings.TrimSpace(identifier)

	snap, refErr := a.reference.Snapshot(ctx)
	if refErr != nil {
		err = fmt.Errorf("resolve and suggest: %w", refErr)
	}

	res = Resolve(identifier, snap.Packages, snap.Lanes, a.hub)

	var present map[string]struct{}
	if presentOnly && len(snap.Lanes) > 0 {
		p, pErr := a.presentPlates(ctx)
		if pErr != nil {
			if err == nil {
				err = fmt.Errorf("resolve and suggest: presence filter: %w", pErr)
			}
		} else {
			present = p
		}
	}

	res.Suggestions, res.PresenceFiltered = RankLanes(res.Reference, snap.Lanes, present, a.limit)
	return res, err
}

// Resolve finds the reference point for identifier: a package order id
// first, then a lane code, else the hub.
func Resolve(identifier string, pkgs []domain.Package, lanes []domain.Lane, hub domain.Coordinates) domain.Allocation {
	res := domain.Allocation{
		Identifier: identifier,
		Source:     domain.ReferenceFromHub,
		Reference:  hub,
	}
	if identifier == "" {
		return res
	}

	for _, p := range pkgs {
		if strings.TrimSpace(p.OrderID) == identifier {
			res.Resolved = true
			res.Source = domain.ReferenceFromPackage
			res.Reference = p.Location
			return res
		}
	}
	for _, l := range lanes {
		if strings.TrimSpace(l.CorridorCage) == identifier {
			res.Resolved = true
			res.Source = domain.ReferenceFromLane
			res.Reference = l.Location
			return res
		}
	}
	return res
}

// RankLanes orders lanes by distance from ref, keeps the closest entry per
// corridor_cage and returns at most limit suggestions. When present is
// non-nil only lanes whose plate is present are ranked, unless that leaves
// nothing, in which case the full set is used. The bool reports whether the
// filter was applied.
func RankLanes(ref domain.Coordinates, lanes []domain.Lane, present map[string]struct{}, limit int) ([]domain.Suggestion, bool) {
	if len(lanes) == 0 {
		return []domain.Suggestion{}, false
	}

	candidates := lanes
	filtered := false
	if present != nil {
		kept := make([]domain.Lane, 0, len(lanes))
		for _, l := range lanes {
			if plate := domain.NormalizePlate(l.LicensePlate); plate != "" {
				if _, ok := present[plate]; ok {
					kept = append(kept, l)
				}
			}
		}
		if len(kept) > 0 {
			candidates = kept
			filtered = true
		}
	}

	type ranked struct {
		lane domain.Lane
		dist geo.Distance
	}

	all := make([]ranked, 0, len(candidates))
	for _, l := range candidates {
		all = append(all, ranked{lane: l, dist: geo.Between(ref, l.Location)})
	}

	// Stable so equal distances keep reference-data order.
	slices.SortStableFunc(all, func(x, y ranked) int {
		switch {
		case x.dist.Less(y.dist):
			return -1
		case y.dist.Less(x.dist):
			return 1
		}
		return 0
	})

	seen := make(map[string]struct{}, len(all))
	out := make([]domain.Suggestion, 0, min(limit, len(all)))
	for _, r := range all {
		if len(out) >= limit {
			break
		}
		if _, dup := seen[r.lane.CorridorCage]; dup {
			continue
		}
		seen[r.lane.CorridorCage] = struct{}{}

		km, known := r.dist.Value()
		out = append(out, domain.Suggestion{Lane: r.lane, DistanceKm: km, DistanceKnown: known})
	}
	return out, filtered
}

func (a *Allocator) presentPlates(ctx context.Context) (map[string]struct{}, error) {
	open, err := a.dwell.ListOpenByDate(ctx, domain.DayKey(a.now(), a.loc))
	if err != nil {
		return nil, err
	}
	plates := make(map[string]struct{}, len(open))
	for _, r := range open {
		if p := domain.NormalizePlate(r.Plate); p != "" {
			plates[p] = struct{}{}
		}
	}
	return plates, nil
}
