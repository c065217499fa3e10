package analytics

import (
	"errors"
	"fmt"
	"sort"
)

// Size bounds of a multi-record comparison
const (
	MinComparison = 2
	MaxComparison = 5
)

// ErrComparisonSize is returned when a comparison set is too small or too large
var ErrComparisonSize = errors.New("comparison requires between 2 and 5 records")

// SpeciesStat summarizes the completed predictions of one species
type SpeciesStat struct {
	SpeciesID      uint     `json:"species_id"`
	SpeciesCode    string   `json:"species_code"`
	SpeciesName    string   `json:"species_name"`
	Count          int      `json:"count"`
	MeanYieldPerHa *float64 `json:"mean_yield_per_ha"`
	MeanConfidence *float64 `json:"mean_confidence"`
	MeanROI        *float64 `json:"mean_roi"`
	MeanWaterPerHa *float64 `json:"mean_water_per_ha"`
}

// RegionStat summarizes the completed predictions of one region
type RegionStat struct {
	RegionID        uint    `json:"region_id"`
	RegionName      string  `json:"region_name"`
	Count           int     `json:"count"`
	TotalHectares   float64 `json:"total_hectares"`
	TotalYield      float64 `json:"total_yield"`
	TotalInvestment float64 `json:"total_investment"`
}

// PeerStat is how one species performs among a focal record's peers
type PeerStat struct {
	SpeciesID      uint     `json:"species_id"`
	SpeciesCode    string   `json:"species_code"`
	SpeciesName    string   `json:"species_name"`
	Count          int      `json:"count"`
	MeanROI        *float64 `json:"mean_roi"`
	MeanYieldPerHa *float64 `json:"mean_yield_per_ha"`
}

// RegionalPerformance is how the focal species performs in another region
type RegionalPerformance struct {
	RegionID       uint     `json:"region_id"`
	RegionName     string   `json:"region_name"`
	Count          int      `json:"count"`
	MeanROI        *float64 `json:"mean_roi"`
	MeanYieldPerHa *float64 `json:"mean_yield_per_ha"`
	MeanInvestment *float64 `json:"mean_investment"`
}

// ComparisonItem carries the per-hectare metrics of one compared record
type ComparisonItem struct {
	Record          Record  `json:"prediction"`
	ROIPerHa        float64 `json:"roi_per_ha"`
	InvestmentPerHa float64 `json:"investment_per_ha"`
	WaterEfficiency float64 `json:"water_efficiency"`
}

// BySpecies groups completed records by species, ordered by count with
// ties kept in first-appearance order. A limit <= 0 returns every group.
func BySpecies(records []Record, limit int) []SpeciesStat {
	type acc struct {
		stat                    SpeciesStat
		yield, conf, roi, water mean
	}
	g := newGrouper[uint, acc]()
	for _, r := range records {
		if !r.Completed {
			continue
		}
		a := g.get(r.SpeciesID, func() *acc {
			return &acc{stat: SpeciesStat{SpeciesID: r.SpeciesID, SpeciesCode: r.SpeciesCode, SpeciesName: r.SpeciesName}}
		})
		a.stat.Count++
		a.yield.add(r.YieldPerHa)
		a.conf.addInt(r.Confidence)
		a.roi.add(r.ROI)
		a.water.add(r.WaterPerHa)
	}

	stats := make([]SpeciesStat, 0, len(g.order))
	g.each(func(a *acc) {
		a.stat.MeanYieldPerHa = a.yield.value()
		a.stat.MeanConfidence = a.conf.value()
		a.stat.MeanROI = a.roi.value()
		a.stat.MeanWaterPerHa = a.water.value()
		stats = append(stats, a.stat)
	})
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return truncate(stats, limit)
}

// ByRegion groups completed records by region, ordered like BySpecies.
// Missing values count as 0 in the sums.
func ByRegion(records []Record, limit int) []RegionStat {
	g := newGrouper[uint, RegionStat]()
	for _, r := range records {
		if !r.Completed {
			continue
		}
		s := g.get(r.RegionID, func() *RegionStat {
			return &RegionStat{RegionID: r.RegionID, RegionName: r.RegionName}
		})
		s.Count++
		s.TotalHectares += r.Hectares
		s.TotalYield += valueOr(r.YieldTotal)
		s.TotalInvestment += valueOr(r.Investment)
	}

	stats := make([]RegionStat, 0, len(g.order))
	g.each(func(s *RegionStat) { stats = append(stats, *s) })
	sort.SliceStable(stats, func(i, j int) bool { return stats[i].Count > stats[j].Count })
	return truncate(stats, limit)
}

// PeerComparison groups the other completed records of the focal record's
// region by species, ordered by mean ROI. Groups with no ROI sort last.
func PeerComparison(focal Record, records []Record, limit int) []PeerStat {
	return peers(focal, records, limit, func(r Record) bool {
		return r.RegionID == focal.RegionID && r.ID != focal.ID
	})
}

// RegionalAlternatives is PeerComparison restricted to species other than
// the focal one
func RegionalAlternatives(focal Record, records []Record, limit int) []PeerStat {
	return peers(focal, records, limit, func(r Record) bool {
		return r.RegionID == focal.RegionID && r.SpeciesID != focal.SpeciesID
	})
}

func peers(focal Record, records []Record, limit int, keep func(Record) bool) []PeerStat {
	type acc struct {
		stat       PeerStat
		roi, yield mean
	}
	g := newGrouper[uint, acc]()
	for _, r := range records {
		if !r.Completed || !keep(r) {
			continue
		}
		a := g.get(r.SpeciesID, func() *acc {
			return &acc{stat: PeerStat{SpeciesID: r.SpeciesID, SpeciesCode: r.SpeciesCode, SpeciesName: r.SpeciesName}}
		})
		a.stat.Count++
		a.roi.add(r.ROI)
		a.yield.add(r.YieldPerHa)
	}

	stats := make([]PeerStat, 0, len(g.order))
	g.each(func(a *acc) {
		a.stat.MeanROI = a.roi.value()
		a.stat.MeanYieldPerHa = a.yield.value()
		stats = append(stats, a.stat)
	})
	sort.SliceStable(stats, func(i, j int) bool { return roiGreater(stats[i].MeanROI, stats[j].MeanROI) })
	return truncate(stats, limit)
}

// CrossRegion groups the other completed records of the focal species by
// region, ordered by mean ROI
func CrossRegion(focal Record, records []Record, limit int) []RegionalPerformance {
	type acc struct {
		stat               RegionalPerformance
		roi, yield, invest mean
	}
	g := newGrouper[uint, acc]()
	for _, r := range records {
		if !r.Completed || r.SpeciesID != focal.SpeciesID || r.ID == focal.ID {
			continue
		}
		a := g.get(r.RegionID, func() *acc {
			return &acc{stat: RegionalPerformance{RegionID: r.RegionID, RegionName: r.RegionName}}
		})
		a.stat.Count++
		a.roi.add(r.ROI)
		a.yield.add(r.YieldPerHa)
		a.invest.add(r.Investment)
	}

	stats := make([]RegionalPerformance, 0, len(g.order))
	g.each(func(a *acc) {
		a.stat.MeanROI = a.roi.value()
		a.stat.MeanYieldPerHa = a.yield.value()
		a.stat.MeanInvestment = a.invest.value()
		stats = append(stats, a.stat)
	})
	sort.SliceStable(stats, func(i, j int) bool { return roiGreater(stats[i].MeanROI, stats[j].MeanROI) })
	return truncate(stats, limit)
}

// BestAlternative returns the top peer species whose mean ROI beats the
// focal record, if any
func BestAlternative(focal Record, peerStats []PeerStat) (PeerStat, bool) {
	for _, p := range peerStats {
		if p.SpeciesID == focal.SpeciesID || p.MeanROI == nil {
			continue
		}
		if *p.MeanROI > valueOr(focal.ROI) {
			return p, true
		}
		// ordered by ROI, nothing further down can win
		return PeerStat{}, false
	}
	return PeerStat{}, false
}

// Compare computes per-hectare metrics for 2 to 5 records. ROI per hectare
// divides the ROI percentage by the area as-is.
func Compare(records []Record) ([]ComparisonItem, error) {
	if len(records) < MinComparison || len(records) > MaxComparison {
		return nil, fmt.Errorf("compare %d records: %w", len(records), ErrComparisonSize)
	}

	items := make([]ComparisonItem, 0, len(records))
	for _, r := range records {
		item := ComparisonItem{Record: r}
		if r.Hectares > 0 {
			item.ROIPerHa = valueOr(r.ROI) / r.Hectares
			item.InvestmentPerHa = valueOr(r.Investment) / r.Hectares
		}
		water := valueOr(r.WaterPerHa)
		if water <= 0 {
			water = 1
		}
		item.WaterEfficiency = valueOr(r.YieldPerHa) / water
		items = append(items, item)
	}
	return items, nil
}

// roiGreater orders present values descending, missing values last
func roiGreater(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a > *b
	}
}
