package v1

import (
	"fmt"

	"github.com/launchdash/dashboard/pkg/core"
)

// Build creates an Export from a dataset and its launches.
func Build(ds core.DatasetInfo, launches []core.Launch) Export {
	export := Export{
		FormatVersion: FormatVersion,
		SourcePath:    ds.SourcePath,
		Columns:       ds.Columns,
		LoadedAt:      ds.LoadedAt,
		Skipped:       ds.Skipped,
		Sites:         make([]Site, 0),
		Header:        Header,
		Launches:      make([][]any, 0, len(launches)),
	}
	if export.Columns == nil {
		export.Columns = []string{}
	}

	index := make(map[string]int)
	for _, l := range launches {
		i, ok := index[l.LaunchSite]
		if !ok {
			i = len(export.Sites)
			index[l.LaunchSite] = i
			export.Sites = append(export.Sites, Site{Name: l.LaunchSite})
		}
		export.Sites[i].Launches++
		if l.Class == core.Success {
			export.Sites[i].Successes++
		}

		export.Launches = append(export.Launches, []any{
			l.ID,
			l.FlightNumber,
			l.LaunchSite,
			l.PayloadMassKg,
			int(l.Class),
			l.BoosterVersion,
			l.BoosterCategory,
			l.Latitude,
			l.Longitude,
		})
	}

	return export
}

// Parse converts an Export back into launches. Rows with the wrong shape fail
// the whole parse.
func Parse(e Export) (core.DatasetInfo, []core.Launch, error) {
	if e.FormatVersion != FormatVersion {
		return core.DatasetInfo{}, nil, fmt.Errorf("unsupported export format version %d", e.FormatVersion)
	}

	launches := make([]core.Launch, 0, len(e.Launches))
	for i, row := range e.Launches {
		l, err := parseRow(row)
		if err != nil {
			return core.DatasetInfo{}, nil, fmt.Errorf("launch %d: %w", i, err)
		}
		launches = append(launches, l)
	}

	ds := core.DatasetInfo{
		SourcePath: e.SourcePath,
		Columns:    e.Columns,
		Rows:       len(launches),
		Skipped:    e.Skipped,
		LoadedAt:   e.LoadedAt,
	}
	return ds, launches, nil
}

func parseRow(row []any) (core.Launch, error) {
	if len(row) != len(Header) {
		return core.Launch{}, fmt.Errorf("expected %d fields, got %d", len(Header), len(row))
	}

	nums := make([]float64, 0, 6)
	for _, i := range []int{0, 1, 3, 4, 7, 8} {
		f, ok := toFloat(row[i])
		if !ok {
			return core.Launch{}, fmt.Errorf("field %s: not a number", Header[i])
		}
		nums = append(nums, f)
	}
	strs := make([]string, 0, 3)
	for _, i := range []int{2, 5, 6} {
		s, ok := row[i].(string)
		if !ok {
			return core.Launch{}, fmt.Errorf("field %s: not a string", Header[i])
		}
		strs = append(strs, s)
	}

	class := core.Failure
	if nums[3] == 1 {
		class = core.Success
	}
	return core.Launch{
		ID:              uint(nums[0]),
		FlightNumber:    int(nums[1]),
		LaunchSite:      strs[0],
		PayloadMassKg:   nums[2],
		Class:           class,
		BoosterVersion:  strs[1],
		BoosterCategory: strs[2],
		Latitude:        nums[4],
		Longitude:       nums[5],
	}, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}
