// Package augment adds geocoded address and council district columns to
// membership rows, one paced remote lookup at a time.
package augment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/augment-cli/internal/membership"
	"github.com/sells-group/augment-cli/pkg/austin"
)

// UnknownDistrict is written when an address geocodes but falls in no district.
const UnknownDistrict = "Unknown"

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Options configures an Augmenter.
type Options struct {
	// Interval is the pause after every row.
	Interval time.Duration

	Sleep    Sleeper
	Progress func(done, total int)
	Logger   *zap.Logger
}

// Augmenter runs the augmentation loop against a geocoding client.
type Augmenter struct {
	client   austin.Client
	interval time.Duration
	sleep    Sleeper
	progress func(done, total int)
	log      *zap.Logger
}

// New creates an Augmenter.
func New(client austin.Client, opts Options) *Augmenter {
	a := &Augmenter{
		client:   client,
		interval: opts.Interval,
		sleep:    opts.Sleep,
		progress: opts.Progress,
		log:      opts.Logger,
	}
	if a.sleep == nil {
		a.sleep = Sleep
	}
	if a.log == nil {
		a.log = zap.L()
	}
	return a
}

// Outcome describes what happened to one row.
type Outcome struct {
	Skipped  bool
	Geocoded *austin.GeocodedAddress
	District *int
}

// Summary counts outcomes over a run.
type Summary struct {
	Rows            int
	Skipped         int
	Geocoded        int
	NotFound        int
	UnknownDistrict int
}

func (s *Summary) add(o Outcome) {
	s.Rows++
	switch {
	case o.Skipped:
		s.Skipped++
	case o.Geocoded == nil:
		s.NotFound++
	case o.District == nil:
		s.Geocoded++
		s.UnknownDistrict++
	default:
		s.Geocoded++
	}
}

// AssembleAddress builds the single-line address sent to the locator.
// Absent fields are empty.
func AssembleAddress(row *membership.Row) string {
	return fmt.Sprintf("%s %s, %s, %s, %s, %s",
		row.Value("address1"),
		row.Value("address2"),
		row.Value("city"),
		row.Value("state"),
		row.Value("zip"),
		row.Value("country"),
	)
}

// AugmentRow sets geocoded_address and city_council_district on row. Rows
// that already have a city_council_district column are left untouched.
func (a *Augmenter) AugmentRow(ctx context.Context, row *membership.Row) (Outcome, error) {
	if row.Has(membership.ColumnCouncilDistrict) {
		return Outcome{Skipped: true}, nil
	}

	address := AssembleAddress(row)
	geocoded, err := a.client.GeocodeAddress(ctx, address)
	if err != nil {
		return Outcome{}, eris.Wrap(err, "augment: geocode address")
	}
	if geocoded == nil {
		row.Set(membership.ColumnGeocodedAddress, "")
		row.Set(membership.ColumnCouncilDistrict, "")
		return Outcome{}, nil
	}

	row.Set(membership.ColumnGeocodedAddress, geocoded.Address)
	a.log.Info("requesting council district", zap.String("geocoded_address", geocoded.Address))

	district, err := a.client.CouncilDistrict(ctx, geocoded.Location)
	if err != nil {
		return Outcome{}, eris.Wrap(err, "augment: council district")
	}
	if district == nil {
		row.Set(membership.ColumnCouncilDistrict, UnknownDistrict)
	} else {
		row.Set(membership.ColumnCouncilDistrict, strconv.Itoa(*district))
	}

	return Outcome{Geocoded: geocoded, District: district}, nil
}

// Run augments rows in order, pausing for the interval after each one.
// The first error stops the run.
func (a *Augmenter) Run(ctx context.Context, rows []*membership.Row) (Summary, error) {
	var summary Summary
	for i, row := range rows {
		a.log.Info("processing row",
			zap.Int("row", i+1),
			zap.String("name", row.Value("first_name")+" "+row.Value("last_name")),
			zap.String("address", AssembleAddress(row)),
		)

		outcome, err := a.AugmentRow(ctx, row)
		if err != nil {
			return summary, eris.Wrapf(err, "augment: row %d", i+1)
		}
		summary.add(outcome)
		if outcome.Skipped {
			a.log.Info("row already has a council district")
		} else {
			a.log.Info("city council district", zap.String("district", row.Value(membership.ColumnCouncilDistrict)))
		}

		if a.progress != nil {
			a.progress(i+1, len(rows))
		}

		if err := a.sleep(ctx, a.interval); err != nil {
			return summary, eris.Wrap(err, "augment: interrupted")
		}
	}
	return summary, nil
}
