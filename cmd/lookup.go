package main

import (
	"context"
	"io"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/augment-cli/internal/augment"
	"github.com/sells-group/augment-cli/internal/config"
	"github.com/sells-group/augment-cli/pkg/austin"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <address>",
	Short: "Geocode one address and print its council district",
	Long: `Runs the same geocode and council district queries as augment for a
single-line address and prints the result as YAML.

Example:
  augment-cli lookup "301 W 2nd St, Austin, TX, 78701, US"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := lookupAddress(ctx, cfg, args[0])
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), res)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

type lookupResult struct {
	Address         string                  `yaml:"address"`
	Geocoded        *austin.GeocodedAddress `yaml:"geocoded,omitempty"`
	CouncilDistrict string                  `yaml:"city_council_district"`
}

func lookupAddress(ctx context.Context, c *config.Config, address string) (*lookupResult, error) {
	log := zap.L()

	client, err := newAustinClient(ctx, c.Austin, log)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: connect")
	}

	res := &lookupResult{Address: address}
	geocoded, err := client.GeocodeAddress(ctx, address)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: geocode address")
	}
	if geocoded == nil {
		return res, nil
	}
	res.Geocoded = geocoded

	district, err := client.CouncilDistrict(ctx, geocoded.Location)
	if err != nil {
		return nil, eris.Wrap(err, "lookup: council district")
	}
	if district == nil {
		res.CouncilDistrict = augment.UnknownDistrict
	} else {
		res.CouncilDistrict = strconv.Itoa(*district)
	}
	return res, nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode yaml")
	}
	return enc.Close()
}
