package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/minitask/client/internal/domain/entities"
)

func newLocationsCommand(opts *rootOptions) *cobra.Command {
	var state, district string

	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List states, or the districts of --state, or the cities of --district",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			var (
				level entities.LocationLevel
				nodes []entities.LocationNode
			)
			switch {
			case district != "":
				level = entities.LevelCity
				nodes, err = app.api.Cities(ctx, entities.ID(district))
			case state != "":
				level = entities.LevelDistrict
				nodes, err = app.api.Districts(ctx, entities.ID(state))
			default:
				level = entities.LevelState
				nodes, err = app.api.States(ctx)
			}
			if err != nil {
				return err
			}

			if len(nodes) == 0 {
				fmt.Fprintf(app.out, "No %s options found\n", level)
				return nil
			}
			w := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%s\n", level)
			for _, n := range nodes {
				fmt.Fprintf(w, "%s\t%s\n", n.ID, n.Name)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "state id whose districts to list")
	cmd.Flags().StringVar(&district, "district", "", "district id whose cities to list")
	return cmd
}
