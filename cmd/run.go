package cmd

import (
	"github.com/spf13/cobra"

	"github.com/AMANN-N/smart-practice/internal/app"
	"github.com/AMANN-N/smart-practice/internal/graphview"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	d, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	l := d.cfg.Layout
	return app.Run(d.client, app.Options{
		UserID:        d.cfg.UserID,
		Timeout:       d.cfg.RequestTimeout,
		PulseInterval: d.cfg.PulseInterval,
		Layouter: graphview.EadesLayouter{
			Updates:   l.Updates,
			Repulsion: l.Repulsion,
			Rate:      l.Rate,
			Theta:     l.Theta,
			Seed:      l.Seed,
		},
		Logger: d.log,
	})
}
