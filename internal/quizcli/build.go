package quizcli

import (
	"github.com/spf13/cobra"
)

func (a *app) buildCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile raw questions and values to JSON",
		Long: `Validate the raw questions and values selected by --data against the
dataset schema and write questions.json and values.json to --out.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ds, err := a.dataset()
			if err != nil {
				return err
			}
			if err := ds.WriteJSON(out); err != nil {
				return err
			}
			a.printf("%s %d questions and %d axes to %s\n", successStyle.Render("Wrote"), len(ds.Questions), ds.AxisCount(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", ".", "Output directory")
	return cmd
}
