package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List supported problem shapes",
	Long:  `Prints the (n, smax) shapes the configured dispatcher accepts. Explicit pairs come first, followed by the dimension range if one is configured.`,
	RunE:  runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	d, err := cfg.Dispatcher()
	if err != nil {
		return fmt.Errorf("failed to build dispatcher: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tSMAX\tENGINE")
	for _, e := range d.Shapes() {
		smax := fmt.Sprintf("%d", e.SMax)
		if e.SMax == 0 {
			smax = fmt.Sprintf("%d..%d", e.MinSMax, e.MaxSMax)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.N, smax, cfg.Engine)
	}
	return w.Flush()
}
