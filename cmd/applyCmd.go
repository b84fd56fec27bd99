package cmd

import (
	"Netsim/pkg"
	"fmt"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply Topology",
	Long:  `Apply a topology file listing namespaces, veth links and impairments.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filepath, _ := cmd.Flags().GetString("from")
		topoCfg, err := pkg.LoadTopoConfig(filepath)
		if err != nil {
			return err
		}
		descs, err := pkg.NewTopology(Manager, cfg.Parallel, Logger).Apply(cmd.Context(), topoCfg)
		if err != nil {
			return err
		}
		for _, d := range descs {
			fmt.Fprintf(cmd.OutOrStdout(), "Link: %s/%s (%s) <-> %s/%s (%s) in %s\n", d.NsA, d.IfA, d.IpA, d.NsB, d.IfB, d.IpB, d.CIDR)
		}
		return nil
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Tear down Topology",
	Long:  `Clear the impairments and delete the namespaces named in a topology file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filepath, _ := cmd.Flags().GetString("from")
		topoCfg, err := pkg.LoadTopoConfig(filepath)
		if err != nil {
			return err
		}
		if err = pkg.NewTopology(Manager, cfg.Parallel, Logger).Destroy(topoCfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Topology destroyed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(destroyCmd)
	for _, c := range []*cobra.Command{applyCmd, destroyCmd} {
		c.Flags().StringP("from", "f", "", "Path to the topology configuration file")
		_ = c.MarkFlagRequired("from")
	}
}
