package cmd

import (
	"Netsim/api"
	"fmt"

	"github.com/spf13/cobra"
)

var vethReq api.LinkRequest

var createVethPairCmd = &cobra.Command{
	Use:   "create-veth-pair <ns-a> <ns-b>",
	Short: "Wire two namespaces with a veth pair",
	Long: `Create a veth pair between two network namespaces, creating them if needed.
The first usable host address of the CIDR goes to the a side, the second to the b side.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := vethReq
		req.NsA, req.NsB = args[0], args[1]
		desc, err := Manager.CreateVethPair(req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Link ready: %s/%s (%s) <-> %s/%s (%s) in %s\n",
			desc.NsA, desc.IfA, desc.IpA, desc.NsB, desc.IfB, desc.IpB, desc.CIDR)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createVethPairCmd)
	createVethPairCmd.Flags().StringVar(&vethReq.IfA, "if-a", api.DefaultIfA, "Interface name inside ns-a")
	createVethPairCmd.Flags().StringVar(&vethReq.IfB, "if-b", api.DefaultIfB, "Interface name inside ns-b")
	createVethPairCmd.Flags().StringVar(&vethReq.CIDR, "cidr", api.DefaultCIDR, "IPv4 network of the link (at most /30)")
}
