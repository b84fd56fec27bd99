package cmd

import (
	"Netsim/api"
	"fmt"

	"github.com/spf13/cobra"
)

var createNamespacesCmd = &cobra.Command{
	Use:   "create-namespaces [ns-a] [ns-b]",
	Short: "Ensure two network namespaces exist",
	Long:  `Create the two named network namespaces unless they exist already (default svc-a and svc-b).`,
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		names := []string{api.DefaultNsA, api.DefaultNsB}
		copy(names, args)
		for _, n := range names {
			if err := Manager.EnsureNamespace(n); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Namespaces ready: %s, %s\n", names[0], names[1])
		return nil
	},
}

var deleteNamespaceCmd = &cobra.Command{
	Use:   "delete-namespace <name>...",
	Short: "Delete network namespaces",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, n := range args {
			if err := Manager.DeleteNamespace(n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Namespace deleted: %s\n", n)
		}
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <ifname>",
	Short: "Remove an interface from every namespace",
	Long:  `Delete every interface with the given name, in the host namespace and in all named namespaces.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := Manager.CleanupInterfaceEverywhere(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d interface(s) named %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createNamespacesCmd)
	rootCmd.AddCommand(deleteNamespaceCmd)
	rootCmd.AddCommand(cleanupCmd)
}
