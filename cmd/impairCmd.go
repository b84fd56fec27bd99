package cmd

import (
	"Netsim/api"
	"fmt"

	"github.com/spf13/cobra"
)

var impairTarget api.ImpairmentTarget

var impairCmd = &cobra.Command{
	Use:   "impair <namespace> <ifname>",
	Short: "Apply delay, jitter and loss to an interface",
	Long: `Install (replacing any previous one) a netem root qdisc on an interface inside a namespace.
Jitter only applies together with a non-zero delay.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t := impairTarget
		t.Namespace, t.Interface = args[0], args[1]
		imp, err := t.Resolve()
		if err != nil {
			return err
		}
		if err = Manager.ApplyImpairment(t.Namespace, t.Interface, imp); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Impairment applied on %s/%s: delay %dms jitter %dms loss %v%%\n",
			t.Namespace, t.Interface, imp.DelayMs, imp.EffectiveJitterMs(), imp.LossPercent)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear <namespace> <ifname>",
	Short: "Remove impairment from an interface",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := Manager.ClearImpairment(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Impairment cleared on %s/%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(impairCmd)
	rootCmd.AddCommand(clearCmd)
	impairCmd.Flags().Uint32Var(&impairTarget.Impairment.DelayMs, "delay", 0, "Delay in ms")
	impairCmd.Flags().Uint32Var(&impairTarget.Impairment.JitterMs, "jitter", 0, "Jitter in ms (needs --delay)")
	impairCmd.Flags().Float64Var(&impairTarget.Impairment.LossPercent, "loss", 0, "Loss in percent [0, 100]")
	impairCmd.Flags().StringVar(&impairTarget.Profile, "profile", "", "Preset (lan, wan, 3g, lossy, satellite); explicit flags override it")
}
