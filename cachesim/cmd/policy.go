package cmd

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cachesim/mem/cache"
)

func newPolicyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "policy <name> <param> <trace>",
		Short: "Replay a trace against a single cache configuration.",
		Long: "`policy <name> <param> <trace>` prints `hits,accesses` for one " +
			"configuration. The parameter is the number of entries of " +
			"direct-mapped and hot/cold caches and the associativity of the " +
			"others. Policies: " + policyList() + ".",
		Args: cobra.ExactArgs(3),
		RunE: runPolicy,
	}
}

func policyList() string {
	list := ""
	for i, p := range cache.Policies() {
		if i > 0 {
			list += ", "
		}

		list += p.String()
	}

	return list
}

func runPolicy(cmd *cobra.Command, args []string) error {
	p, err := cache.ParsePolicy(args[0])
	if err != nil {
		return err
	}

	param, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid parameter %q: %w", args[1], err)
	}

	t, err := loadTrace(cmd, args[2])
	if err != nil {
		return err
	}

	r, err := cache.NewModel(t).Run(p, param)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"policy":   p,
		"param":    r.Param,
		"hit_rate": r.HitRate(),
	}).Info("replay finished")

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d,%d\n", r.Hits, r.Accesses)

	return err
}
