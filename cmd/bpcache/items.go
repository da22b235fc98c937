package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/bpcache"
)

func getCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print an item's value",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			it, err := s.pool.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !it.IsHit() {
				fmt.Fprintln(out, "(nil)")
				return nil
			}
			fmt.Fprintln(out, it.Get())
			if exp, ok := it.Expires(); ok {
				fmt.Fprintf(out, "expires %s\n", exp.Format(time.RFC3339))
			}
			return nil
		}),
	}
}

func setCmd(v *viper.Viper) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Save an item",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			it := bpcache.NewItem(args[0], args[1])
			if ttl > 0 {
				it.ExpiresAfter(ttl)
			}
			ok, err := s.pool.Save(cmd.Context(), it)
			if err != nil {
				return err
			}
			printOK(cmd, ok)
			return nil
		}),
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Expire the item after this duration (0 = never)")
	return cmd
}

func msetCmd(v *viper.Viper) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "mset KEY VALUE [KEY VALUE...]",
		Short: "Queue several items and commit them together",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("mset needs KEY VALUE pairs, got %d args", len(args))
			}
			return nil
		},
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			for i := 0; i < len(args); i += 2 {
				it := bpcache.NewItem(args[i], args[i+1])
				if ttl > 0 {
					it.ExpiresAfter(ttl)
				}
				s.pool.SaveDeferred(it)
			}
			ok, err := s.pool.Commit(cmd.Context())
			if err != nil {
				return err
			}
			printOK(cmd, ok)
			return nil
		}),
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Expire the items after this duration (0 = never)")
	return cmd
}

func hasCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "has KEY",
		Short: "Report whether an item exists",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			ok, err := s.pool.HasItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		}),
	}
}

func delCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "del KEY [KEY...]",
		Short: "Delete items",
		Args:  cobra.MinimumNArgs(1),
		RunE: withSession(v, func(cmd *cobra.Command, args []string, s *session) error {
			var (
				ok  bool
				err error
			)
			if len(args) == 1 {
				ok, err = s.pool.DeleteItem(cmd.Context(), args[0])
			} else {
				ok, err = s.pool.DeleteItems(cmd.Context(), args)
			}
			if err != nil {
				return err
			}
			printOK(cmd, ok)
			return nil
		}),
	}
}

func clearCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every item under the prefix",
		Args:  cobra.NoArgs,
		RunE: withSession(v, func(cmd *cobra.Command, _ []string, s *session) error {
			ok, err := s.pool.Clear(cmd.Context())
			if err != nil {
				return err
			}
			printOK(cmd, ok)
			return nil
		}),
	}
}

func printOK(cmd *cobra.Command, ok bool) {
	if ok {
		fmt.Fprintln(cmd.OutOrStdout(), "OK")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), "FAILED")
}
