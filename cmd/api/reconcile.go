package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diogomassis/fixgo-payments/internal/models"
	"github.com/diogomassis/fixgo-payments/internal/services/cache"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Inspect payments that were charged but not applied to their work",
	}
	cmd.AddCommand(reconcileListCmd())
	return cmd
}

func reconcileListCmd() *cobra.Command {
	v := viper.New()
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recorded reconciliation entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr := v.GetString("REDIS_ADDR")
			if addr == "" {
				return errors.New("REDIS_ADDR is required (flag --redis-addr or environment)")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			client := cache.NewRedisClient(addr)
			defer client.Close()

			entries, err := cache.NewRedisLedger(client.Raw()).List(ctx, v.GetInt64("limit"))
			if err != nil {
				return err
			}
			return writeEntries(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().String("redis-addr", "", "redis address (defaults to REDIS_ADDR)")
	cmd.Flags().Int64P("limit", "n", 50, "maximum entries to print, 0 for all")
	_ = v.BindPFlag("REDIS_ADDR", cmd.Flags().Lookup("redis-addr"))
	_ = v.BindPFlag("limit", cmd.Flags().Lookup("limit"))
	return cmd
}

func writeEntries(w io.Writer, entries []models.ReconciliationEntry) error {
	if entries == nil {
		entries = []models.ReconciliationEntry{}
	}
	out, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
