package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fubl84/peakly-sub001/internal/convert"
	"github.com/fubl84/peakly-sub001/internal/nutrition"
	"github.com/fubl84/peakly-sub001/internal/program"
	grpcserver "github.com/fubl84/peakly-sub001/internal/server/grpc"
)

type overrideFlag struct {
	name  string
	key   string
	usage string
	field func(*nutrition.Overrides) **float64
}

var overrideFlags = []overrideFlag{
	{"density", "density_g_per_ml", "density in g/ml", func(o *nutrition.Overrides) **float64 { return &o.DensityGPerML }},
	{"piece", "grams_per_piece", "grams per piece", func(o *nutrition.Overrides) **float64 { return &o.GramsPerPiece }},
	{"hand", "grams_per_hand", "grams per hand", func(o *nutrition.Overrides) **float64 { return &o.GramsPerHand }},
	{"tsp", "grams_per_teaspoon", "grams per teaspoon", func(o *nutrition.Overrides) **float64 { return &o.GramsPerTeaspoon }},
	{"tbsp", "grams_per_tablespoon", "grams per tablespoon", func(o *nutrition.Overrides) **float64 { return &o.GramsPerTablespoon }},
	{"pinch", "grams_per_pinch", "grams per pinch", func(o *nutrition.Overrides) **float64 { return &o.GramsPerPinch }},
	{"cup", "grams_per_cup", "grams per cup", func(o *nutrition.Overrides) **float64 { return &o.GramsPerCup }},
	{"slice", "grams_per_slice", "grams per slice", func(o *nutrition.Overrides) **float64 { return &o.GramsPerSlice }},
	{"bunch", "grams_per_bunch", "grams per bunch", func(o *nutrition.Overrides) **float64 { return &o.GramsPerBunch }},
	{"can", "grams_per_can", "grams per can", func(o *nutrition.Overrides) **float64 { return &o.GramsPerCan }},
}

func convertCmd(g *globals) *cobra.Command {
	var remote bool
	values := make([]float64, len(overrideFlags))
	cmd := &cobra.Command{
		Use:   "convert <amount> <unit>",
		Short: "Convert a quantity to grams",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[0])
			}
			var ov nutrition.Overrides
			wire := convert.Object{}
			for i, f := range overrideFlags {
				if cmd.Flags().Changed(f.name) {
					v := values[i]
					*f.field(&ov) = &v
					wire[f.key] = v
				}
			}

			if remote {
				return g.call(cmd, grpcserver.MethodConvertToGrams,
					convert.Object{"amount": amount, "unit": args[1], "overrides": wire}, false)
			}

			c := nutrition.ConvertToGrams(amount, args[1], &ov)
			out := cmd.OutOrStdout()
			if c.Resolved {
				suffix := ""
				if c.IsEstimated {
					suffix = " (estimated)"
				}
				fmt.Fprintf(out, "%s g%s\n", strconv.FormatFloat(c.Grams, 'f', -1, 64), suffix)
			} else {
				fmt.Fprintln(out, "not converted")
			}
			for _, w := range c.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w.Message)
			}
			return nil
		},
	}
	for i, f := range overrideFlags {
		cmd.Flags().Float64Var(&values[i], f.name, 0, f.usage)
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "convert on the server")
	return cmd
}

func weekCmd() *cobra.Command {
	var start, on string
	var maxWeeks int
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Resolve the program week for a start date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := parseDate("start", start)
			if err != nil {
				return err
			}
			ref := time.Now()
			if on != "" {
				if ref, err = parseDate("on", on); err != nil {
					return err
				}
			}
			if maxWeeks < 0 {
				return fmt.Errorf("max must be >= 0")
			}
			out := cmd.OutOrStdout()
			week := program.ResolveWeek(s, ref, maxWeeks)
			if week == 0 {
				fmt.Fprintln(out, "not started")
			} else {
				fmt.Fprintf(out, "week %d\n", week)
			}
			fmt.Fprintf(out, "variants editable: %t\n", program.CanUpdateVariants(s, ref))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "program start date YYYY-MM-DD")
	cmd.Flags().StringVar(&on, "on", "", "reference date YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&maxWeeks, "max", 0, "path length in weeks (0 = unbounded)")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}
