package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fubl84/peakly-sub001/internal/convert"
	grpcserver "github.com/fubl84/peakly-sub001/internal/server/grpc"
)

func loginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token issued by the identity provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token = strings.TrimSpace(token)
			exp, err := tokenExpiry(token)
			if err != nil {
				return err
			}
			if err := saveToken(token, exp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer JWT")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func contentCmd(g *globals) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Show this week's content of your active enrollment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := convert.Object{}
			if kind != "" {
				req["kind"] = kind
			}
			return g.call(cmd, grpcserver.MethodMyContent, req, true)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "training, nutrition or info")
	return cmd
}

func assignmentsCmd(g *globals) *cobra.Command {
	var path, kind string
	var week int
	var options []string
	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "List a path's assignments for a week and variant selection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pathID, err := parseID("path", path)
			if err != nil {
				return err
			}
			selected := make([]any, 0, len(options))
			for _, o := range options {
				id, err := parseID("option", o)
				if err != nil {
					return err
				}
				selected = append(selected, id)
			}
			req := convert.Object{"path_id": pathID, "week": week, "selected_option_ids": selected}
			if kind != "" {
				req["kind"] = kind
			}
			return g.call(cmd, grpcserver.MethodResolveAssignments, req, false)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path id")
	cmd.Flags().IntVar(&week, "week", 1, "program week")
	cmd.Flags().StringSliceVar(&options, "option", nil, "selected variant option id (repeatable)")
	cmd.Flags().StringVar(&kind, "kind", "", "training, nutrition or info")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func suggestCmd(g *globals) *cobra.Command {
	var plan, slot string
	var limit int
	var assist bool
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Rank recipes against a meal plan slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			planID, err := parseID("plan", plan)
			if err != nil {
				return err
			}
			req := convert.Object{"plan_id": planID, "assist": assist}
			if slot != "" {
				req["slot"] = slot
			}
			if limit > 0 {
				req["limit"] = limit
			}
			return g.call(cmd, grpcserver.MethodSuggestSlot, req, true)
		},
	}
	cmd.Flags().StringVar(&plan, "plan", "", "nutrition plan id")
	cmd.Flags().StringVar(&slot, "slot", "", "meal slot (all slots when empty)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max recipes per slot (server default when 0)")
	cmd.Flags().BoolVar(&assist, "assist", false, "ask the assistant for a pick")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func recomputeCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Refresh cached recipe nutrition",
	}
	one := func(use, short, key, method string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(use, args[0])
				if err != nil {
					return err
				}
				return g.call(cmd, method, convert.Object{key: id}, true)
			},
		}
	}
	cmd.AddCommand(
		one("recipe", "Recompute one recipe", "recipe_id", grpcserver.MethodRecomputeRecipe),
		one("ingredient", "Recompute every recipe using an ingredient", "ingredient_id", grpcserver.MethodRecomputeByIngredient),
	)
	return cmd
}

func enrollCmd(g *globals) *cobra.Command {
	var path, start string
	var variants []string
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll into a path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pathID, err := parseID("path", path)
			if err != nil {
				return err
			}
			vs, err := parseVariants(variants)
			if err != nil {
				return err
			}
			req, err := withDay(convert.Object{"path_id": pathID, "variants": vs}, "start_date", start)
			if err != nil {
				return err
			}
			return g.call(cmd, grpcserver.MethodCreateEnrollment, req, true)
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path id")
	cmd.Flags().StringVar(&start, "start", "", "start date YYYY-MM-DD (default today)")
	cmd.Flags().StringSliceVar(&variants, "variant", nil, "variant pick type=option (repeatable)")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func variantsCmd(g *globals) *cobra.Command {
	var enrollment string
	var variants []string
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Change variant picks before the enrollment starts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := parseID("enrollment", enrollment)
			if err != nil {
				return err
			}
			vs, err := parseVariants(variants)
			if err != nil {
				return err
			}
			if len(vs) == 0 {
				return fmt.Errorf("at least one --variant required")
			}
			return g.call(cmd, grpcserver.MethodUpdateEnrollmentVariants,
				convert.Object{"enrollment_id": id, "variants": vs}, true)
		},
	}
	cmd.Flags().StringVar(&enrollment, "enrollment", "", "enrollment id")
	cmd.Flags().StringSliceVar(&variants, "variant", nil, "variant pick type=option (repeatable)")
	_ = cmd.MarkFlagRequired("enrollment")
	return cmd
}

func shoppingCmd(g *globals) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "shopping",
		Short: "Manage your weekly shopping list",
	}
	cmd.PersistentFlags().StringVar(&day, "day", "", "any day of the week YYYY-MM-DD (default today)")

	add := &cobra.Command{
		Use:   "add <recipe-id>",
		Short: "Add a recipe's ingredients to the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("recipe", args[0])
			if err != nil {
				return err
			}
			req, err := withDay(convert.Object{"recipe_id": id}, "day", day)
			if err != nil {
				return err
			}
			return g.call(cmd, grpcserver.MethodAddRecipeToShopping, req, true)
		},
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "Show the list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := withDay(convert.Object{}, "day", day)
			if err != nil {
				return err
			}
			return g.call(cmd, grpcserver.MethodListShopping, req, true)
		},
	}
	cmd.AddCommand(add, list)
	return cmd
}

var nutrientFlags = []string{"calories", "protein", "carbs", "fat", "fiber", "sugar", "salt"}

func ingredientCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredient",
		Short: "Edit catalog ingredients and refresh dependent recipes",
	}

	var name string
	nutrients := make([]float64, len(nutrientFlags))
	conversions := make([]float64, len(overrideFlags))
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or replace an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("ingredient", args[0])
			if err != nil {
				return err
			}
			per100 := convert.Object{}
			for i, n := range nutrientFlags {
				if cmd.Flags().Changed(n) {
					per100[n] = nutrients[i]
				}
			}
			conv := convert.Object{}
			for i, f := range overrideFlags {
				if cmd.Flags().Changed(f.name) {
					conv[f.key] = conversions[i]
				}
			}
			return g.call(cmd, grpcserver.MethodUpdateIngredient, convert.Object{
				"id": id, "name": name, "nutrition": per100, "conversions": conv,
			}, true)
		},
	}
	set.Flags().StringVar(&name, "name", "", "ingredient name")
	for i, n := range nutrientFlags {
		set.Flags().Float64Var(&nutrients[i], n, 0, n+" per 100 g")
	}
	for i, f := range overrideFlags {
		set.Flags().Float64Var(&conversions[i], f.name, 0, f.usage)
	}
	_ = set.MarkFlagRequired("name")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("ingredient", args[0])
			if err != nil {
				return err
			}
			return g.call(cmd, grpcserver.MethodDeleteIngredient, convert.Object{"ingredient_id": id}, true)
		},
	}
	cmd.AddCommand(set, del)
	return cmd
}

// parseItems reads "ingredient:amount:unit" triples.
func parseItems(specs []string) ([]any, error) {
	out := make([]any, 0, len(specs))
	for _, s := range specs {
		parts := strings.SplitN(s, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid item %q (want ingredient:amount:unit)", s)
		}
		id, err := parseID("ingredient", parts[0])
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("invalid amount in %q", s)
		}
		out = append(out, convert.Object{"ingredient_id": id, "amount": amount, "unit": parts[2]})
	}
	return out, nil
}

func nutritionCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nutrition",
		Short: "Inspect and edit recipe nutrition",
	}
	show := &cobra.Command{
		Use:   "show <recipe-id>",
		Short: "Print the cached nutrition of a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("recipe", args[0])
			if err != nil {
				return err
			}
			return g.call(cmd, grpcserver.MethodGetRecipeNutrition, convert.Object{"recipe_id": id}, true)
		},
	}
	var items []string
	set := &cobra.Command{
		Use:   "set <recipe-id>",
		Short: "Replace a recipe's ingredient list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("recipe", args[0])
			if err != nil {
				return err
			}
			list, err := parseItems(items)
			if err != nil {
				return err
			}
			return g.call(cmd, grpcserver.MethodSetRecipeIngredients,
				convert.Object{"recipe_id": id, "items": list}, true)
		},
	}
	set.Flags().StringArrayVar(&items, "item", nil, "ingredient:amount:unit (repeatable)")
	cmd.AddCommand(show, set)
	return cmd
}
