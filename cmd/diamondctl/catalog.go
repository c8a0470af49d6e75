package main

import (
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

type filterFlags struct {
	f                  transport.DiamondFilter
	minPrice, maxPrice float64
	minCarat, maxCarat float64
}

func (ff *filterFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&ff.f.Page, "page", 1, "page number")
	fs.IntVar(&ff.f.Limit, "limit", 0, "page size")
	fs.StringVar(&ff.f.Search, "search", "", "free text search")
	fs.StringSliceVar(&ff.f.Shapes, "shape", nil, "shapes")
	fs.StringSliceVar(&ff.f.Colors, "color", nil, "colors")
	fs.StringSliceVar(&ff.f.Clarity, "clarity", nil, "clarity grades")
	fs.StringSliceVar(&ff.f.Cut, "cut", nil, "cut grades")
	fs.Float64Var(&ff.minPrice, "min-price", 0, "minimum price")
	fs.Float64Var(&ff.maxPrice, "max-price", 0, "maximum price")
	fs.Float64Var(&ff.minCarat, "min-carat", 0, "minimum carat")
	fs.Float64Var(&ff.maxCarat, "max-carat", 0, "maximum carat")
}

// filter keeps only the range bounds given on the command line.
func (ff *filterFlags) filter(cmd *cobra.Command) transport.DiamondFilter {
	f := ff.f
	fs := cmd.Flags()
	if fs.Changed("min-price") {
		f.MinPrice = &ff.minPrice
	}
	if fs.Changed("max-price") {
		f.MaxPrice = &ff.maxPrice
	}
	if fs.Changed("min-carat") {
		f.MinCarat = &ff.minCarat
	}
	if fs.Changed("max-carat") {
		f.MaxCarat = &ff.maxCarat
	}
	return f
}

func newDiamondsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "diamonds", Short: "Browse the public catalog"}

	var ff filterFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog diamonds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Catalog.Browse(cmd.Context(), ff.filter(cmd)); err != nil {
				return fail(err)
			}
			return a.print(a.ws.Catalog.Diamonds.View())
		},
	}
	ff.bind(list)

	get := &cobra.Command{
		Use:   "get STOCK_ID",
		Short: "Show one diamond",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.ws.Catalog.Diamond(cmd.Context(), args[0])
			if err != nil {
				return fail(err)
			}
			return a.print(d)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "cart", Short: "Manage the cart"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the cart",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.ws.Cart.Fetch(cmd.Context()); err != nil {
					return fail(err)
				}
				return a.print(a.ws.Cart.Items.View())
			},
		},
		&cobra.Command{
			Use:   "add DIAMOND_ID",
			Short: "Add a diamond to the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.ws.Cart.Fetch(cmd.Context()); err != nil {
					return fail(err)
				}
				e, err := a.ws.Cart.Add(cmd.Context(), args[0])
				if err != nil {
					return fail(err)
				}
				return a.print(e)
			},
		},
		&cobra.Command{
			Use:   "remove DIAMOND_ID",
			Short: "Remove a diamond from the cart",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.ws.Cart.Remove(cmd.Context(), args[0]); err != nil {
					return fail(err)
				}
				return a.print(a.ws.Cart.Items.MutationState())
			},
		},
	)
	return cmd
}

func newWishlistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "wishlist", Short: "Manage the wishlist"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the wishlist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.ws.Wishlist.Fetch(cmd.Context()); err != nil {
					return fail(err)
				}
				return a.print(a.ws.Wishlist.Items.View())
			},
		},
		&cobra.Command{
			Use:   "add DIAMOND_ID",
			Short: "Add a diamond to the wishlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.ws.Wishlist.Fetch(cmd.Context()); err != nil {
					return fail(err)
				}
				e, err := a.ws.Wishlist.Add(cmd.Context(), args[0])
				if err != nil {
					return fail(err)
				}
				return a.print(e)
			},
		},
		&cobra.Command{
			Use:   "remove DIAMOND_ID",
			Short: "Remove a diamond from the wishlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.ws.Wishlist.Remove(cmd.Context(), args[0]); err != nil {
					return fail(err)
				}
				return a.print(a.ws.Wishlist.Items.MutationState())
			},
		},
	)
	return cmd
}
